package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atul23g/multiDiseasePred/pkg/common/httpclient"
	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/observability/metrics"
	"github.com/atul23g/multiDiseasePred/pkg/predict"
	"github.com/google/uuid"
)

// Service produces LLM-backed triage summaries for predictions and persists
// session notes. The LLM backend speaks the OpenAI-compatible chat completions
// protocol, so any conforming gateway works.
type Service struct {
	client      *http.Client
	apiKey      string
	baseURL     string
	modelName   string
	predictions *predict.Service
	repo        *Repository
}

func NewService(client *http.Client, apiKey, baseURL, modelName string, predictions *predict.Service, repo *Repository) *Service {
	return &Service{
		client:      client,
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		modelName:   modelName,
		predictions: predictions,
		repo:        repo,
	}
}

// Enabled reports whether an LLM backend is configured.
func (s *Service) Enabled() bool {
	return s.apiKey != "" && s.baseURL != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// triagePayload is the JSON shape the model is asked to produce.
type triagePayload struct {
	TriageSummary string   `json:"triage_summary"`
	Followups     []string `json:"followups"`
}

// Triage generates a plain-language summary and follow-up questions for a
// user-owned prediction.
func (s *Service) Triage(ctx context.Context, userID string, req models.TriageRequest) (*models.TriageResponse, error) {
	pred, err := s.predictions.Get(ctx, userID, req.PredictionID)
	if err != nil {
		return nil, err
	}
	metrics.IncTriageRequests()

	prompt := buildPrompt(pred, req.Complaint)
	payload, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if payload.Followups == nil {
		payload.Followups = []string{}
	}

	return &models.TriageResponse{
		TriageSummary: payload.TriageSummary,
		Followups:     payload.Followups,
		ModelName:     s.modelName,
	}, nil
}

// Submit records a completed triage session against a user-owned prediction.
func (s *Service) Submit(ctx context.Context, userID string, req models.SessionSubmitRequest) (*models.SessionSubmitResponse, error) {
	pred, err := s.predictions.Get(ctx, userID, req.PredictionID)
	if err != nil {
		return nil, err
	}

	note := &TriageNote{
		ID:           uuid.New().String(),
		UserID:       userID,
		PredictionID: pred.ID,
		Complaint:    req.Complaint,
		ModelName:    s.modelName,
		CreatedAt:    time.Now().UTC(),
	}
	if req.Triage != nil {
		if summary, ok := req.Triage["triage_summary"].(string); ok {
			note.TriageSummary = summary
		}
		if followups, ok := req.Triage["followups"]; ok {
			if note.Followups, err = json.Marshal(followups); err != nil {
				return nil, fmt.Errorf("encoding followups: %w", err)
			}
		}
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("persisting triage note: %w", err)
	}

	return &models.SessionSubmitResponse{
		OK:           true,
		PredictionID: pred.ID,
	}, nil
}

const systemPrompt = "You are a cautious clinical triage assistant. You never diagnose. " +
	"Respond with a JSON object containing a short plain-language \"triage_summary\" " +
	"and a \"followups\" array of at most three questions a clinician might ask next."

func buildPrompt(pred *predict.Prediction, complaint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\nModel label: %d\nProbability: %.3f\nHealth score: %.1f\n",
		pred.Task, pred.Label, pred.Probability, pred.HealthScore)

	var contributors []string
	if len(pred.TopContributors) > 0 {
		if err := json.Unmarshal(pred.TopContributors, &contributors); err == nil && len(contributors) > 0 {
			fmt.Fprintf(&b, "Top contributing features: %s\n", strings.Join(contributors, ", "))
		}
	}
	if complaint != "" {
		fmt.Fprintf(&b, "Patient complaint: %s\n", complaint)
	}
	b.WriteString("Summarize what this result means for the patient and suggest follow-up questions.")
	return b.String()
}

func (s *Service) complete(ctx context.Context, prompt string) (*triagePayload, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("triage backend is not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: s.modelName,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	var parsed chatResponse
	err = httpclient.Retry(ctx, 3, 200*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("chat completions returned %d: %s", resp.StatusCode, string(snippet))
		}
		return json.NewDecoder(resp.Body).Decode(&parsed)
	})
	if err != nil {
		return nil, fmt.Errorf("calling triage backend: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("triage backend returned no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	payload := &triagePayload{}
	if err := json.Unmarshal([]byte(content), payload); err != nil {
		// Model did not follow the JSON contract; keep the raw text as summary.
		logger.Log.WithError(err).Debug("triage response was not valid JSON, using raw text")
		payload.TriageSummary = content
		payload.Followups = []string{}
	}
	return payload, nil
}
