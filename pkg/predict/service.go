package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atul23g/multiDiseasePred/pkg/common/kafka"
	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/model"
	"github.com/atul23g/multiDiseasePred/pkg/observability/metrics"
	"github.com/atul23g/multiDiseasePred/pkg/reconcile"
	"github.com/atul23g/multiDiseasePred/pkg/report"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
	"github.com/atul23g/multiDiseasePred/pkg/scoring"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ErrGeneralUnsupported is returned for the schema-free task, which has no
// trained model behind it.
var ErrGeneralUnsupported = errors.New("prediction is not supported for the general task")

// Service runs the completion and prediction paths.
type Service struct {
	registry    *schema.Registry
	resolver    *reconcile.Resolver
	predictor   *model.Predictor
	synthesizer *scoring.Synthesizer
	reports     *report.Service
	repo        *Repository
	producer    *kafka.Producer
	preferUser  bool
}

func NewService(registry *schema.Registry, resolver *reconcile.Resolver, predictor *model.Predictor, synthesizer *scoring.Synthesizer, reports *report.Service, repo *Repository, producer *kafka.Producer, preferUser bool) *Service {
	return &Service{
		registry:    registry,
		resolver:    resolver,
		predictor:   predictor,
		synthesizer: synthesizer,
		reports:     reports,
		repo:        repo,
		producer:    producer,
		preferUser:  preferUser,
	}
}

// Complete merges a report's extracted features with user inputs and reports
// what is still missing against the task schema.
func (s *Service) Complete(ctx context.Context, userID string, req models.FeatureCompleteRequest) (*models.FeatureCompleteResponse, error) {
	task, err := schema.ParseTask(req.Task)
	if err != nil {
		return nil, err
	}

	extracted := map[string]interface{}{}
	if req.ReportID != "" {
		extracted, err = s.reports.ExtractedFeatures(ctx, userID, req.ReportID)
		if err != nil {
			return nil, err
		}
	}

	featuresReady, stillMissing, err := s.resolver.Complete(task, extracted, req.UserInputs, s.preferUser)
	if err != nil {
		return nil, err
	}

	notes := []string{}
	if len(req.UserInputs) > 0 {
		if s.preferUser {
			notes = append(notes, "User values override extracted values")
		} else {
			notes = append(notes, "Extracted values take precedence over user input")
		}
	}

	return &models.FeatureCompleteResponse{
		FeaturesReady: featuresReady,
		StillMissing:  stillMissing,
		Notes:         notes,
	}, nil
}

// Predict scores a completed feature set: model probability, bounded health
// score and ranked contributors, persisted and announced on the event bus.
func (s *Service) Predict(ctx context.Context, userID string, req models.PredictWithFeaturesRequest) (*models.PredictWithFeaturesResponse, error) {
	task, err := schema.ParseTask(req.Task)
	if err != nil {
		return nil, err
	}
	if task == schema.TaskGeneral {
		return nil, ErrGeneralUnsupported
	}

	features := normalizeScalars(req.Features)

	out, err := s.predictor.Predict(task, features)
	if err != nil {
		return nil, err
	}
	if out.Probability < 0 || out.Probability > 1 {
		// Data-quality signal: the synthesizer clamps, but this should not happen.
		logger.Log.WithFields(map[string]interface{}{
			"task":        string(task),
			"probability": out.Probability,
		}).Warn("model probability outside [0,1]")
	}

	score, contributions, err := s.synthesizer.ComputeScore(task, features, out.Probability)
	if err != nil {
		return nil, err
	}
	topContributors := make([]string, 0, len(contributions))
	for _, c := range contributions {
		topContributors = append(topContributors, c.Feature)
	}

	rec := &Prediction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Task:        string(task),
		Features:    datatypes.JSONMap(features),
		Label:       out.Label,
		Probability: out.Probability,
		HealthScore: score,
	}
	if req.ReportID != "" {
		reportID := req.ReportID
		rec.ReportID = &reportID
	}
	if rec.TopContributors, err = json.Marshal(topContributors); err != nil {
		return nil, fmt.Errorf("encoding contributors: %w", err)
	}
	warnings := out.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	if rec.Warnings, err = json.Marshal(warnings); err != nil {
		return nil, fmt.Errorf("encoding warnings: %w", err)
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting prediction: %w", err)
	}
	metrics.IncPredictionsCreated()

	if s.producer != nil {
		payload := map[string]interface{}{
			"prediction_id": rec.ID,
			"user_id":       userID,
			"task":          string(task),
			"label":         out.Label,
			"probability":   out.Probability,
			"health_score":  score,
		}
		if err := s.producer.PublishEvent(ctx, "prediction.created", "predict-service", payload); err != nil {
			logger.Log.WithError(err).WithField("prediction_id", rec.ID).Warn("failed to publish prediction event")
		}
	}

	return &models.PredictWithFeaturesResponse{
		Task:            string(task),
		Label:           out.Label,
		Probability:     out.Probability,
		HealthScore:     score,
		TopContributors: topContributors,
		Warnings:        warnings,
		PredictionID:    rec.ID,
	}, nil
}

// History returns the user's most recent predictions, newest first, each joined
// with its source report when one exists.
func (s *Service) History(ctx context.Context, userID string) ([]Prediction, error) {
	return s.repo.ListForUser(ctx, userID, 50)
}

// Get fetches a single user-owned prediction.
func (s *Service) Get(ctx context.Context, userID, predictionID string) (*Prediction, error) {
	return s.repo.GetForUser(ctx, predictionID, userID)
}

// normalizeScalars reduces list-valued entries to their first element so the
// merge and scoring functions always see scalar-or-null values. This is the
// single place that contract is enforced.
func normalizeScalars(features map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(features))
	for k, v := range features {
		if list, ok := v.([]interface{}); ok {
			if len(list) > 0 {
				out[k] = list[0]
			} else {
				out[k] = nil
			}
			continue
		}
		out[k] = v
	}
	return out
}
