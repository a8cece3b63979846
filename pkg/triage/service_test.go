package triage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: content}})
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestCompleteParsesStructuredReply(t *testing.T) {
	server := chatServer(t, `{"triage_summary":"Slightly elevated glucose.","followups":["How long since your last meal?"]}`)
	defer server.Close()

	s := NewService(server.Client(), "test-key", server.URL, "triage-v1", nil, nil)
	payload, err := s.complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if payload.TriageSummary != "Slightly elevated glucose." {
		t.Errorf("summary = %q", payload.TriageSummary)
	}
	if len(payload.Followups) != 1 {
		t.Errorf("followups = %v", payload.Followups)
	}
}

func TestCompleteFencedReply(t *testing.T) {
	server := chatServer(t, "```json\n{\"triage_summary\":\"ok\",\"followups\":[]}\n```")
	defer server.Close()

	s := NewService(server.Client(), "test-key", server.URL, "triage-v1", nil, nil)
	payload, err := s.complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if payload.TriageSummary != "ok" {
		t.Errorf("summary = %q", payload.TriageSummary)
	}
}

func TestCompleteFallsBackToRawText(t *testing.T) {
	server := chatServer(t, "The result looks fine overall.")
	defer server.Close()

	s := NewService(server.Client(), "test-key", server.URL, "triage-v1", nil, nil)
	payload, err := s.complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if payload.TriageSummary != "The result looks fine overall." {
		t.Errorf("summary = %q", payload.TriageSummary)
	}
	if len(payload.Followups) != 0 {
		t.Errorf("followups = %v", payload.Followups)
	}
}

func TestCompleteUnconfigured(t *testing.T) {
	s := NewService(&http.Client{Timeout: time.Second}, "", "", "triage-v1", nil, nil)
	if _, err := s.complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error when backend is unconfigured")
	}
}
