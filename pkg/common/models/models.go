package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // report.extracted, report.ingested, prediction.created
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// RawPair is a single extracted lab value before canonicalization. The name it
// is keyed by is free text from the document, lowercased but not guaranteed to
// match any model feature. Source is an optional extraction hint ("parsed" or
// "llm"); empty means parsed.
type RawPair struct {
	Value  interface{} `json:"value"`
	Unit   string      `json:"unit"`
	Source string      `json:"source,omitempty"`
}

// FeatureMeta is the per-feature extraction provenance record. It describes how
// a value was obtained, not how the merge step later resolved it.
type FeatureMeta struct {
	Value       interface{} `json:"value"`
	Unit        string      `json:"unit,omitempty"`
	Confidence  float64     `json:"confidence"`
	Source      string      `json:"source"` // parsed, llm, imputed, unknown
	NormalRange *Range      `json:"normal_range"`
	OutOfRange  bool        `json:"out_of_range"`
	Reason      string      `json:"reason,omitempty"` // set when annotation degraded
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Ingestion path
type IngestReportRequest struct {
	Task     string             `json:"task"`
	Filename string             `json:"filename,omitempty"`
	Pairs    map[string]RawPair `json:"pairs"`
	RawText  string             `json:"raw_text,omitempty"`
}

type IngestReportResponse struct {
	ReportID          string                 `json:"report_id"`
	Task              string                 `json:"task"`
	Extracted         *FeatureMap            `json:"extracted"`
	MissingFields     []string               `json:"missing_fields"`
	Warnings          []string               `json:"warnings"`
	ExtractedMeta     map[string]FeatureMeta `json:"extracted_meta"`
	ParsedKeys        []string               `json:"parsed_keys"`
	OverallConfidence float64                `json:"overall_confidence"`
}

// Completion path
type FeatureCompleteRequest struct {
	Task       string                 `json:"task"`
	ReportID   string                 `json:"report_id,omitempty"`
	UserInputs map[string]interface{} `json:"user_inputs"`
}

type FeatureCompleteResponse struct {
	FeaturesReady *FeatureMap `json:"features_ready"`
	StillMissing  []string    `json:"still_missing"`
	Notes         []string    `json:"notes"`
}

type FeatureSchemaResponse struct {
	Task          string        `json:"task"`
	FeatureSchema []SchemaField `json:"feature_schema"`
}

type SchemaField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Unit        string `json:"unit,omitempty"`
	NormalRange *Range `json:"normal_range,omitempty"`
}

// Prediction path
type PredictWithFeaturesRequest struct {
	Task     string                 `json:"task"`
	ReportID string                 `json:"report_id,omitempty"`
	Features map[string]interface{} `json:"features"`
}

type PredictWithFeaturesResponse struct {
	Task            string   `json:"task"`
	Label           int      `json:"label"`
	Probability     float64  `json:"probability"`
	HealthScore     float64  `json:"health_score"`
	TopContributors []string `json:"top_contributors"`
	Warnings        []string `json:"warnings"`
	PredictionID    string   `json:"prediction_id"`
}

// Model black box output
type ModelOutput struct {
	Label       int      `json:"label"`
	Probability float64  `json:"probability"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Triage
type TriageRequest struct {
	PredictionID string `json:"prediction_id"`
	Complaint    string `json:"complaint,omitempty"`
}

type TriageResponse struct {
	TriageSummary string   `json:"triage_summary"`
	Followups     []string `json:"followups"`
	ModelName     string   `json:"model_name"`
}

type SessionSubmitRequest struct {
	PredictionID string                 `json:"prediction_id"`
	Complaint    string                 `json:"complaint,omitempty"`
	Triage       map[string]interface{} `json:"triage,omitempty"`
}

type SessionSubmitResponse struct {
	OK           bool   `json:"ok"`
	PredictionID string `json:"prediction_id"`
}
