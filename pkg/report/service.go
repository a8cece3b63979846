package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/atul23g/multiDiseasePred/pkg/common/kafka"
	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/observability/metrics"
	"github.com/atul23g/multiDiseasePred/pkg/reconcile"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrNoPairs = errors.New("no extracted pairs supplied")

// Service runs the ingestion path: canonicalize raw pairs, annotate provenance,
// persist the report and announce it on the event bus.
type Service struct {
	registry  *schema.Registry
	mapper    *reconcile.Mapper
	annotator *reconcile.Annotator
	repo      *Repository
	cache     *Cache
	producer  *kafka.Producer
}

func NewService(registry *schema.Registry, mapper *reconcile.Mapper, annotator *reconcile.Annotator, repo *Repository, cache *Cache, producer *kafka.Producer) *Service {
	return &Service{
		registry:  registry,
		mapper:    mapper,
		annotator: annotator,
		repo:      repo,
		cache:     cache,
		producer:  producer,
	}
}

// Ingest reconciles one report's extracted pairs for a user. Per-pair problems
// become warnings in the response; only an unknown task, an empty payload or a
// persistence failure fail the request.
func (s *Service) Ingest(ctx context.Context, userID string, req models.IngestReportRequest) (*models.IngestReportResponse, error) {
	task, err := schema.ParseTask(req.Task)
	if err != nil {
		return nil, err
	}
	if len(req.Pairs) == 0 {
		return nil, ErrNoPairs
	}

	raw := make(map[string]models.RawPair, len(req.Pairs))
	for name, pair := range req.Pairs {
		raw[strings.ToLower(strings.TrimSpace(name))] = pair
	}

	var target []string
	var feats map[string]interface{}
	var missing, warnings []string
	if task == schema.TaskGeneral {
		feats, missing, warnings = s.mapper.MapFeatures(task, raw, nil)
		for name := range feats {
			target = append(target, name)
		}
		sort.Strings(target)
	} else {
		if target, err = s.registry.FeatureNames(task); err != nil {
			return nil, err
		}
		feats, missing, warnings = s.mapper.MapFeatures(task, raw, target)
	}

	meta := s.annotator.Annotate(task, target, feats, raw)
	overall := reconcile.OverallConfidence(meta)

	parsedKeys := make([]string, 0, len(raw))
	for name := range raw {
		parsedKeys = append(parsedKeys, name)
	}
	sort.Strings(parsedKeys)

	extracted := models.NewFeatureMap()
	for _, name := range target {
		if value, ok := feats[name]; ok {
			extracted.Set(name, value)
		}
	}

	rec := &Report{
		ID:          uuid.New().String(),
		UserID:      userID,
		Task:        string(task),
		RawFilename: req.Filename,
		Extracted:   datatypes.JSONMap(StripNulls(feats).(map[string]interface{})),
		RawText:     StripNulls(req.RawText).(string),
	}
	if rec.MissingFields, err = json.Marshal(missing); err != nil {
		return nil, fmt.Errorf("encoding missing fields: %w", err)
	}
	if rec.Warnings, err = json.Marshal(warnings); err != nil {
		return nil, fmt.Errorf("encoding warnings: %w", err)
	}
	if rec.ExtractedMeta, err = toJSONMap(meta); err != nil {
		return nil, fmt.Errorf("encoding extraction metadata: %w", err)
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		metrics.IncReportsFailed()
		return nil, fmt.Errorf("persisting report: %w", err)
	}
	metrics.IncReportsIngested()
	metrics.AddReconcileWarnings(len(warnings))
	s.cache.PutExtracted(ctx, userID, rec.ID, feats)

	if s.producer != nil {
		payload := map[string]interface{}{
			"report_id":          rec.ID,
			"user_id":            userID,
			"task":               string(task),
			"missing_count":      len(missing),
			"warning_count":      len(warnings),
			"overall_confidence": overall,
		}
		if err := s.producer.PublishEvent(ctx, "report.ingested", "report-service", payload); err != nil {
			logger.Log.WithError(err).WithField("report_id", rec.ID).Warn("failed to publish report event")
		}
	}

	return &models.IngestReportResponse{
		ReportID:          rec.ID,
		Task:              string(task),
		Extracted:         extracted,
		MissingFields:     missing,
		Warnings:          warnings,
		ExtractedMeta:     meta,
		ParsedKeys:        parsedKeys,
		OverallConfidence: overall,
	}, nil
}

// ExtractedFeatures loads a report's extracted feature set for the completion
// path, preferring the cache and verifying ownership on the fallthrough.
func (s *Service) ExtractedFeatures(ctx context.Context, userID, reportID string) (map[string]interface{}, error) {
	if extracted, ok := s.cache.GetExtracted(ctx, userID, reportID); ok {
		return extracted, nil
	}
	rec, err := s.repo.GetForUser(ctx, reportID, userID)
	if err != nil {
		return nil, err
	}
	extracted := map[string]interface{}(rec.Extracted)
	s.cache.PutExtracted(ctx, userID, reportID, extracted)
	return extracted, nil
}

// History returns the user's most recent reports, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Report, error) {
	return s.repo.ListForUser(ctx, userID, 50)
}

func toJSONMap(v interface{}) (datatypes.JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return datatypes.JSONMap(out), nil
}
