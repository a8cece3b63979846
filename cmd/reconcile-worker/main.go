package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atul23g/multiDiseasePred/pkg/alias"
	"github.com/atul23g/multiDiseasePred/pkg/common/config"
	"github.com/atul23g/multiDiseasePred/pkg/common/database"
	"github.com/atul23g/multiDiseasePred/pkg/common/kafka"
	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/observability/metrics"
	"github.com/atul23g/multiDiseasePred/pkg/reconcile"
	"github.com/atul23g/multiDiseasePred/pkg/report"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

// worker consumes extraction events from the document pipeline and runs them
// through the same ingestion path the HTTP API uses. Events it cannot decode
// go to the dead letter topic instead of blocking the partition.
type worker struct {
	reports *report.Service
	dlq     *kafka.Producer
}

func main() {
	logger.Init("reconcile-worker")
	cfg := config.Load()

	registry, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load feature schema")
	}
	aliases, err := alias.Load(cfg.AliasPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load alias table")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	redisClient := database.GetRedis()

	reportRepo := report.NewRepository(db)
	if err := reportRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate tables")
	}

	mapper := reconcile.NewMapper(registry, aliases, reconcile.DefaultUnits())
	annotator := reconcile.NewAnnotator(registry)
	cache := report.NewCache(redisClient, cfg.ExtractedCacheTTL)

	reportProducer := kafka.NewProducer(cfg.ReportTopic)
	dlqProducer := kafka.NewProducer(cfg.ExtractionDLQTopic)
	defer reportProducer.Close()
	defer dlqProducer.Close()

	w := &worker{
		reports: report.NewService(registry, mapper, annotator, reportRepo, cache, reportProducer),
		dlq:     dlqProducer,
	}

	consumer := kafka.NewConsumer(cfg.ExtractionTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("Shutting down reconcile worker...")
		cancel()
	}()

	logger.Log.WithField("topic", cfg.ExtractionTopic).Info("Reconcile worker started")
	if err := consumer.Consume(ctx, w.handleEvent); err != nil && err != context.Canceled {
		logger.Log.WithError(err).Error("Consumer stopped")
	}

	database.ClosePostgres()
	database.CloseRedis()
	logger.Log.Info("Reconcile worker stopped")
}

func (w *worker) handleEvent(ctx context.Context, event models.Event) error {
	metrics.IncEventsConsumed()

	userID, req, err := decodeExtraction(event)
	if err != nil {
		w.deadLetter(ctx, event, err)
		return nil
	}

	resp, err := w.reports.Ingest(ctx, userID, req)
	if err != nil {
		var taskErr schema.UnknownTaskError
		switch {
		case errors.As(err, &taskErr), errors.Is(err, report.ErrNoPairs):
			// Malformed payloads never become valid on retry.
			w.deadLetter(ctx, event, err)
			return nil
		default:
			// Infrastructure failure; leave uncommitted so it retries.
			return err
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"event_id":      event.ID,
		"report_id":     resp.ReportID,
		"task":          resp.Task,
		"missing_count": len(resp.MissingFields),
		"warning_count": len(resp.Warnings),
	}).Info("Extraction event reconciled")
	return nil
}

// decodeExtraction maps a report.extracted event payload onto the ingestion
// request. Pairs arrive as {"name": {"value": ..., "unit": ..., "source": ...}}.
func decodeExtraction(event models.Event) (string, models.IngestReportRequest, error) {
	var req models.IngestReportRequest

	userID, _ := event.Data["user_id"].(string)
	if userID == "" {
		return "", req, fmt.Errorf("event %s has no user_id", event.ID)
	}
	task, _ := event.Data["task"].(string)
	if task == "" {
		return "", req, fmt.Errorf("event %s has no task", event.ID)
	}

	rawPairs, ok := event.Data["pairs"].(map[string]interface{})
	if !ok || len(rawPairs) == 0 {
		return "", req, fmt.Errorf("event %s has no pairs", event.ID)
	}

	pairs := make(map[string]models.RawPair, len(rawPairs))
	for name, v := range rawPairs {
		entry, ok := v.(map[string]interface{})
		if !ok {
			return "", req, fmt.Errorf("event %s pair %q is not an object", event.ID, name)
		}
		pair := models.RawPair{Value: entry["value"]}
		if unit, ok := entry["unit"].(string); ok {
			pair.Unit = unit
		}
		if source, ok := entry["source"].(string); ok {
			pair.Source = source
		}
		pairs[name] = pair
	}

	req.Task = task
	req.Pairs = pairs
	if filename, ok := event.Data["filename"].(string); ok {
		req.Filename = filename
	}
	if rawText, ok := event.Data["raw_text"].(string); ok {
		req.RawText = rawText
	}
	return userID, req, nil
}

func (w *worker) deadLetter(ctx context.Context, event models.Event, cause error) {
	metrics.IncEventsDeadLettered()
	logger.Log.WithError(cause).WithField("event_id", event.ID).Warn("Routing extraction event to dead letter topic")

	payload := map[string]interface{}{
		"original_event_id": event.ID,
		"original_type":     event.Type,
		"original_data":     event.Data,
		"reason":            cause.Error(),
	}
	if err := w.dlq.PublishEvent(ctx, "report.extracted.dlq", "reconcile-worker", payload); err != nil {
		logger.Log.WithError(err).WithField("event_id", event.ID).Error("Failed to publish to dead letter topic")
	}
}
