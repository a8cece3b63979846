package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	reportsIngested    atomic.Int64
	reportsFailed      atomic.Int64
	predictionsCreated atomic.Int64
	triageRequests     atomic.Int64
	reconcileWarnings  atomic.Int64
	eventsConsumed     atomic.Int64
	eventsDeadLettered atomic.Int64
)

func IncReportsIngested()        { reportsIngested.Add(1) }
func IncReportsFailed()          { reportsFailed.Add(1) }
func IncPredictionsCreated()     { predictionsCreated.Add(1) }
func IncTriageRequests()         { triageRequests.Add(1) }
func AddReconcileWarnings(n int) { reconcileWarnings.Add(int64(n)) }
func IncEventsConsumed()         { eventsConsumed.Add(1) }
func IncEventsDeadLettered()     { eventsDeadLettered.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP mdp_reports_ingested_total Number of lab reports ingested successfully.\n")
	fmt.Fprintf(w, "# TYPE mdp_reports_ingested_total counter\n")
	fmt.Fprintf(w, "mdp_reports_ingested_total %d\n", reportsIngested.Load())

	fmt.Fprintf(w, "# HELP mdp_reports_failed_total Number of lab report ingestions that failed.\n")
	fmt.Fprintf(w, "# TYPE mdp_reports_failed_total counter\n")
	fmt.Fprintf(w, "mdp_reports_failed_total %d\n", reportsFailed.Load())

	fmt.Fprintf(w, "# HELP mdp_predictions_created_total Number of predictions persisted.\n")
	fmt.Fprintf(w, "# TYPE mdp_predictions_created_total counter\n")
	fmt.Fprintf(w, "mdp_predictions_created_total %d\n", predictionsCreated.Load())

	fmt.Fprintf(w, "# HELP mdp_triage_requests_total Number of triage generations requested.\n")
	fmt.Fprintf(w, "# TYPE mdp_triage_requests_total counter\n")
	fmt.Fprintf(w, "mdp_triage_requests_total %d\n", triageRequests.Load())

	fmt.Fprintf(w, "# HELP mdp_reconcile_warnings_total Number of reconciliation warnings emitted.\n")
	fmt.Fprintf(w, "# TYPE mdp_reconcile_warnings_total counter\n")
	fmt.Fprintf(w, "mdp_reconcile_warnings_total %d\n", reconcileWarnings.Load())

	fmt.Fprintf(w, "# HELP mdp_extraction_events_consumed_total Number of extraction events consumed from the bus.\n")
	fmt.Fprintf(w, "# TYPE mdp_extraction_events_consumed_total counter\n")
	fmt.Fprintf(w, "mdp_extraction_events_consumed_total %d\n", eventsConsumed.Load())

	fmt.Fprintf(w, "# HELP mdp_extraction_events_dead_lettered_total Number of extraction events routed to the dead letter topic.\n")
	fmt.Fprintf(w, "# TYPE mdp_extraction_events_dead_lettered_total counter\n")
	fmt.Fprintf(w, "mdp_extraction_events_dead_lettered_total %d\n", eventsDeadLettered.Load())
}

// Handler serves the metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WritePrometheus(w)
	}
}
