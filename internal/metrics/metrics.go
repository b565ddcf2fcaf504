package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logwatch/internal/logger"
)

const namespace = "logwatch"

// RecordsProcessed counts records handed to the driver.
var RecordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "records_processed_total",
	Help:      "Total number of access-log records processed",
})

// DecodeErrors counts rows that could not be decoded.
var DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "decode_errors_total",
	Help:      "Total number of malformed input rows",
})

// SummariesEmitted counts cadence summaries handed to sinks.
var SummariesEmitted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "summaries_emitted_total",
	Help:      "Total number of interval summaries emitted",
})

// AlertTransitions counts alert state changes by the state entered.
var AlertTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "alert_transitions_total",
	Help:      "Total number of alert state transitions, by target state",
}, []string{"state"})

// AlertWindowSize is the number of records in the trailing alert window.
var AlertWindowSize = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "alert_window_records",
	Help:      "Records currently inside the alert window",
})

// AlertRate is the request rate the last alert decision was based on.
var AlertRate = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "alert_rate_per_second",
	Help:      "Average requests per second over the alert window",
})

// RuleMatches counts rule tags attached to records.
var RuleMatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "rule_matches_total",
	Help:      "Total number of records matched, by rule",
}, []string{"rule"})

// SinkErrors counts failed sink writes.
var SinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "sink_errors_total",
	Help:      "Total number of failed sink writes, by sink",
}, []string{"sink"})

// Router serves /metrics and a /healthz liveness probe.
func Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Serve exposes Router on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Metrics listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
