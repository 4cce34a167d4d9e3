package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/bootstrap"
	"github.com/kmorita/repair-guide-engine/internal/config"
	"github.com/kmorita/repair-guide-engine/internal/core/domain"
	"github.com/kmorita/repair-guide-engine/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := startMetricsServer(cfg.WorkerMetricsPort, workerMetrics)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeSearchPerformed(ctx, func(handlerCtx context.Context, event domain.SearchEvent) error {
		release := workerMetrics.TrackInFlight()
		defer release()
		if !event.PerformedAt.IsZero() {
			workerMetrics.ObserveLag("worker", time.Since(event.PerformedAt))
		}

		recordCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		start := time.Now()
		recordErr := app.Recorder.Handle(recordCtx, event)
		status := "ok"
		if recordErr != nil {
			status = "error"
		}
		workerMetrics.ObserveHandling("worker", status, time.Since(start))
		return recordErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func startMetricsServer(port string, workerMetrics *metrics.WorkerMetrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", workerMetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	return server
}
