package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/txn-etl/internal/api/handlers"
	"github.com/dvloznov/txn-etl/internal/api/middleware"
	"github.com/dvloznov/txn-etl/internal/config"
	"github.com/dvloznov/txn-etl/internal/etl"
	"github.com/dvloznov/txn-etl/internal/jobs"
	"github.com/dvloznov/txn-etl/internal/jobs/inmemory"
	"github.com/dvloznov/txn-etl/internal/logger"
	"github.com/dvloznov/txn-etl/internal/quotes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobQueueSize, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	workerCtx = logger.WithContext(workerCtx, log)

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		fileJob, ok := job.(*jobs.ProcessFileJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", fileJob.JobID).
			Str("run_id", fileJob.RunID).
			Str("path", fileJob.FilePath).
			Msg("Processing file job")

		_, summary, err := etl.Run(ctx, fileJob.FilePath)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", fileJob.JobID).
				Str("path", fileJob.FilePath).
				Msg("Pipeline execution failed")
			return err
		}

		log.Info().
			Str("job_id", fileJob.JobID).
			Int("rows", summary.RowsLoaded).
			Int("invalid", summary.InvalidRows).
			Msg("Pipeline execution completed successfully")

		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	quoteClient := quotes.NewClient(quotes.ClientOptions{
		BaseURL:        cfg.QuoteAPIURL,
		Timeout:        cfg.QuoteTimeout,
		MaxAttempts:    cfg.QuoteMaxAttempts,
		RetryDelay:     cfg.QuoteRetryDelay,
		RequestsPerSec: cfg.QuoteRequestsPerSec,
	})

	// Initialize handlers
	pipelineHandler := handlers.NewPipelineHandler(jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	quotesHandler := handlers.NewQuotesHandler(quoteClient, log)

	// Create router
	mux := http.NewServeMux()

	// Pipeline endpoints
	mux.HandleFunc("/api/pipeline/process", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			pipelineHandler.ProcessFile(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/pipeline/enqueue", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			pipelineHandler.EnqueueProcessing(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Quotes endpoint
	mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			quotesHandler.GetQuotes(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
