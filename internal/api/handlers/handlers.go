package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/txn-etl/internal/api/middleware"
	"github.com/dvloznov/txn-etl/internal/etl"
	"github.com/dvloznov/txn-etl/internal/jobs"
	"github.com/dvloznov/txn-etl/internal/quotes"
)

// PipelineHandler handles pipeline-related endpoints.
type PipelineHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(publisher jobs.Publisher, log zerolog.Logger) *PipelineHandler {
	return &PipelineHandler{
		publisher: publisher,
		log:       log,
	}
}

// ProcessFile handles POST /api/pipeline/process. It runs the full
// pipeline synchronously and returns the transformed records with the
// run summary. Structural defects in the file map to 400; every other
// failure is a 500.
func (h *PipelineHandler) ProcessFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Path == "" {
		middleware.WriteError(w, http.StatusBadRequest, "path is required")
		return
	}

	records, summary, err := etl.Run(r.Context(), req.Path)
	if err != nil {
		var unavailable *etl.SourceUnavailableError
		if errors.As(err, &unavailable) {
			middleware.WriteError(w, http.StatusNotFound, "File not found: "+unavailable.Path)
			return
		}
		if etl.IsStructuralError(err) {
			h.log.Warn().Err(err).Str("path", req.Path).Msg("Rejected structurally defective file")
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("path", req.Path).Msg("Pipeline run failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process file")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"summary": summary,
	})
}

// EnqueueProcessing handles POST /api/pipeline/enqueue. The file is
// processed asynchronously by the worker; the response carries the job
// ID to poll.
func (h *PipelineHandler) EnqueueProcessing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Path == "" {
		middleware.WriteError(w, http.StatusBadRequest, "path is required")
		return
	}

	job := &jobs.ProcessFileJob{
		FilePath: req.Path,
	}

	if err := h.publisher.PublishProcessFile(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("path", req.Path).Msg("Failed to enqueue processing job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue processing job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("path", req.Path).Msg("Processing job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"run_id": job.RunID,
		"status": string(job.Status),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		FilePath: query.Get("file_path"),
		Status:   jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// QuotesHandler handles quote-related endpoints.
type QuotesHandler struct {
	client *quotes.Client
	log    zerolog.Logger
}

// NewQuotesHandler creates a new quotes handler.
func NewQuotesHandler(client *quotes.Client, log zerolog.Logger) *QuotesHandler {
	return &QuotesHandler{
		client: client,
		log:    log,
	}
}

// GetQuotes handles GET /api/quotes. The count query parameter controls
// how many quotes are fetched concurrently; it defaults to one.
func (h *QuotesHandler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	count := 1
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 || n > 20 {
			middleware.WriteError(w, http.StatusBadRequest, "count must be between 1 and 20")
			return
		}
		count = n
	}

	symbols := make([]string, count)
	for i := range symbols {
		symbols[i] = strconv.Itoa(i)
	}

	fetched := h.client.FetchQuotes(r.Context(), symbols)
	if len(fetched) == 0 {
		middleware.WriteError(w, http.StatusBadGateway, "Failed to fetch quotes")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": fetched,
		"count":  len(fetched),
	})
}
