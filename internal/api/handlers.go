package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/weltrada/product-research/internal/database"
	"github.com/weltrada/product-research/internal/runner"
	"github.com/weltrada/product-research/internal/sheet"
	"github.com/weltrada/product-research/internal/taskstore"
)

// Handlers exposes the run pipeline over HTTP.
type Handlers struct {
	runner  *runner.Runner
	tasks   taskstore.Store
	history *database.RunRepository
	baseURL string
	logger  *slog.Logger

	// cancels keeps a cancellation handle per background task. No cancel
	// route exists yet, but the plumbing avoids an uncancellable design.
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewHandlers wires the API. history may be nil when no database is
// configured.
func NewHandlers(run *runner.Runner, tasks taskstore.Store, history *database.RunRepository, baseURL string, logger *slog.Logger) *Handlers {
	return &Handlers{
		runner:  run,
		tasks:   tasks,
		history: history,
		baseURL: baseURL,
		logger:  logger.With("component", "api"),
		cancels: make(map[string]context.CancelFunc),
	}
}

// RunResponse is the synchronous success payload.
type RunResponse struct {
	Status      string `json:"status"`
	ArchiveName string `json:"archive_name"`
	DownloadURL string `json:"download_url"`
}

// TaskResponse acknowledges an async submission.
type TaskResponse struct {
	TaskID string `json:"task_id"`
}

// CreateRun accepts one uploaded spreadsheet as multipart field "file" and
// either runs synchronously or, with ?async=1, on a background task.
func (h *Handlers) CreateRun(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	async := r.URL.Query().Get("async")
	if async == "1" || async == "true" {
		h.createRunAsync(w, r, file)
		return
	}

	result, err := h.runner.Run(r.Context(), file, nil)
	if err != nil {
		if errors.Is(err, sheet.ErrInvalidInput) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("run failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "run failed")
		return
	}

	h.recordHistory(r.Context(), uuid.New().String(), result, "done")

	h.respondJSON(w, http.StatusOK, RunResponse{
		Status:      "success",
		ArchiveName: result.ArchiveName,
		DownloadURL: fmt.Sprintf("%s/downloads/%s", h.baseURL, result.ArchiveName),
	})
}

func (h *Handlers) createRunAsync(w http.ResponseWriter, r *http.Request, file io.Reader) {
	// The multipart file dies with this request, so buffer it for the worker.
	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	taskID := uuid.New().String()
	task := taskstore.Task{ID: taskID, Status: taskstore.StatusStarting, Progress: 0}
	if err := h.tasks.Put(r.Context(), task); err != nil {
		h.logger.Error("failed to register task", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to register task")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.cancels[taskID] = cancel
	h.mu.Unlock()

	go h.runTask(ctx, taskID, data)

	h.respondJSON(w, http.StatusAccepted, TaskResponse{TaskID: taskID})
}

func (h *Handlers) runTask(ctx context.Context, taskID string, data []byte) {
	defer func() {
		h.mu.Lock()
		if cancel, ok := h.cancels[taskID]; ok {
			cancel()
			delete(h.cancels, taskID)
		}
		h.mu.Unlock()
	}()

	update := func(task taskstore.Task) {
		if err := h.tasks.Put(ctx, task); err != nil {
			h.logger.Error("failed to update task", "task_id", taskID, "error", err)
		}
	}

	update(taskstore.Task{ID: taskID, Status: taskstore.StatusProcessing, Progress: taskstore.RowProgress(0, 1)})

	progress := func(processed, total int) {
		update(taskstore.Task{
			ID:       taskID,
			Status:   taskstore.StatusProcessing,
			Progress: taskstore.RowProgress(processed, total),
		})
	}

	result, err := h.runner.Run(ctx, bytes.NewReader(data), progress)
	if err != nil {
		h.logger.Error("background run failed", "task_id", taskID, "error", err)
		update(taskstore.Task{ID: taskID, Status: taskstore.StatusFailed, Progress: 100, Error: err.Error()})
		return
	}

	h.recordHistory(ctx, taskID, result, "done")

	update(taskstore.Task{
		ID:          taskID,
		Status:      taskstore.StatusDone,
		Progress:    100,
		ArchiveName: result.ArchiveName,
	})
}

// GetTask serves the polling contract for background runs.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		h.respondError(w, http.StatusBadRequest, "task ID is required")
		return
	}

	task, ok, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		h.logger.Error("failed to load task", "task_id", taskID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load task")
		return
	}
	if !ok {
		h.respondError(w, http.StatusNotFound, "task not found")
		return
	}

	h.respondJSON(w, http.StatusOK, task)
}

// ListHistory returns recent runs when the database feature is on.
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.respondError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	records, err := h.history.List(r.Context(), 100)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) recordHistory(ctx context.Context, id string, result *runner.Result, status string) {
	if h.history == nil {
		return
	}

	err := h.history.Save(ctx, database.RunRecord{
		ID:            id,
		RunName:       result.RunName,
		ArchiveName:   result.ArchiveName,
		RowsTotal:     result.RowsTotal,
		RowsProcessed: result.RowsProcessed,
		RowsSkipped:   result.RowsSkipped,
		Status:        status,
		StartedAt:     result.StartedAt,
		CompletedAt:   result.CompletedAt,
	})
	if err != nil {
		h.logger.Error("failed to record run history", "run", result.RunName, "error", err)
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
