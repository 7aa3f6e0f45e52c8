// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/akshita317/devinsight/internal/apperr"
	"github.com/akshita317/devinsight/internal/model"
)

// MonitorService is the slice of the ingestion workflow the handlers need.
type MonitorService interface {
	AddRepository(ctx context.Context, owner, name string) (model.RepositoryRecord, error)
	ListRepositories(ctx context.Context) ([]model.RepositoryRecord, error)
	GetHealthDetail(ctx context.Context, owner, name string) (*model.HealthDetail, error)
	RemoveRepository(ctx context.Context, id int64) error
}

// OverviewProvider supplies the portfolio overview.
type OverviewProvider interface {
	Overview(ctx context.Context) (model.OverviewStats, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	monitor   MonitorService
	analytics OverviewProvider
	logger    *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(monitor MonitorService, analytics OverviewProvider, logger *slog.Logger) http.Handler {
	h := &Handler{
		monitor:   monitor,
		analytics: analytics,
		logger:    logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/", h.root)
	r.Get("/health", h.healthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Route("/repositories", func(r chi.Router) {
			r.Post("/", h.addRepository)
			r.Get("/", h.listRepositories)
			r.Get("/{owner}/{repo}/health", h.getRepositoryHealth)
			r.Delete("/{id}", h.removeRepository)
		})
		r.Get("/analytics/overview", h.getOverview)
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/settings", h.getNotificationSettings)
			r.Post("/test", h.sendTestNotification)
		})
	})

	return r
}

// root returns the service banner.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to DevInsight",
		"status":  "running",
	})
}

// healthCheck is a simple liveness endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type addRepositoryRequest struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// addRepository handles the request to start monitoring a repository.
// POST /api/repositories
func (h *Handler) addRepository(w http.ResponseWriter, r *http.Request) {
	var req addRepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.monitor.AddRepository(r.Context(), req.Owner, req.Repo)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, rec)
}

// listRepositories returns all actively monitored repositories.
// GET /api/repositories
func (h *Handler) listRepositories(w http.ResponseWriter, r *http.Request) {
	records, err := h.monitor.ListRepositories(r.Context())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if records == nil {
		records = []model.RepositoryRecord{}
	}

	respondWithJSON(w, http.StatusOK, records)
}

// getRepositoryHealth returns a freshly computed health detail payload.
// GET /api/repositories/{owner}/{repo}/health
func (h *Handler) getRepositoryHealth(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	detail, err := h.monitor.GetHealthDetail(r.Context(), owner, repo)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// removeRepository stops monitoring a repository by record id.
// DELETE /api/repositories/{id}
func (h *Handler) removeRepository(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid repository id")
		return
	}

	if err := h.monitor.RemoveRepository(r.Context(), id); err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Repository removed from monitoring"})
}

// getOverview returns portfolio-level statistics across the monitored set.
// GET /api/analytics/overview
func (h *Handler) getOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.Overview(r.Context())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, overview)
}

// respondDomainError maps the typed error taxonomy to HTTP statuses.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var invalid *apperr.InvalidRepoNameError

	switch {
	case errors.As(err, &invalid):
		respondWithError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, apperr.ErrAlreadyMonitored):
		respondWithError(w, http.StatusConflict, "Repository already being monitored")
	case errors.Is(err, apperr.ErrRepoNotFound):
		respondWithError(w, http.StatusNotFound, "Repository not found upstream")
	case errors.Is(err, apperr.ErrRecordNotFound):
		respondWithError(w, http.StatusNotFound, "Repository not found")
	case errors.Is(err, apperr.ErrUpstreamUnavailable):
		respondWithError(w, http.StatusBadGateway, "Upstream hosting API unavailable")
	default:
		h.logger.Error("Unhandled error", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
