package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/lei/ci-portal/internal/models"
	"github.com/lei/ci-portal/internal/provider"
	"github.com/lei/ci-portal/internal/provider/jenkins"
	"github.com/lei/ci-portal/internal/service"
)

// Handlers contains HTTP handler functions
type Handlers struct {
	service *service.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{service: svc}
}

// Health handles health check requests
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ListFolderBuilds handles GET /v1/folders/{folder}/builds
func (h *Handlers) ListFolderBuilds(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	folder := pathParam(r, "folder")

	if logger != nil {
		logger.Debug("listing folder builds", "folder", folder)
	}

	builds, err := h.service.ListFolderBuilds(r.Context(), folder)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	search := r.URL.Query().Get("search")
	status := models.BuildStatus(r.URL.Query().Get("status"))
	builds = FilterBuilds(builds, search, status)

	if logger != nil {
		logger.Info("folder builds listed", "folder", folder, "count", len(builds))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"builds": builds,
	})
}

// GetBuild handles GET /v1/builds/{identifier}
func (h *Handlers) GetBuild(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	buildID := pathParam(r, "identifier")

	if logger != nil {
		logger.Debug("fetching build", "build_id", buildID)
	}

	build, err := h.service.GetBuild(r.Context(), buildID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if logger != nil {
		logger.Debug("build retrieved", "build_id", buildID, "status", build.Status)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"build": build,
	})
}

// GetLatestBuild handles GET /v1/jobs/{job}/latest
func (h *Handlers) GetLatestBuild(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	jobName := pathParam(r, "job")

	if logger != nil {
		logger.Debug("fetching latest build", "job", jobName)
	}

	build, err := h.service.GetLatestBuild(r.Context(), jobName)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"build": build,
	})
}

// GetJob handles GET /v1/jobs/{job}
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	jobName := pathParam(r, "job")

	if logger != nil {
		logger.Debug("fetching job", "job", jobName)
	}

	job, err := h.service.GetJob(r.Context(), jobName)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job": job,
	})
}

// Rebuild handles POST /v1/builds/{identifier}/rebuild
func (h *Handlers) Rebuild(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	buildID := pathParam(r, "identifier")

	if logger != nil {
		logger.Info("triggering rebuild", "build_id", buildID)
	}

	if err := h.service.Rebuild(r.Context(), buildID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if logger != nil {
		logger.Info("rebuild triggered", "build_id", buildID)
	}

	w.WriteHeader(http.StatusAccepted)
}

// pathParam returns a chi URL parameter with percent-encoding undone. Job
// and build identifiers contain slashes, so the portal percent-encodes them
// into a single path segment.
func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}

// respondError writes a JSON error response with logging
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logger := GetLogger(r.Context())
	requestID := GetRequestID(r.Context())

	if logger != nil {
		logger.Error("returning error response",
			"status", status,
			"message", message,
			"request_id", requestID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message":    message,
			"code":       status,
			"request_id": requestID,
		},
	})
}

// handleServiceError maps service errors to HTTP responses with detailed logging
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := GetLogger(r.Context())
	requestID := GetRequestID(r.Context())

	if logger != nil {
		logger.Error("service error occurred",
			"error", err.Error(),
			"error_type", fmt.Sprintf("%T", err),
			"request_id", requestID)
	}

	switch {
	case errors.Is(err, jenkins.ErrInvalidIdentifier):
		respondError(w, r, http.StatusBadRequest, "invalid build identifier")
	case errors.Is(err, service.ErrBuildNotFound):
		respondError(w, r, http.StatusNotFound, "build not found")
	case errors.Is(err, provider.ErrJobNotFound):
		respondError(w, r, http.StatusNotFound, "job not found on ci server")
	case errors.Is(err, provider.ErrBuildNotFound):
		respondError(w, r, http.StatusNotFound, "build not found on ci server")
	case errors.Is(err, provider.ErrUnauthorized):
		respondError(w, r, http.StatusBadGateway, "ci server rejected proxied credentials")
	case errors.Is(err, provider.ErrProviderUnavailable):
		respondError(w, r, http.StatusBadGateway, "ci server temporarily unavailable")
	default:
		var providerErr *provider.ProviderError
		if errors.As(err, &providerErr) {
			if logger != nil {
				logger.Error("provider error details",
					"provider_code", providerErr.Code,
					"provider_message", providerErr.Message,
					"underlying_error", providerErr.Err)
			}

			if providerErr.Code >= 400 && providerErr.Code < 500 {
				respondError(w, r, providerErr.Code, providerErr.Message)
			} else {
				respondError(w, r, http.StatusBadGateway, "ci server error")
			}
			return
		}
		respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
