package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"video-renditions/internal/logging"
	"video-renditions/internal/middleware"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/queue"
	"video-renditions/internal/renditions"

	"github.com/go-playground/validator/v10"
)

// maxRequestBytes bounds a transcode request body.
const maxRequestBytes = 1 << 20

var validate = validator.New()

// TranscodeRequest asks for renditions of one source. Named presets come
// first, followed by inline specs.
type TranscodeRequest struct {
	Path          string          `json:"path" validate:"required"`
	ContentDigest string          `json:"contentDigest,omitempty" validate:"omitempty,hexadecimal"`
	Pipelines     []string        `json:"pipelines,omitempty" validate:"dive,required"`
	Specs         []pipeline.Spec `json:"specs,omitempty"`
}

// Transcode builds the requested renditions and returns the aggregate.
// POST /api/transcode
func (h *Handlers) Transcode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req TranscodeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSONError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(req.Path) {
		writeJSONError(w, "path must be absolute", http.StatusBadRequest)
		return
	}

	for i := range req.Specs {
		if err := req.Specs[i].Validate(); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	specs, err := h.presets.Select(req.Pipelines)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	specs = append(specs, req.Specs...)

	path := filepath.Clean(req.Path)
	if !h.exists(path) {
		writeJSONError(w, "source not found: "+path, http.StatusNotFound)
		return
	}

	digest := req.ContentDigest
	if digest == "" {
		digest, err = h.digest(path)
		if err != nil {
			logging.Error("Failed to hash %s: %v", path, err)
			writeJSONError(w, "failed to read source", http.StatusInternalServerError)
			return
		}
	}

	logging.Debug("[%s] Transcode %s with %d pipelines", middleware.GetRequestID(r.Context()), path, len(specs))

	res, err := h.transcoder.Transcode(r.Context(), queue.NewSourceFile(path, digest), specs)
	if err != nil {
		status, msg := transcodeErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logging.Error("[%s] Transcode of %s failed: %v", middleware.GetRequestID(r.Context()), path, err)
		}
		writeJSONError(w, msg, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, res)
}

func transcodeErrorStatus(err error) (int, string) {
	var verr *pipeline.ValidationError
	var rerr *renditions.RenditionError
	switch {
	case errors.Is(err, renditions.ErrEmptyPipelineList):
		return http.StatusBadRequest, "no pipelines requested"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "server is shutting down"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request canceled"
	case errors.As(err, &rerr):
		return http.StatusBadGateway, fmt.Sprintf("rendition %s failed", rerr.Pipeline)
	default:
		return http.StatusInternalServerError, "transcode failed"
	}
}
