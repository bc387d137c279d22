package handlers

import (
	"net/http"

	"video-renditions/internal/pipeline"

	"github.com/gorilla/mux"
)

// PipelineInfo describes one preset.
type PipelineInfo struct {
	pipeline.Spec
	// Digest is the suffix rendition file names carry for this pipeline.
	Digest string `json:"digest"`
}

func pipelineInfo(spec pipeline.Spec) PipelineInfo {
	return PipelineInfo{Spec: spec, Digest: spec.ShortDigest()}
}

// ListPipelines returns every preset in file order.
// GET /api/pipelines
func (h *Handlers) ListPipelines(w http.ResponseWriter, _ *http.Request) {
	specs := h.presets.All()
	out := make([]PipelineInfo, 0, len(specs))
	for _, spec := range specs {
		out = append(out, pipelineInfo(spec))
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, out)
}

// GetPipeline returns one preset.
// GET /api/pipelines/{name}
func (h *Handlers) GetPipeline(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	spec, ok := h.presets.Lookup(name)
	if !ok {
		writeJSONError(w, "unknown pipeline: "+name, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, pipelineInfo(spec))
}
