package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/bestbefore/internal/analysis"
	"github.com/erazemk/bestbefore/internal/credential"
	"github.com/erazemk/bestbefore/internal/imaging"
)

// AnalyzeHandler runs image analysis on uploaded photos.
type AnalyzeHandler struct {
	Credentials Credentials
	Analyzer    Analyzer
}

// Analyze handles POST /api/analyze?task=product|expiry|nutrition with the
// photo in the multipart field "image".
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	task, err := analysis.ParseTask(r.URL.Query().Get("task"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	apiKey, err := h.Credentials.Get(r.Context())
	if errors.Is(err, credential.ErrNotFound) {
		jsonError(w, http.StatusPreconditionFailed, analysis.ErrNoAPIKey.Error())
		return
	}
	if err != nil {
		slog.Error("failed to read api key", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to read api key")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize)
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	img, err := imaging.Prepare(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.Analyzer.Analyze(r.Context(), apiKey, img.Base64(), task)
	jsonResponse(w, http.StatusOK, res)
}
