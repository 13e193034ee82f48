package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sage-labs/sage/internal/api"
	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/ingest"
)

const maxUploadMemory = 32 << 20 // 32 MiB held in memory, rest spills to disk

type Ingester interface {
	Ingest(ctx context.Context, paths []string) (*ingest.Report, error)
}

type IngestHandler struct {
	svc       Ingester
	uploadDir string
}

func NewIngestHandler(svc Ingester, uploadDir string) *IngestHandler {
	return &IngestHandler{svc: svc, uploadDir: uploadDir}
}

type IngestRequest struct {
	Paths []string `json:"paths"`
}

type FileFailureResponse struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

type IngestResponse struct {
	Documents int                   `json:"documents"`
	Chunks    int                   `json:"chunks"`
	Failed    []FileFailureResponse `json:"failed"`
}

func reportToResponse(report *ingest.Report) IngestResponse {
	failed := make([]FileFailureResponse, 0, len(report.Failed))
	for _, f := range report.Failed {
		failed = append(failed, FileFailureResponse{File: f.File, Reason: f.Reason})
	}
	return IngestResponse{
		Documents: report.Documents,
		Chunks:    report.Chunks,
		Failed:    failed,
	}
}

// Ingest accepts either a multipart upload of files or a JSON body
// naming paths already on the server's filesystem.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	var paths []string
	if strings.HasPrefix(contentType, "multipart/form-data") {
		uploaded, err := h.saveUploads(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		paths = uploaded
	} else {
		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		paths = req.Paths
	}

	if len(paths) == 0 {
		api.HandleError(w, domain.ErrMissingRequiredField)
		return
	}

	report, err := h.svc.Ingest(r.Context(), paths)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	status := http.StatusOK
	if report.Documents == 0 && len(report.Failed) > 0 {
		status = http.StatusUnprocessableEntity
	}
	api.Success(w, status, reportToResponse(report))
}

func (h *IngestHandler) saveUploads(r *http.Request) ([]string, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for _, header := range r.MultipartForm.File["files"] {
		src, err := header.Open()
		if err != nil {
			return nil, err
		}

		dest := filepath.Join(h.uploadDir, filepath.Base(header.Filename))
		dst, err := os.Create(dest)
		if err != nil {
			src.Close()
			return nil, err
		}

		_, copyErr := io.Copy(dst, src)
		src.Close()
		dst.Close()
		if copyErr != nil {
			return nil, copyErr
		}

		paths = append(paths, dest)
	}
	return paths, nil
}
