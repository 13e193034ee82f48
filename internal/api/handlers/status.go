package handlers

import (
	"context"
	"net/http"

	"github.com/sage-labs/sage/internal/api"
)

type StatusStore interface {
	Count(ctx context.Context) (int, error)
}

type ChunkCounter interface {
	Counts(ctx context.Context) (total int, embedded int, err error)
}

type StatusHandler struct {
	documents      StatusStore
	chunks         ChunkCounter
	llmModel       string
	embeddingModel string
}

func NewStatusHandler(documents StatusStore, chunks ChunkCounter, llmModel, embeddingModel string) *StatusHandler {
	return &StatusHandler{
		documents:      documents,
		chunks:         chunks,
		llmModel:       llmModel,
		embeddingModel: embeddingModel,
	}
}

type StatusResponse struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	EmbeddedChunks int    `json:"embedded_chunks"`
	LLMModel       string `json:"llm_model"`
	EmbeddingModel string `json:"embedding_model"`
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	docCount, err := h.documents.Count(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	total, embedded, err := h.chunks.Counts(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StatusResponse{
		Documents:      docCount,
		Chunks:         total,
		EmbeddedChunks: embedded,
		LLMModel:       h.llmModel,
		EmbeddingModel: h.embeddingModel,
	})
}
