package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sage-labs/sage/internal/api"
	"github.com/sage-labs/sage/internal/domain"
)

type QuestionPipeline interface {
	Run(ctx context.Context, question string) (domain.PipelineState, error)
}

type AskHandler struct {
	pipeline QuestionPipeline
}

func NewAskHandler(pipeline QuestionPipeline) *AskHandler {
	return &AskHandler{pipeline: pipeline}
}

type AskRequest struct {
	Question string `json:"question"`
}

type TraceStepResponse struct {
	Step   string `json:"step"`
	Output string `json:"output"`
}

type AskResponse struct {
	Answer string              `json:"answer"`
	Trace  []TraceStepResponse `json:"trace"`
}

func traceToResponse(trace []domain.TraceEntry) []TraceStepResponse {
	steps := make([]TraceStepResponse, 0, len(trace))
	for _, entry := range trace {
		steps = append(steps, TraceStepResponse{
			Step:   string(entry.Step),
			Output: entry.Output,
		})
	}
	return steps
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.HandleError(w, domain.ErrEmptyQuestion)
		return
	}

	state, err := h.pipeline.Run(r.Context(), req.Question)
	if err != nil {
		h.writeFailure(w, err, state)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer: state.Answer,
		Trace:  traceToResponse(state.Trace),
	})
}

// AskErrorResponse is the error payload for a failed pipeline run. It
// carries whatever trace was collected before the failing step, so a
// caller can still see how far the pipeline got.
type AskErrorResponse struct {
	Error string              `json:"error"`
	Code  string              `json:"code,omitempty"`
	Trace []TraceStepResponse `json:"trace,omitempty"`
}

func (h *AskHandler) writeFailure(w http.ResponseWriter, err error, state domain.PipelineState) {
	resp := AskErrorResponse{
		Error: err.Error(),
		Trace: traceToResponse(state.Trace),
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
	}
	api.JSON(w, api.DomainErrorToHTTP(err), resp)
}
