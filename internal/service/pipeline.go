package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sage-labs/sage/internal/domain"
	"github.com/sage-labs/sage/internal/telemetry"
)

// Generator produces text from role instructions and a prompt; backed by
// the LLM client in production and by fakes in tests.
type Generator interface {
	Generate(ctx context.Context, instructions, prompt string) (string, error)
}

// Retriever returns ranked chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]RetrievedChunk, error)
}

// PipelineConfig controls retrieval width and per-step deadlines.
type PipelineConfig struct {
	RetrieveK   int
	StepTimeout time.Duration
}

// DefaultPipelineConfig returns the standard pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		RetrieveK:   3,
		StepTimeout: 120 * time.Second,
	}
}

// Pipeline runs the fixed Retrieve -> Research -> Write -> Critique
// sequence for one question. It only sequences steps and threads state;
// all reasoning is delegated to the Generator and all ranking to the
// Retriever. Every step's raw output lands in the state's trace.
type Pipeline struct {
	retriever Retriever
	generator Generator
	cfg       PipelineConfig
}

// NewPipeline creates a Pipeline instance.
func NewPipeline(retriever Retriever, generator Generator, cfg PipelineConfig) *Pipeline {
	if cfg.RetrieveK <= 0 {
		cfg.RetrieveK = DefaultPipelineConfig().RetrieveK
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = DefaultPipelineConfig().StepTimeout
	}
	return &Pipeline{retriever: retriever, generator: generator, cfg: cfg}
}

// Run executes the pipeline for a question. On inference failure the
// state collected so far is returned alongside an INFERENCE_FAILURE
// error: the trace contains only the steps that completed, never
// fabricated entries. There are no automatic retries.
func (p *Pipeline) Run(ctx context.Context, question string) (domain.PipelineState, error) {
	state := domain.NewPipelineState(question)

	type step struct {
		name domain.StepName
		run  func(context.Context, domain.PipelineState) (domain.PipelineState, error)
	}
	steps := []step{
		{domain.StepRetrieve, p.runRetrieve},
		{domain.StepResearch, p.runResearch},
		{domain.StepWrite, p.runWrite},
		{domain.StepCritique, p.runCritique},
	}

	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Run", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	for _, s := range steps {
		stepCtx, cancel := context.WithTimeout(ctx, p.cfg.StepTimeout)
		next, err := p.runStep(stepCtx, s.name, s.run, state)
		cancel()
		if err != nil {
			span.SetError(err)
			return state, err
		}
		state = next
	}

	span.SetStatus(sentry.SpanStatusOK)
	return state, nil
}

func (p *Pipeline) runStep(
	ctx context.Context,
	name domain.StepName,
	run func(context.Context, domain.PipelineState) (domain.PipelineState, error),
	state domain.PipelineState,
) (domain.PipelineState, error) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline."+string(name), telemetry.SpanAttributes{
		Step: string(name),
	})
	defer span.End()

	return run(ctx, state)
}

// runRetrieve populates the context field. An empty or unreachable index
// is not a failure: the pipeline continues with zero context and the
// trace says so.
func (p *Pipeline) runRetrieve(ctx context.Context, state domain.PipelineState) (domain.PipelineState, error) {
	chunks, err := p.retriever.Retrieve(ctx, state.Question, p.cfg.RetrieveK)
	if err != nil {
		if errors.Is(err, domain.ErrRetrievalUnavailable) {
			return state.WithContext(nil, "No relevant information found in the knowledge base."), nil
		}
		return state, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "retrieve step failed", err)
	}

	kept := make([]domain.KnowledgeChunk, len(chunks))
	sources := make([]string, 0, len(chunks))
	seen := make(map[string]struct{})
	for i, c := range chunks {
		kept[i] = c.KnowledgeChunk
		name := c.Meta(domain.MetaFilename)
		if name == "" {
			name = c.DocumentID
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			sources = append(sources, name)
		}
	}

	output := fmt.Sprintf("Found %d relevant chunks (sources: %s).", len(chunks), strings.Join(sources, ", "))
	return state.WithContext(kept, output), nil
}

func (p *Pipeline) runResearch(ctx context.Context, state domain.PipelineState) (domain.PipelineState, error) {
	analysis, err := p.generator.Generate(ctx, researcherInstructions, researchPrompt(state.Question, state.ContextText()))
	if err != nil {
		return state, inferenceFailure(domain.StepResearch, err)
	}
	return state.WithResearch(analysis, analysis), nil
}

func (p *Pipeline) runWrite(ctx context.Context, state domain.PipelineState) (domain.PipelineState, error) {
	draft, err := p.generator.Generate(ctx, writerInstructions, draftPrompt(state.Question, state.ContextText(), state.Research))
	if err != nil {
		return state, inferenceFailure(domain.StepWrite, err)
	}
	return state.WithDraft(draft, draft), nil
}

// runCritique reviews the draft and produces the final answer in two
// inference calls: feedback first, then a polished rewrite.
func (p *Pipeline) runCritique(ctx context.Context, state domain.PipelineState) (domain.PipelineState, error) {
	feedback, err := p.generator.Generate(ctx, criticInstructions,
		feedbackPrompt(state.Question, state.ContextText(), state.Research, state.Draft))
	if err != nil {
		return state, inferenceFailure(domain.StepCritique, err)
	}

	final, err := p.generator.Generate(ctx, criticInstructions, finalPrompt(state.Question, state.Draft, feedback))
	if err != nil {
		return state, inferenceFailure(domain.StepCritique, err)
	}

	output := fmt.Sprintf("Feedback:\n%s\n\nFinal response:\n%s", feedback, final)
	return state.WithAnswer(final, output), nil
}

func inferenceFailure(step domain.StepName, err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeInferenceFailure,
		fmt.Sprintf("%s step failed", step), err)
}
