package domain

// StepName identifies one of the four fixed pipeline stages.
type StepName string

const (
	StepRetrieve StepName = "retrieve"
	StepResearch StepName = "research"
	StepWrite    StepName = "write"
	StepCritique StepName = "critique"
)

// PipelineSteps is the fixed execution order. The pipeline is strictly
// linear: no step is skipped and no cycle exists.
var PipelineSteps = []StepName{StepRetrieve, StepResearch, StepWrite, StepCritique}

// TraceEntry records one step's raw output for diagnostic display.
type TraceEntry struct {
	Step   StepName
	Output string
}

// PipelineState is the record threaded through the four pipeline steps.
// It is a value type: each step takes the previous state and returns a
// new one with exactly the field it owns populated (plus a trace entry),
// so no step can mutate what an earlier step produced. A state lives for
// a single question and is discarded once the response is serialized.
type PipelineState struct {
	Question string
	Context  []KnowledgeChunk
	Research string
	Draft    string
	Answer   string
	Trace    []TraceEntry
}

// NewPipelineState creates the initial state for an incoming question.
func NewPipelineState(question string) PipelineState {
	return PipelineState{Question: question}
}

// WithContext returns a copy with the retrieved context and the retrieve
// step's trace entry set. Owned by the Retrieve step.
func (s PipelineState) WithContext(chunks []KnowledgeChunk, output string) PipelineState {
	next := s.clone()
	next.Context = chunks
	next.Trace = append(next.Trace, TraceEntry{Step: StepRetrieve, Output: output})
	return next
}

// WithResearch returns a copy with the research notes set. Owned by the
// Research step.
func (s PipelineState) WithResearch(notes string, output string) PipelineState {
	next := s.clone()
	next.Research = notes
	next.Trace = append(next.Trace, TraceEntry{Step: StepResearch, Output: output})
	return next
}

// WithDraft returns a copy with the draft answer set. Owned by the Write
// step.
func (s PipelineState) WithDraft(draft string, output string) PipelineState {
	next := s.clone()
	next.Draft = draft
	next.Trace = append(next.Trace, TraceEntry{Step: StepWrite, Output: output})
	return next
}

// WithAnswer returns a copy with the final answer set. Owned by the
// Critique step; terminal field.
func (s PipelineState) WithAnswer(answer string, output string) PipelineState {
	next := s.clone()
	next.Answer = answer
	next.Trace = append(next.Trace, TraceEntry{Step: StepCritique, Output: output})
	return next
}

// ContextText joins the retrieved chunk contents for prompt assembly.
func (s PipelineState) ContextText() string {
	if len(s.Context) == 0 {
		return ""
	}
	out := ""
	for i, c := range s.Context {
		if i > 0 {
			out += "\n\n"
		}
		out += c.Content
	}
	return out
}

// clone copies the state so appends on the new value cannot alias the
// previous step's slices.
func (s PipelineState) clone() PipelineState {
	next := s
	if s.Context != nil {
		next.Context = make([]KnowledgeChunk, len(s.Context))
		copy(next.Context, s.Context)
	}
	if s.Trace != nil {
		next.Trace = make([]TraceEntry, len(s.Trace))
		copy(next.Trace, s.Trace)
	}
	return next
}
