package service

import "fmt"

// Role instructions for the three reasoning steps. Each step is a pure
// function of (instructions, prompt) -> text; no agent holds state of
// its own beyond the pipeline record.
const (
	researcherInstructions = "You are a research analyst. You identify key points, gaps, and relationships " +
		"between a question and the supplied knowledge-base context. Work only from the context given to you."

	writerInstructions = "You are a writer. You draft clear, well-structured answers grounded strictly in " +
		"the supplied context and research notes. If the context does not contain the answer, say so plainly."

	criticInstructions = "You are a critical reviewer. You evaluate drafts for accuracy against the supplied " +
		"context, completeness, and clarity, and you produce polished final responses."

	// noContextGuard is appended to prompts when retrieval produced
	// nothing, so the model states the gap instead of inventing facts.
	noContextGuard = "\n\nThe knowledge base returned no relevant information for this question. " +
		"State clearly that no relevant information was found. Do not invent facts."
)

func researchPrompt(question, context string) string {
	prompt := fmt.Sprintf(
		"Analyze this question and context, identifying key points and relationships:\n\nQuestion: %s\n\nContext:\n%s",
		question, context)
	if context == "" {
		prompt += noContextGuard
	}
	return prompt
}

func draftPrompt(question, context, research string) string {
	prompt := fmt.Sprintf(
		"Draft a comprehensive response that addresses this question using the context and analysis:\n\n"+
			"Question: %s\n\nContext:\n%s\n\nAnalysis:\n%s",
		question, context, research)
	if context == "" {
		prompt += noContextGuard
	}
	return prompt
}

func feedbackPrompt(question, context, research, draft string) string {
	prompt := fmt.Sprintf(
		"Review this draft response and provide specific feedback on accuracy against the context, "+
			"completeness, clarity, and areas for improvement:\n\n"+
			"Question: %s\n\nContext:\n%s\n\nAnalysis:\n%s\n\nDraft:\n%s",
		question, context, research, draft)
	if context == "" {
		prompt += noContextGuard
	}
	return prompt
}

func finalPrompt(question, draft, feedback string) string {
	return fmt.Sprintf(
		"Create a final polished response incorporating this feedback. Address all feedback points, "+
			"keep a clear structure, and polish language and flow:\n\n"+
			"Question: %s\n\nDraft:\n%s\n\nFeedback:\n%s",
		question, draft, feedback)
}
