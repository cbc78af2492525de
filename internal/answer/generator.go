// Package answer composes the retrieval-augmented prompt and runs the
// single generation call that produces a raw answer.
package answer

import (
	"fmt"
	"strings"

	"csvchat/internal/domain"
)

// NotInitialized is the sentinel answer returned when the pipeline has
// no built index or model yet.
const NotInitialized = "System not initialized"

// Retriever is the index-facing subset the generator needs.
type Retriever interface {
	Built() bool
	Search(query string, topK int) ([]string, error)
}

// Generator answers one question per call: retrieve supporting chunks,
// build the prompt, invoke the model once.
type Generator struct {
	retriever Retriever
	model     domain.Generator
	topK      int
}

// New creates a generator. topK bounds how many chunks feed the prompt.
func New(retriever Retriever, model domain.Generator, topK int) *Generator {
	if topK <= 0 {
		topK = 4
	}
	return &Generator{retriever: retriever, model: model, topK: topK}
}

// Answer produces the raw answer with its supporting chunks. An
// uninitialized pipeline yields the sentinel result instead of an
// error; retrieval and model failures surface as generation failures.
func (g *Generator) Answer(question string) (domain.AnswerResult, error) {
	if g == nil || g.retriever == nil || g.model == nil || !g.retriever.Built() {
		return domain.AnswerResult{Answer: NotInitialized}, nil
	}
	sources, err := g.retriever.Search(question, g.topK)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	text, err := g.model.Generate(buildPrompt(question, sources))
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return domain.AnswerResult{Answer: text, Sources: sources}, nil
}

func buildPrompt(question string, context []string) string {
	var b strings.Builder
	b.WriteString("Use the following context to answer the question at the end. ")
	b.WriteString("The context contains information about a CSV dataset. ")
	b.WriteString("If you don't know the answer, just say that you don't know, ")
	b.WriteString("don't try to make up an answer.\n\n")
	b.WriteString("Context: ")
	b.WriteString(strings.Join(context, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
