// Package answer turns retrieved passages into grounded answers for the
// learning portal. Failures surface inside the result rather than as returned
// errors so API and CLI callers can hand the result straight to the student.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lectern/internal/metadata"
	"lectern/internal/retriever"
)

// DefaultContextSize is how many passages are fed to the generator when the
// caller does not ask for a specific amount.
const DefaultContextSize = 6

// Generator produces an answer from a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever fetches the passages most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, n int, scopeID string) ([]retriever.Passage, error)
}

// Passage is one piece of course material that informed an answer.
type Passage struct {
	Text     string          `json:"text"`
	Metadata metadata.Record `json:"metadata"`
}

// Result is the complete outcome of answering one question. Success reports
// whether the pipeline ran to completion; a fallback answer with no passages
// still counts as success.
type Result struct {
	Answer       string    `json:"answer"`
	PassagesUsed []Passage `json:"passages_used"`
	Success      bool      `json:"success"`
	Err          string    `json:"error,omitempty"`
}

// Assembler combines retrieval and generation into a single ask operation.
type Assembler struct {
	retriever Retriever
	generator Generator
}

// New wires an assembler from its two collaborators.
func New(r Retriever, g Generator) (*Assembler, error) {
	if r == nil {
		return nil, errors.New("answer: retriever is required")
	}
	if g == nil {
		return nil, errors.New("answer: generator is required")
	}
	return &Assembler{retriever: r, generator: g}, nil
}

// Ask answers a student question from stored course material. When scopeID is
// non-empty only passages tagged with that video are considered. Errors from
// retrieval or generation are reported through Result.Err, never returned.
func (a *Assembler) Ask(ctx context.Context, question string, nContext int, scopeID string) Result {
	result := Result{PassagesUsed: []Passage{}}
	if nContext <= 0 {
		nContext = DefaultContextSize
	}

	passages, err := a.retriever.Retrieve(ctx, question, nContext, scopeID)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	if len(passages) == 0 {
		result.Answer = fallbackAnswer(scopeID)
		result.Success = true
		return result
	}

	for _, p := range passages {
		result.PassagesUsed = append(result.PassagesUsed, Passage{Text: p.Text, Metadata: p.Metadata})
	}

	prompt := buildPrompt(question, buildContextBlock(passages))
	answerText, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	result.Answer = strings.TrimSpace(answerText)
	result.Success = true
	return result
}

func fallbackAnswer(scopeID string) string {
	if scopeID != "" {
		return fmt.Sprintf("No relevant course material found for video_id '%s'. Make sure the video was uploaded with this video_id and try rephrasing your question.", scopeID)
	}
	return "No relevant course material found. Please make sure videos or documents have been uploaded and try rephrasing your question."
}

// buildContextBlock renders passages with numbered source headers so the
// generator can cite where material came from.
func buildContextBlock(passages []retriever.Passage) string {
	parts := make([]string, 0, len(passages))
	for i, p := range passages {
		filename := p.Metadata.Lookup("filename")
		if filename == "" {
			filename = "Unknown"
		}
		subject := p.Metadata.Lookup("subject")
		chapter := p.Metadata.Lookup("chapter")

		var b strings.Builder
		fmt.Fprintf(&b, "[Source %d: %s", i+1, filename)
		if subject != "" || chapter != "" {
			b.WriteString(" — " + subject)
			if chapter != "" {
				b.WriteString(", " + chapter)
			}
		}
		b.WriteString("]\n")
		b.WriteString(p.Text)
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func buildPrompt(question, contextBlock string) string {
	return fmt.Sprintf(`%s

---

## Course material (use only this to answer):

%s

---

## Student's question:

%s

---

Provide a precise, clear answer suitable for a learning portal based only on the course material above.`, LearningPortalPrompt, contextBlock, question)
}
