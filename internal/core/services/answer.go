package services

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// AnswerSystemPrompt constrains the answer model to the supplied context.
const AnswerSystemPrompt = "You answer questions using ONLY the provided context.\n" +
	"Rules:\n" +
	"- Plain text only.\n" +
	"- If the answer isn't in the context, say: " + domain.FallbackAnswer + "\n" +
	"- Cite sources using tags like [file:... p003 c001] or [file:... sheet:... row012 c000].\n"

// defaultTag labels a context block whose record carries no tag.
const defaultTag = "[src]"

// Answerer asks the QA model for a cited answer.
type Answerer struct {
	llm     driven.LLMService
	timeout time.Duration
}

// NewAnswerer creates an answerer. A zero timeout disables the deadline.
func NewAnswerer(llm driven.LLMService, timeout time.Duration) *Answerer {
	return &Answerer{llm: llm, timeout: timeout}
}

// Answer sends question with contexts and returns the trimmed reply.
// Citations in the reply are not validated.
func (a *Answerer) Answer(ctx context.Context, question string, contexts []domain.ChunkRecord) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	reply, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: AnswerSystemPrompt},
		{Role: driven.RoleUser, Content: BuildAnswerPrompt(question, contexts)},
	}, driven.ChatOptions{})
	if err != nil {
		return "", domain.ClassifyExternal("answer model "+a.llm.ModelName(), err)
	}
	return strings.TrimSpace(reply), nil
}

// BuildAnswerPrompt renders the user message: tagged context blocks
// separated by "---", then the question.
func BuildAnswerPrompt(question string, contexts []domain.ChunkRecord) string {
	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		tag := c.CitationTag
		if tag == "" {
			tag = defaultTag
		}
		blocks[i] = tag + "\n" + c.Text + "\n"
	}

	var b strings.Builder
	b.WriteString("CONTEXT:\n")
	b.WriteString(strings.Join(blocks, "\n---\n"))
	b.WriteString("\n\nQUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nWrite the best possible answer with citations.")
	return b.String()
}
