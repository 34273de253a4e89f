package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/startupbakery/chatd/models"
	"github.com/startupbakery/chatd/provider"
)

// messageOverheadTokens is the fixed per-message cost added on top of the
// content's token count.
const messageOverheadTokens = 4

// maxSummarizeRounds bounds summarizing truncation so a single oversized
// message cannot loop it forever.
const maxSummarizeRounds = 8

// TokenCounter estimates budget consumption for a piece of text.
type TokenCounter interface {
	Count(text string) (int, error)
}

// Trimmer bounds a message sequence to a token budget, either by dropping
// oldest messages or by collapsing the older half into a synthetic summary.
type Trimmer struct {
	Counter TokenCounter
	LLM     provider.Provider
	Logger  *log.Logger
}

// cost is token(content) + overhead; a failing counter degrades to the
// content's character length rather than crashing the trimmer.
func (t *Trimmer) cost(m models.Message) int {
	if t.Counter != nil {
		if n, err := t.Counter.Count(m.Content); err == nil {
			return n + messageOverheadTokens
		}
	}
	return len(m.Content) + messageOverheadTokens
}

func (t *Trimmer) totalCost(messages []models.Message) int {
	total := 0
	for _, m := range messages {
		total += t.cost(m)
	}
	return total
}

// Truncate keeps the newest contiguous suffix that fits the budget, restored
// to chronological order. It always returns at least the newest message,
// even when that message alone exceeds the budget.
func (t *Trimmer) Truncate(messages []models.Message, budget int) []models.Message {
	if len(messages) == 0 {
		return messages
	}
	running := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		c := t.cost(messages[i])
		if running+c > budget && start < len(messages) {
			break
		}
		running += c
		start = i
	}
	return messages[start:]
}

// Summarize returns the input unchanged when it fits the budget. Otherwise it
// collapses the older half into a single system-role summary message and
// repeats, up to maxSummarizeRounds. When a round cannot shrink the list any
// further the remainder is hard-truncated as a best effort.
func (t *Trimmer) Summarize(ctx context.Context, messages []models.Message, budget int) []models.Message {
	for round := 0; round < maxSummarizeRounds; round++ {
		if t.totalCost(messages) <= budget {
			return messages
		}
		if len(messages) < 2 {
			break
		}
		split := len(messages) / 2
		summary, err := t.summarize(ctx, messages[:split])
		if err != nil {
			if t.Logger != nil {
				t.Logger.Printf("summarization failed, falling back to truncation: %v", err)
			}
			return t.Truncate(messages, budget)
		}
		msg, err := models.NewMessage(models.RoleSystem, "Summary of earlier conversation: "+summary)
		if err != nil {
			return t.Truncate(messages, budget)
		}
		next := append([]models.Message{msg}, messages[split:]...)
		if len(next) >= len(messages) {
			// two messages collapse into summary+newest: no shrink possible
			messages = next
			break
		}
		messages = next
	}
	if t.totalCost(messages) > budget {
		return t.Truncate(messages, budget)
	}
	return messages
}

func (t *Trimmer) summarize(ctx context.Context, older []models.Message) (string, error) {
	var b strings.Builder
	b.WriteString("Summarize the following conversation:\n\n")
	for _, m := range older {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("\nSummary:")

	prompt, err := models.NewMessage(models.RoleUser, b.String())
	if err != nil {
		return "", err
	}
	if t.LLM == nil {
		return "", fmt.Errorf("no completion capability configured")
	}
	return t.LLM.Complete(ctx, []models.Message{prompt})
}
