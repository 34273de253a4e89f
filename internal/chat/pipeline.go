package chat

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/startupbakery/chatd/config"
	"github.com/startupbakery/chatd/internal/telemetry"
	"github.com/startupbakery/chatd/models"
	"github.com/startupbakery/chatd/provider"
)

// ApologyText is returned to the caller when the mandatory final completion
// call fails.
const ApologyText = "I'm sorry, I encountered an error processing your request."

const groundingPrompt = "Here are recent web search results. Use these to answer the user's question as best as possible. " +
	"Include a brief summary or highlight of current headlines drawn from the snippets provided, to add context to the answer. " +
	"If you don't find an answer, say so. Results:\n"

// searchTurn is transient state scoped to one Process invocation.
type searchTurn struct {
	needsSearch bool
	query       string
	results     string
}

// Pipeline sequences one chat turn: decide whether to search, optionally
// search, assemble the augmented context, call the completion capability and
// append the reply. The per-turn flow is DECIDE -> (SEARCH)? -> COMPLETE.
type Pipeline struct {
	llm     provider.Provider
	decider *Decider
	search  *SearchExecutor
	trimmer *Trimmer
	budget  int
	policy  string
	logger  *log.Logger
	tele    *telemetry.Telemetry
}

func NewPipeline(llm provider.Provider, decider *Decider, search *SearchExecutor, trimmer *Trimmer, history config.HistoryConfig, logger *log.Logger, tele *telemetry.Telemetry) *Pipeline {
	return &Pipeline{
		llm:     llm,
		decider: decider,
		search:  search,
		trimmer: trimmer,
		budget:  history.Budget(),
		policy:  history.Policy,
		logger:  logger,
		tele:    tele,
	}
}

// Process runs one turn for conv. Exactly one user message is appended
// before the decision step; exactly one assistant message is appended after
// a successful completion. On completion failure the stored history keeps
// the user turn only and the apology text is returned alongside the error.
func (p *Pipeline) Process(ctx context.Context, conv *Conversation, text string) (string, error) {
	start := time.Now()

	userMsg, err := models.NewMessage(models.RoleUser, text)
	if err != nil {
		return "", err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.append(userMsg)
	outgoing := p.trim(ctx, conv.messages)

	turn := searchTurn{}
	decision := p.decider.Decide(ctx, text)
	turn.needsSearch = decision.NeedsSearch
	turn.query = decision.Query
	if p.logger != nil {
		p.logger.Printf("conversation %s: needs_search=%t source=%s", conv.ID, decision.NeedsSearch, decision.Source)
	}

	if turn.needsSearch {
		turn.results = p.search.Execute(ctx, turn.query)
		if p.tele != nil {
			p.tele.Searches.Inc()
		}
	}

	if turn.results != "" {
		grounding, gerr := models.NewMessage(models.RoleSystem, groundingPrompt+turn.results)
		if gerr == nil {
			outgoing = append(outgoing, grounding)
		}
	}

	reply, err := p.llm.Complete(ctx, outgoing)
	if err != nil {
		if p.tele != nil {
			p.tele.ObserveChat(start, true)
		}
		return ApologyText, fmt.Errorf("completion failed: %w", err)
	}

	assistantMsg, err := models.NewMessage(models.RoleAssistant, reply)
	if err != nil {
		if p.tele != nil {
			p.tele.ObserveChat(start, true)
		}
		return ApologyText, fmt.Errorf("completion returned empty reply")
	}
	conv.append(assistantMsg)

	if p.tele != nil {
		p.tele.Completions.Inc()
		p.tele.ObserveChat(start, false)
	}
	return reply, nil
}

// trim bounds the outgoing copy; the stored history is never mutated here.
func (p *Pipeline) trim(ctx context.Context, history []models.Message) []models.Message {
	outgoing := make([]models.Message, len(history))
	copy(outgoing, history)

	before := len(outgoing)
	if p.policy == "truncate" {
		outgoing = p.trimmer.Truncate(outgoing, p.budget)
	} else {
		outgoing = p.trimmer.Summarize(ctx, outgoing, p.budget)
	}
	if p.tele != nil && len(outgoing) != before {
		p.tele.TrimRounds.Inc()
	}
	return outgoing
}
