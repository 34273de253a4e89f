package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/startupbakery/chatd/models"
	"github.com/startupbakery/chatd/provider"
)

// DecisionSource records which path produced the decision.
type DecisionSource string

const (
	SourceModel     DecisionSource = "model"
	SourceHeuristic DecisionSource = "heuristic"
)

// Decision is the outcome of the search decision unit. It is always
// well-formed: when NeedsSearch is false, Query is empty.
type Decision struct {
	NeedsSearch bool
	Query       string
	Source      DecisionSource
}

const decisionPrompt = `You are a search decision assistant. Analyze the user's query and determine if it requires current/real-time information from the web.

Return your response in JSON format with these fields:
- "needs_search": boolean (true if web search is needed, false otherwise)
- "search_query": string (optimized search query if needed, null otherwise)

A query needs web search if it:
1. Asks for current events, news, or recent information
2. Requests real-time data (stock prices, weather, sports scores)
3. Asks about recent developments or updates
4. Needs facts that might have changed recently
5. Explicitly asks to search or look something up

A query does NOT need web search if it:
1. Asks for general knowledge that's unlikely to change
2. Requests explanations of concepts or principles
3. Asks for creative content (stories, poems, code examples)
4. Seeks advice or opinions
5. Is about historical information (unless asking about recent discoveries)

Examples:
- "What's the weather today?" -> needs_search: true
- "Explain how photosynthesis works" -> needs_search: false
- "Latest news about AI" -> needs_search: true
- "Write a poem about cats" -> needs_search: false

Only output the JSON object.`

var searchKeywords = []string{
	"current", "latest", "recent", "news", "today", "yesterday",
	"what happened", "what's happening", "stock price", "weather",
	"update", "breaking", "trending", "look up", "real-time", "live", "now",
}

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwhat\s+is\s+the\s+current\b`),
	regexp.MustCompile(`\bwhat\s+are\s+the\s+latest\b`),
	regexp.MustCompile(`\bhow\s+much\s+is\b`),
	regexp.MustCompile(`\bwhen\s+did\b.*\bhappen\b`),
	regexp.MustCompile(`\bwho\s+is\s+the\s+current\b`),
}

// Decider determines whether a turn requires external search augmentation.
// The model path is higher precision; the keyword heuristic guarantees a
// well-formed decision when the model call fails or returns junk.
type Decider struct {
	LLM    provider.Provider
	Logger *log.Logger
}

func (d *Decider) Decide(ctx context.Context, lastUserMessage string) Decision {
	dec, err := d.decideModel(ctx, lastUserMessage)
	if err == nil {
		return dec
	}
	if d.Logger != nil {
		d.Logger.Printf("search decision fell back to heuristic: %v", err)
	}
	return d.decideHeuristic(lastUserMessage)
}

func (d *Decider) decideModel(ctx context.Context, lastUserMessage string) (Decision, error) {
	if d.LLM == nil {
		return Decision{}, fmt.Errorf("decision call: no completion capability")
	}
	sys, err := models.NewMessage(models.RoleSystem, decisionPrompt)
	if err != nil {
		return Decision{}, err
	}
	usr, err := models.NewMessage(models.RoleUser, fmt.Sprintf("Analyze this query: %q", lastUserMessage))
	if err != nil {
		return Decision{}, err
	}
	out, err := d.LLM.Complete(ctx, []models.Message{sys, usr})
	if err != nil {
		return Decision{}, fmt.Errorf("decision call: %w", err)
	}

	var parsed struct {
		NeedsSearch bool    `json:"needs_search"`
		SearchQuery *string `json:"search_query"`
	}
	if err := json.Unmarshal([]byte(extractFirstJSON(out)), &parsed); err != nil {
		return Decision{}, fmt.Errorf("decision parse: %w", err)
	}
	if !parsed.NeedsSearch {
		return Decision{Source: SourceModel}, nil
	}
	query := lastUserMessage
	if parsed.SearchQuery != nil && strings.TrimSpace(*parsed.SearchQuery) != "" {
		query = *parsed.SearchQuery
	}
	return Decision{NeedsSearch: true, Query: query, Source: SourceModel}, nil
}

func (d *Decider) decideHeuristic(message string) Decision {
	lower := strings.ToLower(message)
	needs := false
	for _, kw := range searchKeywords {
		if strings.Contains(lower, kw) {
			needs = true
			break
		}
	}
	if !needs {
		for _, re := range questionPatterns {
			if re.MatchString(lower) {
				needs = true
				break
			}
		}
	}
	if !needs {
		return Decision{Source: SourceHeuristic}
	}
	return Decision{NeedsSearch: true, Query: message, Source: SourceHeuristic}
}

// extractFirstJSON returns the first balanced JSON object in s, or s itself
// when none is found. Models often wrap the object in prose or fences.
func extractFirstJSON(s string) string {
	start := -1
	depth := 0
	for i, ch := range s {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return s
}
