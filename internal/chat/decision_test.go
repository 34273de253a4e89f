package chat

import (
	"context"
	"errors"
	"testing"
)

func TestDecideModelPath(t *testing.T) {
	llm := &fakeLLM{reply: `{"needs_search": true, "search_query": "ai news today"}`}
	d := &Decider{LLM: llm}
	dec := d.Decide(context.Background(), "Latest news about AI")
	if !dec.NeedsSearch {
		t.Fatalf("expected needs_search=true")
	}
	if dec.Query != "ai news today" {
		t.Fatalf("expected model query, got %q", dec.Query)
	}
	if dec.Source != SourceModel {
		t.Fatalf("expected model source, got %s", dec.Source)
	}
}

func TestDecideModelSaysNo(t *testing.T) {
	llm := &fakeLLM{reply: `{"needs_search": false, "search_query": null}`}
	d := &Decider{LLM: llm}
	dec := d.Decide(context.Background(), "Explain how photosynthesis works")
	if dec.NeedsSearch {
		t.Fatalf("expected needs_search=false")
	}
	if dec.Query != "" {
		t.Fatalf("query should be empty, got %q", dec.Query)
	}
}

func TestDecideModelWrapsJSONInProse(t *testing.T) {
	llm := &fakeLLM{reply: "Sure thing!\n```json\n{\"needs_search\": true, \"search_query\": \"spot price\"}\n```"}
	d := &Decider{LLM: llm}
	dec := d.Decide(context.Background(), "How much is gold right now?")
	if !dec.NeedsSearch || dec.Query != "spot price" {
		t.Fatalf("failed to extract embedded JSON: %+v", dec)
	}
}

func TestDecideHeuristicOnCapabilityFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream down")}
	d := &Decider{LLM: llm}

	dec := d.Decide(context.Background(), "What's the weather today?")
	if !dec.NeedsSearch {
		t.Fatalf("heuristic should flag a weather question")
	}
	if dec.Query != "What's the weather today?" {
		t.Fatalf("heuristic query should be the message verbatim, got %q", dec.Query)
	}
	if dec.Source != SourceHeuristic {
		t.Fatalf("expected heuristic source")
	}

	dec = d.Decide(context.Background(), "Explain how photosynthesis works")
	if dec.NeedsSearch {
		t.Fatalf("heuristic should not flag a concept question")
	}
	if dec.Query != "" {
		t.Fatalf("query must be empty when no search is needed")
	}
}

func TestDecideHeuristicOnParseFailure(t *testing.T) {
	llm := &fakeLLM{reply: "I think you should search for it"}
	d := &Decider{LLM: llm}
	dec := d.Decide(context.Background(), "Who is the current president of France?")
	if dec.Source != SourceHeuristic {
		t.Fatalf("malformed decision output must fall back to heuristic")
	}
	if !dec.NeedsSearch {
		t.Fatalf("question pattern should flag current-state query")
	}
}

func TestExtractFirstJSON(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"prefix {\"a\":{\"b\":2}} suffix", `{"a":{"b":2}}`},
		{"no json here", "no json here"},
	}
	for _, c := range cases {
		if got := extractFirstJSON(c.in); got != c.want {
			t.Fatalf("extractFirstJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
