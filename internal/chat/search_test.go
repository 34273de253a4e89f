package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	fetchmodels "github.com/startupbakery/chatd/tools/web_fetch/models"
	searchmodels "github.com/startupbakery/chatd/tools/web_search/models"
)

type fakeSearcher struct {
	results []searchmodels.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, q string, k int) ([]searchmodels.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) Exec(ctx context.Context, url string) (fetchmodels.Result, error) {
	if f.err != nil {
		return fetchmodels.Result{}, f.err
	}
	return fetchmodels.Result{URL: url, Text: f.text, Status: 200}, nil
}

func TestExecuteFormatsNumberedBlocks(t *testing.T) {
	searcher := &fakeSearcher{results: []searchmodels.Result{
		{Title: "First", Snippet: "snippet one", URL: "https://a.example"},
		{Title: "Second", Snippet: "snippet two", URL: "https://b.example"},
	}}
	e := &SearchExecutor{Searcher: searcher, Fetcher: &fakeFetcher{text: "page body"}, MaxResults: 5}

	out := e.Execute(context.Background(), "anything")
	if !strings.Contains(out, "1. First\nsnippet one\nSource: https://a.example") {
		t.Fatalf("first block malformed:\n%s", out)
	}
	if !strings.Contains(out, "2. Second") {
		t.Fatalf("second block missing:\n%s", out)
	}
	if !strings.Contains(out, "page body") {
		t.Fatalf("fetched page text missing:\n%s", out)
	}
	if !strings.Contains(out, resultDelimiter) {
		t.Fatalf("delimiter missing:\n%s", out)
	}
}

func TestExecuteFetchFailureDegradesPerResult(t *testing.T) {
	searcher := &fakeSearcher{results: []searchmodels.Result{
		{Title: "Only", Snippet: "s", URL: "https://broken.example"},
	}}
	e := &SearchExecutor{Searcher: searcher, Fetcher: &fakeFetcher{err: errors.New("timeout")}, MaxResults: 5}

	out := e.Execute(context.Background(), "q")
	if !strings.Contains(out, "Could not retrieve content from https://broken.example") {
		t.Fatalf("expected per-result placeholder:\n%s", out)
	}
	if !strings.Contains(out, "1. Only") {
		t.Fatalf("result block should still be present:\n%s", out)
	}
}

func TestExecuteSearchFailureDegradesWhole(t *testing.T) {
	e := &SearchExecutor{Searcher: &fakeSearcher{err: errors.New("auth")}, MaxResults: 5}
	out := e.Execute(context.Background(), "breaking news")
	if out == "" {
		t.Fatalf("degraded output must be non-empty")
	}
	if !strings.Contains(out, "failed") {
		t.Fatalf("expected explanatory placeholder, got %q", out)
	}
}

func TestExecuteNoResults(t *testing.T) {
	e := &SearchExecutor{Searcher: &fakeSearcher{}, MaxResults: 5}
	out := e.Execute(context.Background(), "q")
	if out != "No relevant search results found." {
		t.Fatalf("unexpected empty-result text: %q", out)
	}
}

func TestExecuteWithoutFetcherSkipsPages(t *testing.T) {
	searcher := &fakeSearcher{results: []searchmodels.Result{{Title: "T", Snippet: "s", URL: "https://a"}}}
	e := &SearchExecutor{Searcher: searcher, MaxResults: 5}
	out := e.Execute(context.Background(), "q")
	if strings.Contains(out, "Page content:") {
		t.Fatalf("page content should be absent without a fetcher:\n%s", out)
	}
}
