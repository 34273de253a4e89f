package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/startupbakery/chatd/tools/web_fetch"
	"github.com/startupbakery/chatd/tools/web_search"
)

const resultDelimiter = "----------------------------------------"

// SearchExecutor turns a query into a formatted block of result text for the
// completion call. Every failure degrades to placeholder text: the
// orchestrator always receives something to work with.
type SearchExecutor struct {
	Searcher   web_search.WebSearcher
	Fetcher    web_fetch.WebFetcher // nil disables page fetching
	MaxResults int
	Logger     *log.Logger
}

func (e *SearchExecutor) Execute(ctx context.Context, query string) string {
	k := e.MaxResults
	if k <= 0 {
		k = 5
	}
	if e.Searcher == nil {
		return "Web search is currently unavailable. Please configure search API keys."
	}

	results, err := e.Searcher.Search(ctx, query, k)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Printf("web search failed for %q: %v", query, err)
		}
		return fmt.Sprintf("Search for %q failed. Please try again later.", query)
	}
	if len(results) == 0 {
		return "No relevant search results found."
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\nSource: %s\n", i+1, r.Title, r.Snippet, r.URL)
		if e.Fetcher != nil && strings.TrimSpace(r.URL) != "" {
			b.WriteString("Page content:\n")
			b.WriteString(e.fetchText(ctx, r.URL))
			b.WriteString("\n")
		}
		b.WriteString(resultDelimiter)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// fetchText degrades a failed fetch to a placeholder for that result only.
func (e *SearchExecutor) fetchText(ctx context.Context, url string) string {
	res, err := e.Fetcher.Exec(ctx, url)
	if err != nil || strings.TrimSpace(res.Text) == "" {
		if err != nil && e.Logger != nil {
			e.Logger.Printf("page fetch failed for %s: %v", url, err)
		}
		return "Could not retrieve content from " + url
	}
	return res.Text
}
