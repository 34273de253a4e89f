package web_search

import (
	"context"

	"github.com/startupbakery/chatd/tools/web_search/brave"
	"github.com/startupbakery/chatd/tools/web_search/models"
	"github.com/startupbakery/chatd/tools/web_search/serper"
)

// WebSearcher is the search capability: given a query, return up to k ranked
// title/snippet/url tuples.
type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
