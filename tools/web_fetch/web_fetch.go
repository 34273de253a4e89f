package web_fetch

import (
	"context"
	"time"

	"github.com/startupbakery/chatd/tools/web_fetch/chromedp"
	"github.com/startupbakery/chatd/tools/web_fetch/httpfetch"
	"github.com/startupbakery/chatd/tools/web_fetch/models"
)

const (
	DefaultTimeout  = 10 * time.Second
	MaxCharsDefault = 2000
)

// WebFetcher retrieves a page and extracts its visible text.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

func NewWebFetcher(fetcherType FetcherType, timeout time.Duration, maxChars int) (WebFetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}

	switch fetcherType {
	case HTTPFetcherType:
		return &httpfetch.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	case ChromedpFetcherType:
		return &chromedp.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	default:
		return nil, &Error{"unsupported fetcher type"}
	}
}
