package httpfetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/startupbakery/chatd/tools/web_fetch/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var reSpaces = regexp.MustCompile(`\s+`)

// Fetch retrieves pages over plain HTTP and extracts visible text with
// readability. Good enough for article-style pages; JS-heavy sites need the
// chromedp fetcher.
type Fetch struct {
	Timeout  time.Duration
	MaxChars int
}

func (f Fetch) Exec(ctx context.Context, url string) (models.Result, error) {
	if strings.TrimSpace(url) == "" {
		return models.Result{}, errors.New("invalid url")
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	t0 := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return models.Result{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Result{URL: url, Status: resp.StatusCode, RenderMS: int(time.Since(t0) / time.Millisecond)}, errors.New("non-200 response")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return models.Result{}, err
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), mustParseURL(url))
	if err != nil {
		return models.Result{URL: url, Status: resp.StatusCode, RenderMS: int(time.Since(t0) / time.Millisecond)}, err
	}

	text := strings.TrimSpace(reSpaces.ReplaceAllString(article.TextContent, " "))
	if len(text) > f.MaxChars {
		text = text[:f.MaxChars] + "..."
	}

	return models.Result{
		URL:      url,
		Title:    strings.TrimSpace(article.Title),
		Text:     text,
		Status:   resp.StatusCode,
		RenderMS: int(time.Since(t0) / time.Millisecond),
	}, nil
}

func mustParseURL(raw string) *nurl.URL {
	u, err := nurl.Parse(raw)
	if err != nil {
		return &nurl.URL{}
	}
	return u
}
