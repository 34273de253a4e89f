package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/startupbakery/chatd/config"
	"github.com/startupbakery/chatd/internal/chat"
	"github.com/startupbakery/chatd/internal/telemetry"
	"github.com/startupbakery/chatd/provider"
	"github.com/startupbakery/chatd/tools/tokenizer"
	"github.com/startupbakery/chatd/tools/web_fetch"
	"github.com/startupbakery/chatd/tools/web_search"
)

func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Completion capability
	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}

	// Search capability; missing keys degrade to placeholder results instead
	// of refusing to start
	var searcher web_search.WebSearcher
	if cfg.Search.APIKey != "" {
		searcher, err = web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey)
		if err != nil {
			return err
		}
	} else {
		baseLogger.Printf("no search API key configured; search turns will degrade")
	}

	var fetcher web_fetch.WebFetcher
	if cfg.Search.FetchPages {
		fetcher, err = web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Search.Fetcher), cfg.Search.Timeout, cfg.Search.MaxPageChars)
		if err != nil {
			return err
		}
	}

	counter, err := tokenizer.NewCounter(tokenizer.DefaultEncoding)
	if err != nil {
		return err
	}

	tele := telemetry.NewTelemetry(nil)
	pipeLogger := log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	pipeline := chat.NewPipeline(
		llm,
		&chat.Decider{LLM: llm, Logger: pipeLogger},
		&chat.SearchExecutor{Searcher: searcher, Fetcher: fetcher, MaxResults: cfg.Search.MaxResults, Logger: pipeLogger},
		&chat.Trimmer{Counter: counter, LLM: llm, Logger: pipeLogger},
		cfg.History,
		pipeLogger,
		tele,
	)
	store := chat.NewStore(log.New(log.Writer(), "[STORE] ", log.LstdFlags))

	ch := &ChatHandler{Store: store, Pipeline: pipeline}
	ch.Register(e.Group("/api"))

	addr := cfg.General.Listen
	if addr == "" {
		addr = ":8000"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
