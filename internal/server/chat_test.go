package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/startupbakery/chatd/config"
	"github.com/startupbakery/chatd/internal/chat"
	"github.com/startupbakery/chatd/models"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Complete(ctx context.Context, msgs []models.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(msgs) > 0 && strings.HasPrefix(msgs[0].Content, "You are a search decision assistant") {
		return `{"needs_search": false, "search_query": null}`, nil
	}
	return s.reply, nil
}

func newTestHandler(llm *stubLLM) *ChatHandler {
	history := config.HistoryConfig{MaxTokens: 4000, ReserveTokens: 500, Policy: "truncate"}
	pipeline := chat.NewPipeline(
		llm,
		&chat.Decider{LLM: llm},
		&chat.SearchExecutor{MaxResults: 5},
		&chat.Trimmer{LLM: llm},
		history,
		nil,
		nil,
	)
	return &ChatHandler{Store: chat.NewStore(nil), Pipeline: pipeline}
}

func postChat(t *testing.T, h *ChatHandler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	return rec, h.chat(ctx)
}

func TestChatHappyPath(t *testing.T) {
	h := newTestHandler(&stubLLM{reply: "Hi"})

	rec, err := postChat(t, h, `{"conversation_id":"c1","message":"Hello"}`)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "Hi" || resp.ConversationID != "c1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestChatAssignsConversationID(t *testing.T) {
	h := newTestHandler(&stubLLM{reply: "Hi"})

	rec, err := postChat(t, h, `{"message":"Hello"}`)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatalf("expected a generated conversation id")
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	h := newTestHandler(&stubLLM{reply: "Hi"})

	_, err := postChat(t, h, `{"conversation_id":"c1","message":"  "}`)
	if err == nil {
		t.Fatalf("expected error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 error, got %#v", err)
	}
}

func TestChatCompletionFailureReturnsApology(t *testing.T) {
	h := newTestHandler(&stubLLM{err: errors.New("upstream down")})

	rec, err := postChat(t, h, `{"conversation_id":"c1","message":"Explain entropy"}`)
	if err != nil {
		t.Fatalf("chat handler should commit the apology itself: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != chat.ApologyText {
		t.Fatalf("expected apology text, got %q", resp.Response)
	}
	if resp.Error == "" {
		t.Fatalf("expected internal error descriptor")
	}
}

func TestClearUnknownConversationIsNoOp(t *testing.T) {
	h := newTestHandler(&stubLLM{reply: "Hi"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/ghost/clear", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("ghost")

	if err := h.clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestListConversations(t *testing.T) {
	h := newTestHandler(&stubLLM{reply: "Hi"})
	if _, err := postChat(t, h, `{"conversation_id":"c1","message":"Hello"}`); err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := h.list(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	var infos []models.ConversationInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "c1" || infos[0].MessageCount != 2 {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}
