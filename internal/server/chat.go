package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/startupbakery/chatd/internal/chat"
)

type ChatHandler struct {
	Store    *chat.Store
	Pipeline *chat.Pipeline
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
	g.GET("/conversations", h.list)
	g.POST("/conversations/:id/clear", h.clear)
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	conv := h.Store.GetOrCreate(req.ConversationID)
	reply, err := h.Pipeline.Process(c.Request().Context(), conv, req.Message)
	if err != nil {
		// fatal completion failure: fixed apology plus internal descriptor
		return c.JSON(http.StatusInternalServerError, ChatResponse{
			ConversationID: conv.ID,
			Response:       chat.ApologyText,
			Error:          err.Error(),
		})
	}
	return c.JSON(http.StatusOK, ChatResponse{ConversationID: conv.ID, Response: reply})
}

func (h *ChatHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.List())
}

func (h *ChatHandler) clear(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id required")
	}
	h.Store.Clear(id)
	return c.NoContent(http.StatusNoContent)
}
