package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// ReactionHandler handles likes and dislikes on posts, reviews and comments
type ReactionHandler struct {
	reactions *services.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.GET("/reactions", h.Counts)
	g.POST("/reactions", h.React)
	g.PUT("/reactions", h.Change)
	g.DELETE("/reactions", h.Withdraw)
}

// Counts returns the like and dislike totals of an item
func (h *ReactionHandler) Counts(c echo.Context) error {
	item, err := itemFromQuery(c)
	if err != nil {
		return err
	}
	counts, err := h.reactions.Counts(c.Request().Context(), middleware.CallerFrom(c), item)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, counts)
}

// React likes or dislikes an item
func (h *ReactionHandler) React(c echo.Context) error {
	var req models.ReactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reaction, err := h.reactions.Create(c.Request().Context(), middleware.CallerFrom(c), req.Item.Ref(), req.Type)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, reaction)
}

// Change switches an existing reaction between like and dislike
func (h *ReactionHandler) Change(c echo.Context) error {
	var req models.ReactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reaction, err := h.reactions.Update(c.Request().Context(), middleware.CallerFrom(c), req.Item.Ref(), req.Type)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, reaction)
}

// Withdraw removes the caller's reaction
func (h *ReactionHandler) Withdraw(c echo.Context) error {
	var req models.DeleteReactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.reactions.Delete(c.Request().Context(), middleware.CallerFrom(c), req.Item.Ref()); err != nil {
		return err
	}
	return okMessage(c, "Reaction removed")
}
