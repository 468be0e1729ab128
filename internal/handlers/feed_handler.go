package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/services"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	content *services.ContentService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(content *services.ContentService) *FeedHandler {
	return &FeedHandler{content: content}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the posts of the caller and its accepted followees,
// newest first, with reaction counts
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page := pageOf(c)
	posts, err := h.content.Feed(c.Request().Context(), middleware.CallerFrom(c), page)
	if err != nil {
		return err
	}
	return paged(c, posts, page)
}
