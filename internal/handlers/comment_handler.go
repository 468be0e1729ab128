package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	content *services.ContentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(content *services.ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/comments", h.GetComments)
	g.POST("/comments", h.CreateComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// itemFromQuery reads the commented or reacted item from the model and
// document query parameters.
func itemFromQuery(c echo.Context) (models.ItemRef, error) {
	req := models.ItemRefRequest{Model: c.QueryParam("model"), Document: c.QueryParam("document")}
	if err := c.Validate(req); err != nil {
		return models.ItemRef{}, err
	}
	return req.Ref(), nil
}

// GetComments lists the comments on a post, review or comment
func (h *CommentHandler) GetComments(c echo.Context) error {
	item, err := itemFromQuery(c)
	if err != nil {
		return err
	}
	page := pageOf(c)
	comments, err := h.content.ListComments(c.Request().Context(), middleware.CallerFrom(c), item, page)
	if err != nil {
		return err
	}
	return paged(c, comments, page)
}

// CreateComment creates a new comment
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.content.CreateComment(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, comment)
}

// UpdateComment updates the text or mentions of a comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	id, err := pathID(c, "id", "comment")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.content.UpdateComment(c.Request().Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, comment)
}

// DeleteComment deletes a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := pathID(c, "id", "comment")
	if err != nil {
		return err
	}
	if err := h.content.DeleteComment(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Comment deleted")
}
