package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	content *services.ContentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content *services.ContentService) *PostHandler {
	return &PostHandler{content: content}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a post from JSON or a multipart form with pictures
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pictures, done, err := uploads(c)
	if err != nil {
		return err
	}
	defer done()

	post, err := h.content.CreatePost(c.Request().Context(), middleware.CallerFrom(c), req, pictures)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := pathID(c, "id", "post")
	if err != nil {
		return err
	}
	post, err := h.content.GetPost(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, post)
}

// GetPosts lists the posts of the user query parameter, or the caller's own
func (h *PostHandler) GetPosts(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	user := caller.ID
	if c.QueryParam("user") != "" {
		var err error
		if user, err = queryID(c, "user", "account"); err != nil {
			return err
		}
	}
	page := pageOf(c)
	posts, err := h.content.ListPosts(c.Request().Context(), caller, user, page)
	if err != nil {
		return err
	}
	return paged(c, posts, page)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := pathID(c, "id", "post")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pictures, done, err := uploads(c)
	if err != nil {
		return err
	}
	defer done()

	post, err := h.content.UpdatePost(c.Request().Context(), middleware.CallerFrom(c), id, req, pictures)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := pathID(c, "id", "post")
	if err != nil {
		return err
	}
	if err := h.content.DeletePost(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Post deleted")
}
