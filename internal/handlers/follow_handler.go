package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// FollowHandler handles follow request HTTP requests
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/follows", h.List)
	g.GET("/follows/:id", h.State)
	g.POST("/follow/:id", h.Follow)
	g.POST("/accept/:id", h.Accept)
	g.POST("/reject/:id", h.Reject)
	g.POST("/unfollow/:id", h.Unfollow)
}

// Follow sends a follow request to the account in the path
func (h *FollowHandler) Follow(c echo.Context) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	follow, err := h.follows.Follow(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, follow)
}

// Accept accepts the pending request sent by the account in the path
func (h *FollowHandler) Accept(c echo.Context) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	follow, err := h.follows.Accept(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, follow)
}

// Reject drops the pending request sent by the account in the path
func (h *FollowHandler) Reject(c echo.Context) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	if err := h.follows.Reject(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Request rejected")
}

// Unfollow removes the caller's edge to the account in the path
func (h *FollowHandler) Unfollow(c echo.Context) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	if err := h.follows.Unfollow(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Unfollowed")
}

// List returns followers, followees or requests. The account defaults to the caller.
func (h *FollowHandler) List(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	account := caller.ID
	if c.QueryParam("user") != "" {
		var err error
		if account, err = queryID(c, "user", "account"); err != nil {
			return err
		}
	}
	listType := models.FollowListType(c.QueryParam("type"))
	if listType == "" {
		listType = models.FollowListFollowers
	}

	page := pageOf(c)
	entries, err := h.follows.List(c.Request().Context(), caller, account, listType, page)
	if err != nil {
		return err
	}
	return paged(c, entries, page)
}

// State reports the edges between the caller and the account in the path
func (h *FollowHandler) State(c echo.Context) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	state, err := h.follows.State(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, state)
}
