package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// SaveHandler handles the businesses a user has been to, wants to go to
// or marked as favorite
type SaveHandler struct {
	catalog *services.CatalogService
}

// NewSaveHandler creates a new SaveHandler
func NewSaveHandler(catalog *services.CatalogService) *SaveHandler {
	return &SaveHandler{catalog: catalog}
}

// RegisterSaveRoutes registers save routes
func (h *SaveHandler) RegisterSaveRoutes(g *echo.Group) {
	g.GET("/saves", h.GetSaves)
	g.POST("/saves", h.Save)
	g.DELETE("/saves", h.Unsave)
}

// GetSaves lists the caller's saves, optionally of one type
func (h *SaveHandler) GetSaves(c echo.Context) error {
	page := pageOf(c)
	saves, err := h.catalog.ListSaves(c.Request().Context(), middleware.CallerFrom(c), models.SaveType(c.QueryParam("type")), page)
	if err != nil {
		return err
	}
	return paged(c, saves, page)
}

func (h *SaveHandler) Save(c echo.Context) error {
	var req models.SaveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	save, err := h.catalog.Save(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, save)
}

func (h *SaveHandler) Unsave(c echo.Context) error {
	var req models.SaveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.catalog.Unsave(c.Request().Context(), middleware.CallerFrom(c), req); err != nil {
		return err
	}
	return okMessage(c, "Save removed")
}
