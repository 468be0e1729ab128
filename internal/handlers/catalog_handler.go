package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// CatalogHandler handles tags, static pages, preferences and feedback
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterPublicRoutes registers catalog reads open to anonymous callers
func (h *CatalogHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/list-tags", h.ListTags)
	g.GET("/tags/:id", h.GetTag)
	g.GET("/preferences", h.ListPreferences)
}

// RegisterCatalogRoutes registers catalog routes for signed-in accounts
func (h *CatalogHandler) RegisterCatalogRoutes(g *echo.Group) {
	g.GET("/statics", h.ListStatics)
	g.GET("/statics/:id", h.GetStatic)
	g.POST("/feedback", h.SendFeedback)
}

// RegisterAdminRoutes registers catalog management
func (h *CatalogHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/tags", h.ListTags)
	g.POST("/tags", h.CreateTag)
	g.GET("/tags/:id", h.GetTag)
	g.PUT("/tags/:id", h.UpdateTag)
	g.DELETE("/tags/:id", h.DeleteTag)

	g.GET("/statics", h.ListStatics)
	g.POST("/statics", h.CreateStatic)
	g.GET("/statics/:id", h.GetStatic)
	g.PUT("/statics/:id", h.UpdateStatic)
	g.DELETE("/statics/:id", h.DeleteStatic)

	g.GET("/preferences", h.ListPreferences)
	g.POST("/preferences", h.CreatePreference)
	g.GET("/preferences/:id", h.GetPreference)
	g.PUT("/preferences/:id", h.UpdatePreference)
	g.DELETE("/preferences/:id", h.DeletePreference)

	g.GET("/feedback", h.ListFeedback)
	g.GET("/feedback/:id", h.GetFeedback)
	g.DELETE("/feedback/:id", h.DeleteFeedback)
}

// Tags

func (h *CatalogHandler) ListTags(c echo.Context) error {
	tags, err := h.catalog.ListTags(c.Request().Context(), middleware.CallerFrom(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c echo.Context) error {
	id, err := pathID(c, "id", "tag")
	if err != nil {
		return err
	}
	tag, err := h.catalog.GetTag(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, tag)
}

func (h *CatalogHandler) CreateTag(c echo.Context) error {
	var req models.TagRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tag, err := h.catalog.CreateTag(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, tag)
}

func (h *CatalogHandler) UpdateTag(c echo.Context) error {
	id, err := pathID(c, "id", "tag")
	if err != nil {
		return err
	}
	var req models.TagRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tag, err := h.catalog.UpdateTag(c.Request().Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, tag)
}

func (h *CatalogHandler) DeleteTag(c echo.Context) error {
	id, err := pathID(c, "id", "tag")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteTag(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Tag deleted")
}

// Statics

func (h *CatalogHandler) ListStatics(c echo.Context) error {
	statics, err := h.catalog.ListStatics(c.Request().Context(), middleware.CallerFrom(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, statics)
}

func (h *CatalogHandler) GetStatic(c echo.Context) error {
	id, err := pathID(c, "id", "static")
	if err != nil {
		return err
	}
	static, err := h.catalog.GetStatic(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, static)
}

func (h *CatalogHandler) CreateStatic(c echo.Context) error {
	var req models.StaticRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	static, err := h.catalog.CreateStatic(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, static)
}

func (h *CatalogHandler) UpdateStatic(c echo.Context) error {
	id, err := pathID(c, "id", "static")
	if err != nil {
		return err
	}
	var req models.StaticRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	static, err := h.catalog.UpdateStatic(c.Request().Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, static)
}

func (h *CatalogHandler) DeleteStatic(c echo.Context) error {
	id, err := pathID(c, "id", "static")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteStatic(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Static deleted")
}

// Preferences

func (h *CatalogHandler) ListPreferences(c echo.Context) error {
	preferences, err := h.catalog.ListPreferences(c.Request().Context(), middleware.CallerFrom(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, preferences)
}

func (h *CatalogHandler) GetPreference(c echo.Context) error {
	id, err := pathID(c, "id", "preference")
	if err != nil {
		return err
	}
	preference, err := h.catalog.GetPreference(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, preference)
}

func (h *CatalogHandler) CreatePreference(c echo.Context) error {
	var req models.PreferenceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	preference, err := h.catalog.CreatePreference(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, preference)
}

func (h *CatalogHandler) UpdatePreference(c echo.Context) error {
	id, err := pathID(c, "id", "preference")
	if err != nil {
		return err
	}
	var req models.PreferenceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	preference, err := h.catalog.UpdatePreference(c.Request().Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, preference)
}

func (h *CatalogHandler) DeletePreference(c echo.Context) error {
	id, err := pathID(c, "id", "preference")
	if err != nil {
		return err
	}
	if err := h.catalog.DeletePreference(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Preference deleted")
}

// Feedback

// SendFeedback stores feedback from the caller
func (h *CatalogHandler) SendFeedback(c echo.Context) error {
	var req models.FeedbackRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	feedback, err := h.catalog.SendFeedback(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, feedback)
}

func (h *CatalogHandler) ListFeedback(c echo.Context) error {
	page := pageOf(c)
	feedback, err := h.catalog.ListFeedback(c.Request().Context(), middleware.CallerFrom(c), page)
	if err != nil {
		return err
	}
	return paged(c, feedback, page)
}

func (h *CatalogHandler) GetFeedback(c echo.Context) error {
	id, err := pathID(c, "id", "feedback")
	if err != nil {
		return err
	}
	feedback, err := h.catalog.GetFeedback(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, feedback)
}

func (h *CatalogHandler) DeleteFeedback(c echo.Context) error {
	id, err := pathID(c, "id", "feedback")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteFeedback(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Feedback deleted")
}
