package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// adminResources maps the admin panel resource names to account roles.
var adminResources = map[string]models.Role{
	"admins":     models.RoleAdmin,
	"managers":   models.RoleManager,
	"businesses": models.RoleBusiness,
	"users":      models.RoleUser,
}

// UserHandler handles HTTP requests related to accounts
type UserHandler struct {
	accounts *services.AccountService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// RegisterProfileRoutes registers account profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/read-profile", h.GetProfile)
	g.GET("/read-profile/:id", h.GetProfile)
	g.PUT("/update-profile", h.UpdateProfile)
	g.GET("/search", h.Search)
	g.POST("/contact-business", h.ContactBusiness)
}

// RegisterAdminRoutes registers account management for each role
func (h *UserHandler) RegisterAdminRoutes(g *echo.Group) {
	for resource, role := range adminResources {
		role := role
		rg := g.Group("/" + resource)
		rg.GET("", func(c echo.Context) error { return h.List(c, role) })
		rg.POST("", func(c echo.Context) error { return h.Create(c, role) })
		rg.GET("/:id", func(c echo.Context) error { return h.Get(c, role) })
		rg.PUT("/:id", func(c echo.Context) error { return h.Update(c, role) })
		rg.DELETE("/:id", func(c echo.Context) error { return h.Delete(c, role) })
	}
	g.POST("/businesses/:id/approve", h.Approve)
}

// GetProfile returns the caller's own profile or, with an id, what the
// caller may see of another account
func (h *UserHandler) GetProfile(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	id := caller.ID
	if c.Param("id") != "" {
		var err error
		if id, err = pathID(c, "id", "account"); err != nil {
			return err
		}
	}
	profile, err := h.accounts.Profile(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, profile)
}

// UpdateProfile updates the caller's own profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	picture, done, err := upload(c)
	if err != nil {
		return err
	}
	defer done()

	account, err := h.accounts.UpdateProfile(c.Request().Context(), caller, caller.ID, req, picture)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, account)
}

// Search finds users and businesses by name
func (h *UserHandler) Search(c echo.Context) error {
	page := pageOf(c)
	result, err := h.accounts.Search(c.Request().Context(), middleware.CallerFrom(c),
		c.QueryParam("q"), models.Role(c.QueryParam("role")), page)
	if err != nil {
		return err
	}
	return paged(c, result, page)
}

// ContactBusiness emails a business on behalf of the caller
func (h *UserHandler) ContactBusiness(c echo.Context) error {
	var req models.ContactBusinessRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ContactBusiness(c.Request().Context(), middleware.CallerFrom(c), req); err != nil {
		return err
	}
	return okMessage(c, "Email sent")
}

func (h *UserHandler) List(c echo.Context, role models.Role) error {
	page := pageOf(c)
	accounts, err := h.accounts.ListByRole(c.Request().Context(), middleware.CallerFrom(c), role, page)
	if err != nil {
		return err
	}
	return paged(c, accounts, page)
}

func (h *UserHandler) Create(c echo.Context, role models.Role) error {
	var req models.SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Role = role
	picture, done, err := upload(c)
	if err != nil {
		return err
	}
	defer done()

	account, err := h.accounts.Create(c.Request().Context(), middleware.CallerFrom(c), req, picture)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, account)
}

func (h *UserHandler) Get(c echo.Context, role models.Role) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	account, err := h.accounts.GetInRole(c.Request().Context(), middleware.CallerFrom(c), role, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, account)
}

func (h *UserHandler) Update(c echo.Context, role models.Role) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	picture, done, err := upload(c)
	if err != nil {
		return err
	}
	defer done()

	account, err := h.accounts.UpdateInRole(c.Request().Context(), middleware.CallerFrom(c), role, id, req, picture)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, account)
}

func (h *UserHandler) Delete(c echo.Context, role models.Role) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	if err := h.accounts.DeleteInRole(c.Request().Context(), middleware.CallerFrom(c), role, id); err != nil {
		return err
	}
	return okMessage(c, "Account deleted")
}

// Approve lets a business account sign in
func (h *UserHandler) Approve(c echo.Context) error {
	id, err := pathID(c, "id", "account")
	if err != nil {
		return err
	}
	account, err := h.accounts.Approve(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, account)
}
