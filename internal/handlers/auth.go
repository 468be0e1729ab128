package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// AuthHandler handles sign-up, sign-in and credential recovery
type AuthHandler struct {
	accounts *services.AccountService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterAuthRoutes registers the unauthenticated account routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/sign-up", h.SignUp)
	g.POST("/sign-in", h.SignIn)
	g.POST("/firebase-sign-in", h.FirebaseSignIn)
	g.POST("/resend-confirmation", h.ResendConfirmation)
	g.POST("/confirm-user", h.Confirm)
	g.POST("/reset-password", h.ResetPassword)
}

// RegisterSessionRoutes registers routes acting on the caller's own session
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.POST("/sign-out", h.SignOut)
	g.POST("/change-password", h.ChangePassword)
}

// SignUp registers a user or business account and emails a confirmation code
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req models.SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	picture, done, err := upload(c)
	if err != nil {
		return err
	}
	defer done()

	account, err := h.accounts.SignUp(c.Request().Context(), req, picture)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, account)
}

// SignIn exchanges email and password for a token bound to the device
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.accounts.SignIn(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result)
}

// FirebaseSignIn exchanges a Firebase ID token for a local token
func (h *AuthHandler) FirebaseSignIn(c echo.Context) error {
	var req models.FirebaseSignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.accounts.FirebaseSignIn(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, result)
}

func (h *AuthHandler) ResendConfirmation(c echo.Context) error {
	var req models.EmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ResendConfirmation(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return okMessage(c, "Confirmation code sent")
}

func (h *AuthHandler) Confirm(c echo.Context) error {
	var req models.ConfirmRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	account, err := h.accounts.Confirm(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, account)
}

// ResetPassword emails a new password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.EmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ResetPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return okMessage(c, "A new password was sent to your email")
}

// SignOut ends the session the request was authenticated with
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.accounts.SignOut(c.Request().Context(), middleware.TokenFrom(c)); err != nil {
		return err
	}
	return okMessage(c, "Signed out")
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ChangePassword(c.Request().Context(), middleware.CallerFrom(c), req); err != nil {
		return err
	}
	return okMessage(c, "Password changed")
}
