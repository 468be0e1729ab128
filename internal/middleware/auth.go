package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/pkg/logger"
)

const (
	AccountKey     = "account"
	TokenKey       = "token"
	AccessTokenKey = "x-access-token"
	BearerPrefix   = "bearer "
)

// Authenticator resolves a bearer token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

var errMissingToken = errs.Unauthorized("Authentication failed")

// tokenOf reads the token from the Authorization header, falling back to
// the x-access-token header used by older clients.
func tokenOf(c echo.Context) string {
	h := c.Request().Header
	if auth := h.Get(echo.HeaderAuthorization); len(auth) > len(BearerPrefix) && strings.EqualFold(auth[:len(BearerPrefix)], BearerPrefix) {
		return strings.TrimSpace(auth[len(BearerPrefix):])
	}
	return strings.TrimSpace(h.Get(AccessTokenKey))
}

func authenticate(c echo.Context, a Authenticator, token string) error {
	ctx := c.Request().Context()
	account, err := a.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	c.Set(AccountKey, account)
	c.Set(TokenKey, token)

	l := logger.Ctx(ctx).With().Str(logger.FieldAccountID, account.ID.Hex()).Logger()
	c.SetRequest(c.Request().WithContext(logger.WithLogger(ctx, l)))
	return nil
}

// RequireAuth rejects requests without a token that belongs to a live session.
func RequireAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenOf(c)
			if token == "" {
				return errMissingToken
			}
			if err := authenticate(c, a, token); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise serves the request anonymously.
func OptionalAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := tokenOf(c); token != "" {
				if err := authenticate(c, a, token); err != nil {
					logger.Ctx(c.Request().Context()).Debug().Err(err).Msg("ignoring invalid token")
				}
			}
			return next(c)
		}
	}
}

// AccountFrom returns the authenticated account, or nil.
func AccountFrom(c echo.Context) *models.Account {
	if a, ok := c.Get(AccountKey).(*models.Account); ok {
		return a
	}
	return nil
}

// CallerFrom returns the authenticated caller, or nil for anonymous requests.
func CallerFrom(c echo.Context) *policy.Caller {
	if a := AccountFrom(c); a != nil {
		return policy.CallerOf(a)
	}
	return nil
}

// TokenFrom returns the token the request was authenticated with.
func TokenFrom(c echo.Context) string {
	t, _ := c.Get(TokenKey).(string)
	return t
}
