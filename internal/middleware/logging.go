package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/pkg/logger"
)

// RequestID assigns every request an id and stores a logger carrying it in
// the request context.
func RequestID(base zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			l := base.With().Str(logger.FieldRequestID, id).Logger()
			c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), l)))
		},
	})
}

// AccessLog writes one log event per request.
func AccessLog() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			l := logger.Ctx(c.Request().Context())
			event := l.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				event = l.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				event = l.Warn()
			}
			event.
				Str(logger.FieldMethod, v.Method).
				Str(logger.FieldURI, v.URI).
				Int(logger.FieldStatus, v.Status).
				Int64(logger.FieldLatency, v.Latency.Milliseconds()).
				Msg("request")
			return nil
		},
	})
}

// ErrorHandler renders every failure as {success:false, message, code}.
// Classified errors map to their kind's status; echo errors keep theirs.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	code := string(errs.KindUpstream)
	message := errs.Public(err)

	var e *errs.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &e):
		status, code = e.Status(), string(e.Kind)
	case errors.As(err, &he):
		status = he.Code
		code = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(he.Code)
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Ctx(c.Request().Context()).Error().Err(err).Msg("request failed")
	}

	body := echo.Map{"success": false, "message": message, "code": code}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Ctx(c.Request().Context()).Warn().Err(err).Msg("failed to write error response")
	}
}
