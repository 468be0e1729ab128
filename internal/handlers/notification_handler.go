package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifier *services.Notifier
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifier *services.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

// GetNotifications returns paginated notifications in the receiver's language
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	account := middleware.AccountFrom(c)
	page := pageOf(c)

	notifications, total, err := h.notifier.List(c.Request().Context(), account, page)
	if err != nil {
		return err
	}

	totalPages := int(math.Ceil(float64(total) / float64(models.PageSize)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    models.PageSize,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifier.UnreadCount(c.Request().Context(), middleware.AccountFrom(c).ID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errs.Validation("Invalid notification ID")
	}
	if err := h.notifier.MarkAsRead(c.Request().Context(), middleware.AccountFrom(c).ID, uint(id)); err != nil {
		return err
	}
	return okMessage(c, "Notification marked as read")
}

// MarkAllAsRead marks every notification of the caller as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.notifier.MarkAllAsRead(c.Request().Context(), middleware.AccountFrom(c).ID); err != nil {
		return err
	}
	return okMessage(c, "All notifications marked as read")
}
