package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// ThreadHandler handles message threads and the events planned in them
type ThreadHandler struct {
	threads *services.ThreadService
	events  *services.EventService
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(threads *services.ThreadService, events *services.EventService) *ThreadHandler {
	return &ThreadHandler{threads: threads, events: events}
}

// RegisterThreadRoutes registers thread, message and event routes
func (h *ThreadHandler) RegisterThreadRoutes(g *echo.Group) {
	g.GET("/threads", h.GetThreads)
	g.POST("/threads", h.CreateThread)
	g.GET("/threads/:id", h.GetThread)
	g.PUT("/threads/:id", h.RenameThread)
	g.DELETE("/threads/:id", h.DeleteThread)
	g.GET("/threads/:id/messages", h.GetMessages)
	g.POST("/threads/:id/messages", h.SendMessage)

	g.GET("/threads/:id/events", h.GetEvents)
	g.POST("/threads/:id/events", h.CreateEvent)
	g.GET("/events/:id", h.GetEvent)
	g.PUT("/events/:id", h.UpdateEvent)
	g.DELETE("/events/:id", h.DeleteEvent)
	g.POST("/events/:id/rsvp", h.RSVP)
}

// GetThreads lists the caller's threads, most recently active first
func (h *ThreadHandler) GetThreads(c echo.Context) error {
	page := pageOf(c)
	threads, err := h.threads.List(c.Request().Context(), middleware.CallerFrom(c), page)
	if err != nil {
		return err
	}
	return paged(c, threads, page)
}

// CreateThread opens a thread with its first message, reusing an existing
// thread with the same members
func (h *ThreadHandler) CreateThread(c echo.Context) error {
	var req models.CreateThreadRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	thread, message, err := h.threads.Create(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, echo.Map{"thread": thread, "message": message})
}

func (h *ThreadHandler) GetThread(c echo.Context) error {
	id, err := pathID(c, "id", "thread")
	if err != nil {
		return err
	}
	thread, err := h.threads.Get(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, thread)
}

func (h *ThreadHandler) RenameThread(c echo.Context) error {
	id, err := pathID(c, "id", "thread")
	if err != nil {
		return err
	}
	var req models.UpdateThreadRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	thread, err := h.threads.Rename(c.Request().Context(), middleware.CallerFrom(c), id, req.Title)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, thread)
}

// DeleteThread deletes a thread with its messages and events
func (h *ThreadHandler) DeleteThread(c echo.Context) error {
	id, err := pathID(c, "id", "thread")
	if err != nil {
		return err
	}
	if err := h.threads.Delete(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Thread deleted")
}

func (h *ThreadHandler) GetMessages(c echo.Context) error {
	id, err := pathID(c, "id", "thread")
	if err != nil {
		return err
	}
	page := pageOf(c)
	messages, err := h.threads.Messages(c.Request().Context(), middleware.CallerFrom(c), id, page)
	if err != nil {
		return err
	}
	return paged(c, messages, page)
}

// SendMessage posts a message and pushes it to the other members
func (h *ThreadHandler) SendMessage(c echo.Context) error {
	id, err := pathID(c, "id", "thread")
	if err != nil {
		return err
	}
	var req models.CreateMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	message, err := h.threads.SendMessage(c.Request().Context(), middleware.CallerFrom(c), id, req.Text)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, message)
}

func (h *ThreadHandler) GetEvents(c echo.Context) error {
	id, err := pathID(c, "id", "thread")
	if err != nil {
		return err
	}
	page := pageOf(c)
	events, err := h.events.List(c.Request().Context(), middleware.CallerFrom(c), id, page)
	if err != nil {
		return err
	}
	return paged(c, events, page)
}

func (h *ThreadHandler) CreateEvent(c echo.Context) error {
	id, err := pathID(c, "id", "thread")
	if err != nil {
		return err
	}
	var req models.CreateEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.events.Create(c.Request().Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, event)
}

func (h *ThreadHandler) GetEvent(c echo.Context) error {
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	event, err := h.events.Get(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, event)
}

func (h *ThreadHandler) UpdateEvent(c echo.Context) error {
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	var req models.UpdateEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.events.Update(c.Request().Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, event)
}

func (h *ThreadHandler) DeleteEvent(c echo.Context) error {
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	if err := h.events.Delete(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return okMessage(c, "Event deleted")
}

// RSVP records whether the caller is going to an event
func (h *ThreadHandler) RSVP(c echo.Context) error {
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	var req models.RSVPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.events.SetRSVP(c.Request().Context(), middleware.CallerFrom(c), id, req.Choice)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, event)
}
