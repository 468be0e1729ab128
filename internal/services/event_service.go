package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
)

// EventService manages events scheduled inside threads and their RSVPs.
type EventService struct {
	events  repositories.EventRepository
	threads repositories.ThreadRepository
	now     func() time.Time
}

func NewEventService(events repositories.EventRepository, threads repositories.ThreadRepository) *EventService {
	return &EventService{events: events, threads: threads, now: time.Now}
}

func (s *EventService) thread(ctx context.Context, id primitive.ObjectID) (*models.Thread, error) {
	t, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Thread not found")
	}
	return t, nil
}

// load returns an event and the member set of its thread.
func (s *EventService) load(ctx context.Context, id primitive.ObjectID) (*models.Event, *models.Thread, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err, "Event not found")
	}
	thread, err := s.thread(ctx, event.Thread)
	if err != nil {
		return nil, nil, err
	}
	return event, thread, nil
}

func (s *EventService) checkSchedule(start, end time.Time) error {
	if !start.After(s.now()) {
		return errs.Validation("Event must start in the future")
	}
	if !end.After(start) {
		return errs.Validation("Event must end after it starts")
	}
	return nil
}

// List returns the events of a thread, soonest first.
func (s *EventService) List(ctx context.Context, caller *policy.Caller, threadID primitive.ObjectID, page int) ([]models.Event, error) {
	thread, err := s.thread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: policy.KindEvent, Members: thread.Users}); err != nil {
		return nil, err
	}
	events, err := s.events.ListByThread(ctx, threadID, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list events")
	}
	return events, nil
}

// Create schedules an event in a thread caller belongs to.
func (s *EventService) Create(ctx context.Context, caller *policy.Caller, threadID primitive.ObjectID, req models.CreateEventRequest) (*models.Event, error) {
	thread, err := s.thread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindEvent, Members: thread.Users}); err != nil {
		return nil, err
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, errs.Validation("Location is required")
	}
	if err := s.checkSchedule(req.StartsAt, req.EndsAt); err != nil {
		return nil, err
	}
	event := &models.Event{
		User:        caller.ID,
		Thread:      threadID,
		Title:       strings.TrimSpace(req.Title),
		Location:    models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude},
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if event.Title == "" {
		return nil, errs.Validation("Title is required")
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, errs.Upstream(err, "Failed to create event")
	}
	return event, nil
}

// Get returns an event of a thread caller belongs to.
func (s *EventService) Get(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Event, error) {
	event, thread, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Can(caller, policy.ActionRead, policy.Resource{Kind: policy.KindEvent, Members: thread.Users}); err != nil {
		return nil, err
	}
	return event, nil
}

// Update edits an event created by caller.
func (s *EventService) Update(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.UpdateEventRequest) (*models.Event, error) {
	event, thread, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: policy.KindEvent, Owner: event.User, Members: thread.Users}); err != nil {
		return nil, err
	}
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Latitude != nil {
		event.Location.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		event.Location.Longitude = *req.Longitude
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartsAt != nil || req.EndsAt != nil {
		if req.StartsAt != nil {
			event.StartsAt = *req.StartsAt
		}
		if req.EndsAt != nil {
			event.EndsAt = *req.EndsAt
		}
		if err := s.checkSchedule(event.StartsAt, event.EndsAt); err != nil {
			return nil, err
		}
	}
	if event.Title == "" {
		return nil, errs.Validation("Title is required")
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, storeErr(err, "Event not found")
	}
	return event, nil
}

// Delete removes an event created by caller.
func (s *EventService) Delete(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) error {
	event, thread, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindEvent, Owner: event.User, Members: thread.Users}); err != nil {
		return err
	}
	return storeErr(s.events.Delete(ctx, id), "Event not found")
}

// SetRSVP moves caller into the going or declined partition, or out of both
// for RSVPNone. Repeating a choice leaves a single membership.
func (s *EventService) SetRSVP(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, choice models.RSVP) (*models.Event, error) {
	switch choice {
	case models.RSVPGoing, models.RSVPDeclined, models.RSVPNone:
	default:
		return nil, errs.Validation("Choice must be going, declined or none")
	}
	_, thread, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Can(caller, policy.ActionRead, policy.Resource{Kind: policy.KindEvent, Members: thread.Users}); err != nil {
		return nil, err
	}
	event, err := s.events.SetRSVP(ctx, id, caller.ID, choice)
	if err != nil {
		return nil, storeErr(err, "Event not found")
	}
	return event, nil
}
