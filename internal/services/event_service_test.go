package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
)

var eventNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// eventFixture creates a thread of members and an event inside it.
func eventFixture(t *testing.T, w *world, members ...*models.Account) *models.Event {
	t.Helper()
	ctx := context.Background()
	w.event.now = func() time.Time { return eventNow }

	users := make([]primitive.ObjectID, 0, len(members))
	for _, m := range members {
		users = append(users, m.ID)
	}
	thread := &models.Thread{Users: users}
	if err := w.threads.Create(ctx, thread); err != nil {
		t.Fatal(err)
	}
	event, err := w.event.Create(ctx, policy.CallerOf(members[0]), thread.ID, models.CreateEventRequest{
		Title:     "Dinner",
		Latitude:  ptr(-6.2),
		Longitude: ptr(106.8),
		StartsAt:  eventNow.Add(24 * time.Hour),
		EndsAt:    eventNow.Add(26 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func count(ids []primitive.ObjectID, id primitive.ObjectID) int {
	n := 0
	for _, x := range ids {
		if x == id {
			n++
		}
	}
	return n
}

func TestRSVPIsIdempotentAndExclusive(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	host, guest := w.user("Host"), w.user("Guest")
	event := eventFixture(t, w, host, guest)

	for i := 0; i < 2; i++ {
		if _, err := w.event.SetRSVP(ctx, policy.CallerOf(guest), event.ID, models.RSVPGoing); err != nil {
			t.Fatalf("going #%d: %v", i+1, err)
		}
	}
	got, _ := w.events.GetByID(ctx, event.ID)
	if count(got.Going, guest.ID) != 1 {
		t.Fatalf("going = %v, want guest once", got.Going)
	}

	got, err := w.event.SetRSVP(ctx, policy.CallerOf(guest), event.ID, models.RSVPDeclined)
	if err != nil {
		t.Fatalf("declined: %v", err)
	}
	if count(got.Going, guest.ID) != 0 || count(got.Declined, guest.ID) != 1 {
		t.Fatalf("after decline going = %v declined = %v", got.Going, got.Declined)
	}

	got, err = w.event.SetRSVP(ctx, policy.CallerOf(guest), event.ID, models.RSVPNone)
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if len(got.Going) != 0 || len(got.Declined) != 0 {
		t.Fatalf("after none going = %v declined = %v", got.Going, got.Declined)
	}
}

func TestRSVPRequiresMembership(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	host, guest, outsider := w.user("Host"), w.user("Guest"), w.user("Outsider")
	event := eventFixture(t, w, host, guest)

	if _, err := w.event.SetRSVP(ctx, policy.CallerOf(outsider), event.ID, models.RSVPGoing); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("outsider kind = %s, want forbidden", errs.KindOf(err))
	}
	if _, err := w.event.SetRSVP(ctx, policy.CallerOf(guest), event.ID, "maybe"); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("unknown choice kind = %s, want validation", errs.KindOf(err))
	}
	if _, err := w.event.Get(ctx, policy.CallerOf(outsider), event.ID); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("outsider get kind = %s", errs.KindOf(err))
	}
}

func TestEventSchedule(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	host, guest := w.user("Host"), w.user("Guest")
	event := eventFixture(t, w, host, guest)

	past := eventNow.Add(-time.Hour)
	if _, err := w.event.Update(ctx, policy.CallerOf(host), event.ID, models.UpdateEventRequest{StartsAt: &past}); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("past start kind = %s", errs.KindOf(err))
	}
	early := event.StartsAt.Add(-time.Minute)
	if _, err := w.event.Update(ctx, policy.CallerOf(host), event.ID, models.UpdateEventRequest{EndsAt: &early}); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("end before start kind = %s", errs.KindOf(err))
	}

	if _, err := w.event.SetRSVP(ctx, policy.CallerOf(guest), event.ID, models.RSVPGoing); err != nil {
		t.Fatal(err)
	}
	title := "Late dinner"
	updated, err := w.event.Update(ctx, policy.CallerOf(host), event.ID, models.UpdateEventRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ := w.events.GetByID(ctx, event.ID)
	if updated.Title != title || count(stored.Going, guest.ID) != 1 {
		t.Fatalf("update lost data: %+v", stored)
	}

	if _, err := w.event.Update(ctx, policy.CallerOf(guest), event.ID, models.UpdateEventRequest{Title: &title}); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("guest update kind = %s", errs.KindOf(err))
	}
	if err := w.event.Delete(ctx, policy.CallerOf(host), event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := w.event.Get(ctx, policy.CallerOf(host), event.ID); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("deleted event kind = %s", errs.KindOf(err))
	}
}
