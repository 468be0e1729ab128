package services

import (
	"context"
	"testing"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
)

func TestFollowTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, b := w.user("Alice"), w.user("Bob")

	follow, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if follow.Status != models.FollowRequested {
		t.Fatalf("status = %s, want requested", follow.Status)
	}

	_, err = w.follow.Follow(ctx, policy.CallerOf(a), b.ID)
	if err != ErrAlreadyPending {
		t.Fatalf("second follow err = %v, want %v", err, ErrAlreadyPending)
	}
	if got := countType(w.notificationsOf(b), models.NotificationRequest); got != 1 {
		t.Fatalf("request notifications = %d, want 1", got)
	}
}

func TestFollowAcceptedEdgeIsAlreadyFollowing(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, b := w.user("Alice"), w.user("Bob")

	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := w.follow.Accept(ctx, policy.CallerOf(b), a.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID); err != ErrAlreadyFollowing {
		t.Fatalf("follow err = %v, want %v", err, ErrAlreadyFollowing)
	}
}

func TestAcceptTransitions(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, b := w.user("Alice"), w.user("Bob")

	if _, err := w.follow.Accept(ctx, policy.CallerOf(b), a.ID); err != ErrRequestNotFound {
		t.Fatalf("accept without request err = %v, want %v", err, ErrRequestNotFound)
	}

	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	follow, err := w.follow.Accept(ctx, policy.CallerOf(b), a.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if follow.Status != models.FollowAccepted {
		t.Fatalf("status = %s, want accepted", follow.Status)
	}

	_, err = w.follow.Accept(ctx, policy.CallerOf(b), a.ID)
	if errs.KindOf(err) != errs.KindConflict {
		t.Fatalf("second accept kind = %s, want conflict", errs.KindOf(err))
	}
	if got := countType(w.notificationsOf(a), models.NotificationAccept); got != 1 {
		t.Fatalf("accept notifications = %d, want 1", got)
	}
}

func TestRejectOnlyWhileRequested(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, b, c := w.user("Alice"), w.user("Bob"), w.user("Carol")

	// no edge
	if err := w.follow.Reject(ctx, policy.CallerOf(b), a.ID); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("reject none kind = %s, want not_found", errs.KindOf(err))
	}

	// accepted edge
	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := w.follow.Accept(ctx, policy.CallerOf(b), a.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := w.follow.Reject(ctx, policy.CallerOf(b), a.ID); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("reject accepted kind = %s, want not_found", errs.KindOf(err))
	}
	if _, err := w.follows.Get(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("accepted edge must survive a reject: %v", err)
	}

	// requested edge
	if _, err := w.follow.Follow(ctx, policy.CallerOf(c), b.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := w.follow.Reject(ctx, policy.CallerOf(b), c.ID); err != nil {
		t.Fatalf("reject requested: %v", err)
	}
	if _, err := w.follows.Get(ctx, c.ID, b.ID); err == nil {
		t.Fatal("rejected edge still exists")
	}
	if got := countType(w.notificationsOf(b), models.NotificationRequest); got != 1 {
		t.Fatalf("request notifications = %d, want only Alice's", got)
	}
}

func TestUnfollowRemovesEdgeAndNotifications(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, b := w.user("Alice"), w.user("Bob")

	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := w.follow.Unfollow(ctx, policy.CallerOf(a), b.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if got := len(w.notificationsOf(b)); got != 0 {
		t.Fatalf("notifications after unfollow = %d, want 0", got)
	}
	if err := w.follow.Unfollow(ctx, policy.CallerOf(a), b.ID); err != ErrFollowNotFound {
		t.Fatalf("unfollow twice err = %v, want %v", err, ErrFollowNotFound)
	}
}

func TestSelfRelationshipIsForbidden(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a := w.user("Alice")

	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), a.ID); err != ErrSelfRelationship {
		t.Fatalf("follow self err = %v", err)
	}
	if _, err := w.follow.Accept(ctx, policy.CallerOf(a), a.ID); err != ErrSelfRelationship {
		t.Fatalf("accept self err = %v", err)
	}
	if _, err := w.follow.Follow(ctx, nil, a.ID); errs.KindOf(err) != errs.KindUnauthorized {
		t.Fatalf("anonymous follow kind = %s, want unauthorized", errs.KindOf(err))
	}
}

func TestFollowListsAndPrivacy(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, b, c := w.user("Alice"), w.user("Bob"), w.user("Carol")
	b.Private = true
	if err := w.accounts.Update(ctx, b); err != nil {
		t.Fatal(err)
	}

	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	requests, err := w.follow.List(ctx, policy.CallerOf(b), b.ID, models.FollowListRequests, 1)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(requests) != 1 || requests[0].Account.ID != a.ID {
		t.Fatalf("requests = %+v, want Alice", requests)
	}
	if _, err := w.follow.List(ctx, policy.CallerOf(a), b.ID, models.FollowListRequests, 1); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("foreign requests kind = %s, want forbidden", errs.KindOf(err))
	}
	if _, err := w.follow.List(ctx, policy.CallerOf(c), b.ID, models.FollowListFollowers, 1); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("private followers kind = %s, want forbidden", errs.KindOf(err))
	}

	if _, err := w.follow.Accept(ctx, policy.CallerOf(b), a.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	followers, err := w.follow.List(ctx, policy.CallerOf(a), b.ID, models.FollowListFollowers, 1)
	if err != nil {
		t.Fatalf("accepted follower lists private followers: %v", err)
	}
	if len(followers) != 1 {
		t.Fatalf("followers = %d, want 1", len(followers))
	}

	state, err := w.follow.State(ctx, policy.CallerOf(b), a.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Following != "" || state.FollowedBy != models.FollowAccepted {
		t.Fatalf("state = %+v", state)
	}
}
