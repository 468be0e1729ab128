package services

import (
	"context"
	"testing"

	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
)

// A follows B, B accepts, A posts mentioning C, C comments and B reacts.
// Every receiver ends up with exactly the notifications of its own events.
func TestSocialFlowNotifications(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, b, c := w.user("Ann"), w.user("Ben"), w.user("Cat")
	w.device(a, "tok-a", "phone-a")
	w.device(c, "tok-c", "phone-c")

	if _, err := w.follow.Follow(ctx, policy.CallerOf(a), b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.follow.Accept(ctx, policy.CallerOf(b), a.ID); err != nil {
		t.Fatal(err)
	}
	post, err := w.content.CreatePost(ctx, policy.CallerOf(a), newPostRequest("dinner", c), nil)
	if err != nil {
		t.Fatal(err)
	}
	ref := models.ItemRef{Model: models.ItemPost, Document: post.ID}
	if _, err := w.content.CreateComment(ctx, policy.CallerOf(c), models.CreateCommentRequest{
		Item: models.ItemRefRequest{Model: string(models.ItemPost), Document: post.ID.Hex()},
		Text: "count me in",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.reaction.Create(ctx, policy.CallerOf(b), ref, models.ReactionLike); err != nil {
		t.Fatal(err)
	}

	feed, err := w.content.Feed(ctx, policy.CallerOf(b), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 0 {
		t.Fatalf("B's feed = %d posts; B does not follow A", len(feed))
	}
	feed, err = w.content.Feed(ctx, policy.CallerOf(a), 1)
	if err != nil || len(feed) != 1 || feed[0].Reactions.Likes != 1 {
		t.Fatalf("A's feed = %+v, %v", feed, err)
	}

	want := map[*models.Account]map[models.NotificationType]int{
		a: {models.NotificationAccept: 1, models.NotificationComment: 1, models.NotificationReaction: 1},
		b: {models.NotificationRequest: 1},
		c: {models.NotificationMention: 1},
	}
	for acc, types := range want {
		list := w.notificationsOf(acc)
		total := 0
		for typ, n := range types {
			if got := countType(list, typ); got != n {
				t.Errorf("%s has %d %s notifications, want %d", acc.Name.First, got, typ, n)
			}
			total += n
		}
		if len(list) != total {
			t.Errorf("%s has %d notifications, want %d", acc.Name.First, len(list), total)
		}
	}

	w.drain()
	// A: accept, comment, reaction. C: mention.
	if got := len(w.pusher.pushes()); got != 4 {
		t.Fatalf("pushes = %d, want 4", got)
	}
}
