package services

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
)

func ptr[T any](v T) *T { return &v }

func hexes(accounts ...*models.Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ID.Hex())
	}
	return out
}

func newPostRequest(text string, mentions ...*models.Account) models.CreatePostRequest {
	return models.CreatePostRequest{
		Title:     "Central Park",
		Latitude:  ptr(40.78),
		Longitude: ptr(-73.96),
		Text:      text,
		Mentions:  hexes(mentions...),
	}
}

func TestDiffMentions(t *testing.T) {
	u1, u2, u3 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	added, removed := DiffMentions([]primitive.ObjectID{u1, u2}, []primitive.ObjectID{u2, u3, u3})
	if len(added) != 1 || added[0] != u3 {
		t.Fatalf("added = %v, want [u3]", added)
	}
	if len(removed) != 1 || removed[0] != u1 {
		t.Fatalf("removed = %v, want [u1]", removed)
	}

	added, removed = DiffMentions(nil, nil)
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("empty diff = %v %v", added, removed)
	}
}

func TestUpdatePostMentionDiff(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	author := w.user("Author")
	u1, u2, u3 := w.user("Uno"), w.user("Dos"), w.user("Tres")

	post, err := w.content.CreatePost(ctx, policy.CallerOf(author), newPostRequest("hello", u1, u2), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := w.content.UpdatePost(ctx, policy.CallerOf(author), post.ID, models.UpdatePostRequest{Mentions: hexes(u2, u3)}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := countType(w.notificationsOf(u1), models.NotificationMention); got != 0 {
		t.Fatalf("U1 mentions = %d, want 0", got)
	}
	if got := countType(w.notificationsOf(u2), models.NotificationMention); got != 1 {
		t.Fatalf("U2 mentions = %d, want 1", got)
	}
	if got := countType(w.notificationsOf(u3), models.NotificationMention); got != 1 {
		t.Fatalf("U3 mentions = %d, want 1", got)
	}
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	author := w.user("Author")
	caller := policy.CallerOf(author)

	noPlace := newPostRequest("hi")
	noPlace.Title = ""
	if _, err := w.content.CreatePost(ctx, caller, noPlace, nil); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("no place kind = %s", errs.KindOf(err))
	}
	noLocation := newPostRequest("hi")
	noLocation.Latitude = nil
	if _, err := w.content.CreatePost(ctx, caller, noLocation, nil); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("no location kind = %s", errs.KindOf(err))
	}
	if _, err := w.content.CreatePost(ctx, caller, newPostRequest(""), nil); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("empty post kind = %s", errs.KindOf(err))
	}
	ghost := newPostRequest("hi")
	ghost.Mentions = []string{primitive.NewObjectID().Hex()}
	if _, err := w.content.CreatePost(ctx, caller, ghost, nil); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("unknown mention kind = %s", errs.KindOf(err))
	}
}

func TestPostPicturesStoredAndDropped(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	store := newMemStorage()
	w.content.storage = store
	author := w.user("Author")

	pictures := []Upload{
		{Filename: "a.JPG", ContentType: "image/jpeg", Size: 3, Reader: strings.NewReader("abc")},
		{Filename: "b.png", ContentType: "image/png", Size: 3, Reader: strings.NewReader("def")},
	}
	post, err := w.content.CreatePost(ctx, policy.CallerOf(author), newPostRequest(""), pictures)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(post.Pictures) != 2 || store.len() != 2 {
		t.Fatalf("pictures = %v, stored = %d", post.Pictures, store.len())
	}
	if !strings.HasSuffix(post.Pictures[0], ".jpg") {
		t.Fatalf("extension not normalized: %s", post.Pictures[0])
	}

	updated, err := w.content.UpdatePost(ctx, policy.CallerOf(author), post.ID, models.UpdatePostRequest{RemovePictures: post.Pictures[:1]}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Pictures) != 1 || store.len() != 1 {
		t.Fatalf("after removal pictures = %v, stored = %d", updated.Pictures, store.len())
	}

	if err := w.content.DeletePost(ctx, policy.CallerOf(author), post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.len() != 0 {
		t.Fatalf("stored after delete = %d, want 0", store.len())
	}

	bad := []Upload{{Filename: "x.txt", ContentType: "text/plain", Size: 1, Reader: strings.NewReader("x")}}
	if _, err := w.content.CreatePost(ctx, policy.CallerOf(author), newPostRequest("hi"), bad); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("non-image kind = %s", errs.KindOf(err))
	}
}

func TestPrivatePostVisibility(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	author, follower, stranger := w.user("Priv"), w.user("Fan"), w.user("Stranger")
	author.Private = true
	w.accounts.Update(ctx, author)

	post, err := w.content.CreatePost(ctx, policy.CallerOf(author), newPostRequest("secret"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.follow.Follow(ctx, policy.CallerOf(follower), author.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.content.GetPost(ctx, policy.CallerOf(follower), post.ID); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("pending follower kind = %s, want forbidden", errs.KindOf(err))
	}
	if _, err := w.follow.Accept(ctx, policy.CallerOf(author), follower.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.content.GetPost(ctx, policy.CallerOf(follower), post.ID); err != nil {
		t.Fatalf("accepted follower: %v", err)
	}
	if _, err := w.content.GetPost(ctx, policy.CallerOf(stranger), post.ID); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("stranger kind = %s, want forbidden", errs.KindOf(err))
	}
}

func TestFeedHoldsFolloweesAndSelf(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	me, friend, other := w.user("Me"), w.user("Friend"), w.user("Other")

	for _, a := range []*models.Account{me, friend, other} {
		if _, err := w.content.CreatePost(ctx, policy.CallerOf(a), newPostRequest("by "+a.Name.First), nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := w.follow.Follow(ctx, policy.CallerOf(me), friend.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.follow.Accept(ctx, policy.CallerOf(friend), me.ID); err != nil {
		t.Fatal(err)
	}

	feed, err := w.content.Feed(ctx, policy.CallerOf(me), 1)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed = %d posts, want 2", len(feed))
	}
	if feed[0].User != friend.ID || feed[1].User != me.ID {
		t.Fatal("feed is not newest first")
	}
	for _, p := range feed {
		if p.User == other.ID {
			t.Fatal("feed holds a post of an account not followed")
		}
	}
}

func TestCommentNotifiesParentOwner(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	author, commenter, mentioned := w.user("Author"), w.user("Commenter"), w.user("Mentioned")

	post, err := w.content.CreatePost(ctx, policy.CallerOf(author), newPostRequest("hi"), nil)
	if err != nil {
		t.Fatal(err)
	}
	comment, err := w.content.CreateComment(ctx, policy.CallerOf(commenter), models.CreateCommentRequest{
		Item:     models.ItemRefRequest{Model: string(models.ItemPost), Document: post.ID.Hex()},
		Text:     "nice",
		Mentions: hexes(mentioned),
	})
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	notes := w.notificationsOf(author)
	if countType(notes, models.NotificationComment) != 1 {
		t.Fatalf("author notifications = %+v", notes)
	}
	if notes[0].Detail != string(models.ItemPost) {
		t.Fatalf("comment detail = %q, want Post", notes[0].Detail)
	}
	if countType(w.notificationsOf(mentioned), models.NotificationMention) != 1 {
		t.Fatal("mentioned account was not notified")
	}

	// deleting the post cascades to the comment and its notifications
	if err := w.content.DeletePost(ctx, policy.CallerOf(author), post.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := w.comments.GetByID(ctx, comment.ID); err == nil {
		t.Fatal("comment survived its post")
	}
	if n := len(w.notificationsOf(mentioned)); n != 0 {
		t.Fatalf("mention notifications after cascade = %d, want 0", n)
	}
}

func TestReactionLifecycle(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	author, fan := w.user("Author"), w.user("Fan")

	post, err := w.content.CreatePost(ctx, policy.CallerOf(author), newPostRequest("hi"), nil)
	if err != nil {
		t.Fatal(err)
	}
	ref := models.ItemRef{Model: models.ItemPost, Document: post.ID}

	if _, err := w.reaction.Create(ctx, policy.CallerOf(fan), ref, models.ReactionLike); err != nil {
		t.Fatalf("react: %v", err)
	}
	if _, err := w.reaction.Create(ctx, policy.CallerOf(fan), ref, models.ReactionDislike); err != ErrAlreadyReacted {
		t.Fatalf("second reaction err = %v, want %v", err, ErrAlreadyReacted)
	}

	counts, err := w.reaction.Counts(ctx, policy.CallerOf(fan), ref)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Likes != 1 || counts.Dislikes != 0 || counts.Mine != models.ReactionLike {
		t.Fatalf("counts = %+v", counts)
	}

	if _, err := w.reaction.Update(ctx, policy.CallerOf(fan), ref, models.ReactionDislike); err != nil {
		t.Fatalf("update: %v", err)
	}
	notes := w.notificationsOf(author)
	if countType(notes, models.NotificationReaction) != 1 || notes[0].Detail != string(models.ReactionDislike) {
		t.Fatalf("reaction notifications after update = %+v", notes)
	}

	if err := w.reaction.Delete(ctx, policy.CallerOf(fan), ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := countType(w.notificationsOf(author), models.NotificationReaction); n != 0 {
		t.Fatalf("reaction notifications after delete = %d", n)
	}
	counts, _ = w.reaction.Counts(ctx, policy.CallerOf(author), ref)
	if counts.Likes != 0 || counts.Dislikes != 0 || counts.Mine != "" {
		t.Fatalf("counts after delete = %+v", counts)
	}
}

// privateUser adds a user whose content only accepted followers see.
func (w *world) privateUser(name string) *models.Account {
	w.t.Helper()
	a := w.user(name)
	a.Private = true
	if err := w.accounts.Update(context.Background(), a); err != nil {
		w.t.Fatal(err)
	}
	return a
}

// befriend makes follower an accepted follower of followee.
func (w *world) befriend(follower, followee *models.Account) {
	w.t.Helper()
	ctx := context.Background()
	if _, err := w.follow.Follow(ctx, policy.CallerOf(follower), followee.ID); err != nil {
		w.t.Fatal(err)
	}
	if followee.Private {
		if _, err := w.follow.Accept(ctx, policy.CallerOf(followee), follower.ID); err != nil {
			w.t.Fatal(err)
		}
	}
}

func TestCommentsOnPrivatePost(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	author, fan, stranger := w.privateUser("Priv"), w.user("Fan"), w.user("Stranger")
	w.befriend(fan, author)

	post, err := w.content.CreatePost(ctx, policy.CallerOf(author), newPostRequest("secret"), nil)
	if err != nil {
		t.Fatal(err)
	}
	onPost := models.ItemRefRequest{Model: string(models.ItemPost), Document: post.ID.Hex()}
	comment, err := w.content.CreateComment(ctx, policy.CallerOf(fan), models.CreateCommentRequest{Item: onPost, Text: "nice"})
	if err != nil {
		t.Fatalf("follower comment: %v", err)
	}
	onComment := models.ItemRefRequest{Model: string(models.ItemComment), Document: comment.ID.Hex()}

	tests := []struct {
		name string
		item models.ItemRefRequest
	}{
		{"post", onPost},
		{"reply", onComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.content.CreateComment(ctx, policy.CallerOf(stranger), models.CreateCommentRequest{Item: tt.item, Text: "hi"}); err != ErrPrivateContent {
				t.Fatalf("stranger create err = %v, want %v", err, ErrPrivateContent)
			}
			if _, err := w.content.ListComments(ctx, policy.CallerOf(stranger), tt.item.Ref(), 1); err != ErrPrivateContent {
				t.Fatalf("stranger list err = %v, want %v", err, ErrPrivateContent)
			}
			if _, err := w.content.ListComments(ctx, policy.CallerOf(fan), tt.item.Ref(), 1); err != nil {
				t.Fatalf("follower list: %v", err)
			}
		})
	}

	list, err := w.content.ListComments(ctx, policy.CallerOf(author), onPost.Ref(), 1)
	if err != nil || len(list) != 1 {
		t.Fatalf("author list = %d, %v", len(list), err)
	}
}

func TestCommentsOnReviewArePublic(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	reviewer, stranger := w.privateUser("Critic"), w.user("Stranger")
	cafe := w.business("Cafe")

	review, _, err := w.review.Create(ctx, policy.CallerOf(reviewer), models.CreateReviewRequest{Business: cafe.ID.Hex(), Rating: 4, Text: "cozy"})
	if err != nil {
		t.Fatal(err)
	}
	item := models.ItemRefRequest{Model: string(models.ItemReview), Document: review.ID.Hex()}
	if _, err := w.content.CreateComment(ctx, policy.CallerOf(stranger), models.CreateCommentRequest{Item: item, Text: "agreed"}); err != nil {
		t.Fatalf("comment on review: %v", err)
	}
}
