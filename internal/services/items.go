package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
)

// items resolves polymorphic references to reactable documents. accounts
// and follows are only needed by visibleOwner.
type items struct {
	posts     repositories.PostRepository
	reviews   repositories.ReviewRepository
	comments  repositories.CommentRepository
	reactions repositories.ReactionRepository
	accounts  repositories.AccountRepository
	follows   repositories.FollowRepository
}

// canSeeAuthor checks whether caller may see content of author: the author
// is public, or caller is the author, an admin or an accepted follower.
func canSeeAuthor(ctx context.Context, follows repositories.FollowRepository, caller *policy.Caller, author *models.Account) (bool, error) {
	if !author.Private || (caller != nil && caller.ID == author.ID) {
		return true, nil
	}
	if caller == nil {
		return false, nil
	}
	following, err := isAcceptedFollower(ctx, follows, caller.ID, author.ID)
	if err != nil {
		return false, err
	}
	return policy.CanSeeContent(caller, author, following), nil
}

// owner returns the author of the referenced item.
func (x items) owner(ctx context.Context, ref models.ItemRef) (primitive.ObjectID, error) {
	switch ref.Model {
	case models.ItemPost:
		p, err := x.posts.GetByID(ctx, ref.Document)
		if err != nil {
			return primitive.NilObjectID, storeErr(err, "Post not found")
		}
		return p.User, nil
	case models.ItemReview:
		r, err := x.reviews.GetByID(ctx, ref.Document)
		if err != nil {
			return primitive.NilObjectID, storeErr(err, "Review not found")
		}
		return r.User, nil
	case models.ItemComment:
		c, err := x.comments.GetByID(ctx, ref.Document)
		if err != nil {
			return primitive.NilObjectID, storeErr(err, "Comment not found")
		}
		return c.User, nil
	}
	return primitive.NilObjectID, errs.Validation("Model must be Post, Review or Comment")
}

// visibleOwner returns the author of ref once caller is allowed to see it.
// Comments inherit the visibility of the post at the top of their thread.
// Reviews are public.
func (x items) visibleOwner(ctx context.Context, caller *policy.Caller, ref models.ItemRef) (primitive.ObjectID, error) {
	owner, err := x.owner(ctx, ref)
	if err != nil {
		return primitive.NilObjectID, err
	}
	root := ref
	for root.Model == models.ItemComment {
		c, err := x.comments.GetByID(ctx, root.Document)
		if err != nil {
			return primitive.NilObjectID, storeErr(err, "Comment not found")
		}
		root = c.Item
	}
	if root.Model != models.ItemPost {
		return owner, nil
	}

	post, err := x.posts.GetByID(ctx, root.Document)
	if err != nil {
		return primitive.NilObjectID, storeErr(err, "Post not found")
	}
	author, err := x.accounts.GetByID(ctx, post.User)
	if err != nil {
		return primitive.NilObjectID, storeErr(err, "Post not found")
	}
	ok, err := canSeeAuthor(ctx, x.follows, caller, author)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !ok {
		return primitive.NilObjectID, ErrPrivateContent
	}
	return owner, nil
}

// counts tallies reactions on ref and surfaces the caller's own.
func (x items) counts(ctx context.Context, caller *policy.Caller, ref models.ItemRef) (models.ReactionCounts, error) {
	var c models.ReactionCounts
	likes, dislikes, err := x.reactions.Counts(ctx, ref)
	if err != nil {
		return c, errs.Upstream(err, "Failed to count reactions")
	}
	c.Likes, c.Dislikes = likes, dislikes
	if caller != nil {
		mine, err := x.reactions.Get(ctx, caller.ID, ref)
		switch {
		case err == nil:
			c.Mine = mine.Type
		case !errors.Is(err, repositories.ErrNotFound):
			return c, errs.Upstream(err, "Failed to read reaction")
		}
	}
	return c, nil
}

// compacts loads the compact profiles of ids.
func compacts(ctx context.Context, accounts repositories.AccountRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AccountCompact, error) {
	list, err := accounts.GetMany(ctx, ids)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to load accounts")
	}
	out := make(map[primitive.ObjectID]models.AccountCompact, len(list))
	for i := range list {
		out[list[i].ID] = list[i].ToCompact()
	}
	return out, nil
}
