package services

import (
	"context"
	"errors"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
)

// ReactionService manages likes and dislikes. Counts are never stored.
type ReactionService struct {
	reactions repositories.ReactionRepository
	items     items
	notifier  *Notifier
}

func NewReactionService(
	reactions repositories.ReactionRepository,
	posts repositories.PostRepository,
	reviews repositories.ReviewRepository,
	comments repositories.CommentRepository,
	accounts repositories.AccountRepository,
	follows repositories.FollowRepository,
	notifier *Notifier,
) *ReactionService {
	return &ReactionService{
		reactions: reactions,
		items: items{
			posts:     posts,
			reviews:   reviews,
			comments:  comments,
			reactions: reactions,
			accounts:  accounts,
			follows:   follows,
		},
		notifier:  notifier,
	}
}

func reactionFilter(caller *policy.Caller, item models.ItemRef) models.NotificationFilter {
	return models.NotificationFilter{Type: models.NotificationReaction, SenderID: caller.ID.Hex(), Item: item}
}

// Create reacts to item. A second reaction by the same account is a conflict.
func (s *ReactionService) Create(ctx context.Context, caller *policy.Caller, item models.ItemRef, t models.ReactionType) (*models.Reaction, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindReaction}); err != nil {
		return nil, err
	}
	owner, err := s.items.visibleOwner(ctx, caller, item)
	if err != nil {
		return nil, err
	}

	reaction := &models.Reaction{User: caller.ID, Item: item, Type: t}
	if err := s.reactions.Create(ctx, reaction); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyReacted
		}
		return nil, errs.Upstream(err, "Failed to save reaction")
	}

	if _, err := s.notifier.Notify(ctx, models.NotificationReaction, caller.ID, owner, item, NotifyOptions{Push: true, Detail: string(t)}); err != nil {
		return nil, err
	}
	return reaction, nil
}

// Update switches the type of the caller's reaction and replaces its notification.
func (s *ReactionService) Update(ctx context.Context, caller *policy.Caller, item models.ItemRef, t models.ReactionType) (*models.Reaction, error) {
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: policy.KindReaction, Owner: caller.ID}); err != nil {
		return nil, err
	}
	owner, err := s.items.visibleOwner(ctx, caller, item)
	if err != nil {
		return nil, err
	}
	reaction, err := s.reactions.SetType(ctx, caller.ID, item, t)
	if err != nil {
		return nil, storeErr(err, "Reaction does not exist")
	}

	if err := s.notifier.Remove(ctx, reactionFilter(caller, item)); err != nil {
		return nil, err
	}
	if _, err := s.notifier.Notify(ctx, models.NotificationReaction, caller.ID, owner, item, NotifyOptions{Push: false, Detail: string(t)}); err != nil {
		return nil, err
	}
	return reaction, nil
}

// Delete withdraws the caller's reaction to item. It stays possible after
// the author of item turned private.
func (s *ReactionService) Delete(ctx context.Context, caller *policy.Caller, item models.ItemRef) error {
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindReaction, Owner: caller.ID}); err != nil {
		return err
	}
	if _, err := s.reactions.Delete(ctx, caller.ID, item); err != nil {
		return storeErr(err, "Reaction does not exist")
	}
	return s.notifier.Remove(ctx, reactionFilter(caller, item))
}

// Counts returns like and dislike totals of item plus the caller's reaction.
func (s *ReactionService) Counts(ctx context.Context, caller *policy.Caller, item models.ItemRef) (models.ReactionCounts, error) {
	if _, err := s.items.visibleOwner(ctx, caller, item); err != nil {
		return models.ReactionCounts{}, err
	}
	return s.items.counts(ctx, caller, item)
}
