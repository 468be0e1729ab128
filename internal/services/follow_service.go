package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
	"github.com/goer-app/goer/backend/pkg/logger"
)

// FollowService runs the follow state machine:
// NONE -> requested -> accepted, requested -> NONE on reject and any -> NONE on unfollow.
type FollowService struct {
	follows  repositories.FollowRepository
	accounts repositories.AccountRepository
	notifier *Notifier
}

func NewFollowService(follows repositories.FollowRepository, accounts repositories.AccountRepository, notifier *Notifier) *FollowService {
	return &FollowService{follows: follows, accounts: accounts, notifier: notifier}
}

func followRef(f *models.Follow) models.ItemRef {
	return models.ItemRef{Model: models.ItemFollow, Document: f.ID}
}

// Follow creates a requested edge from caller to followee.
func (s *FollowService) Follow(ctx context.Context, caller *policy.Caller, followee primitive.ObjectID) (*models.Follow, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if caller.ID == followee {
		return nil, ErrSelfRelationship
	}
	if _, err := s.accounts.GetByID(ctx, followee); err != nil {
		return nil, storeErr(err, "Account not found")
	}

	follow := &models.Follow{Follower: caller.ID, Followee: followee, Status: models.FollowRequested}
	if err := s.follows.Create(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, s.existingEdgeErr(ctx, caller.ID, followee)
		}
		logger.Ctx(ctx).Error().Err(err).
			Str("follower_id", caller.ID.Hex()).
			Str("followee_id", followee.Hex()).
			Msg("failed to create follow")
		return nil, errs.Upstream(err, "Failed to follow")
	}

	if _, err := s.notifier.Notify(ctx, models.NotificationRequest, caller.ID, followee, followRef(follow), NotifyOptions{Push: true}); err != nil {
		return nil, err
	}
	return follow, nil
}

// existingEdgeErr turns a duplicate insert into the precise conflict.
func (s *FollowService) existingEdgeErr(ctx context.Context, follower, followee primitive.ObjectID) error {
	edge, err := s.follows.Get(ctx, follower, followee)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// removed between the insert and the read
			return errs.Conflict("Follow changed concurrently, try again")
		}
		return errs.Upstream(err, "Failed to follow")
	}
	if edge.Status == models.FollowAccepted {
		return ErrAlreadyFollowing
	}
	return ErrAlreadyPending
}

// Accept moves the requested edge from follower to caller into accepted.
func (s *FollowService) Accept(ctx context.Context, caller *policy.Caller, follower primitive.ObjectID) (*models.Follow, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if caller.ID == follower {
		return nil, ErrSelfRelationship
	}

	follow, err := s.follows.Transition(ctx, follower, caller.ID, models.FollowRequested, models.FollowAccepted)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.Upstream(err, "Failed to accept request")
		}
		edge, getErr := s.follows.Get(ctx, follower, caller.ID)
		switch {
		case getErr == nil && edge.Status == models.FollowAccepted:
			return nil, ErrAlreadyAccepted
		case getErr == nil || errors.Is(getErr, repositories.ErrNotFound):
			return nil, ErrRequestNotFound
		default:
			return nil, errs.Upstream(getErr, "Failed to accept request")
		}
	}

	if _, err := s.notifier.Notify(ctx, models.NotificationAccept, caller.ID, follower, followRef(follow), NotifyOptions{Push: true}); err != nil {
		return nil, err
	}
	return follow, nil
}

// Reject deletes a requested edge from follower to caller.
func (s *FollowService) Reject(ctx context.Context, caller *policy.Caller, follower primitive.ObjectID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if caller.ID == follower {
		return ErrSelfRelationship
	}
	follow, err := s.follows.Delete(ctx, follower, caller.ID, models.FollowRequested)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRequestNotFound
		}
		return errs.Upstream(err, "Failed to reject request")
	}
	return s.notifier.Remove(ctx, models.NotificationFilter{Item: followRef(follow)})
}

// Unfollow deletes the edge from caller to followee in any state.
func (s *FollowService) Unfollow(ctx context.Context, caller *policy.Caller, followee primitive.ObjectID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if caller.ID == followee {
		return ErrSelfRelationship
	}
	follow, err := s.follows.Delete(ctx, caller.ID, followee, "")
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrFollowNotFound
		}
		return errs.Upstream(err, "Failed to unfollow")
	}
	return s.notifier.Remove(ctx, models.NotificationFilter{Item: followRef(follow)})
}

// FollowEntry is an edge with the account on the other side.
type FollowEntry struct {
	Follow  models.Follow         `json:"follow"`
	Account models.AccountCompact `json:"account"`
}

// List returns followers, followees or pending requests of account.
// Pending requests are only visible to account itself.
func (s *FollowService) List(ctx context.Context, caller *policy.Caller, account primitive.ObjectID, listType models.FollowListType, page int) ([]FollowEntry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	switch listType {
	case models.FollowListFollowers, models.FollowListFollowing:
	case models.FollowListRequests:
		if caller.ID != account {
			return nil, errs.Forbidden("You cannot see requests of another account")
		}
	default:
		return nil, errs.Validation("Type must be followers, following or requests")
	}

	if caller.ID != account {
		target, err := s.accounts.GetByID(ctx, account)
		if err != nil {
			return nil, storeErr(err, "Account not found")
		}
		following := false
		if target.Private {
			edge, err := s.follows.Get(ctx, caller.ID, account)
			following = err == nil && edge.Status == models.FollowAccepted
		}
		if !policy.CanSeeContent(caller, target, following) {
			return nil, errs.Forbidden("This account is private")
		}
	}

	follows, err := s.follows.List(ctx, account, listType, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list follows")
	}

	others := make([]primitive.ObjectID, 0, len(follows))
	for _, f := range follows {
		others = append(others, otherSide(f, account))
	}
	accounts, err := s.accounts.GetMany(ctx, others)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to load accounts")
	}
	byID := make(map[primitive.ObjectID]models.AccountCompact, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = accounts[i].ToCompact()
	}

	entries := make([]FollowEntry, 0, len(follows))
	for _, f := range follows {
		if acc, ok := byID[otherSide(f, account)]; ok {
			entries = append(entries, FollowEntry{Follow: f, Account: acc})
		}
	}
	return entries, nil
}

func otherSide(f models.Follow, account primitive.ObjectID) primitive.ObjectID {
	if f.Follower == account {
		return f.Followee
	}
	return f.Follower
}

// State reports the edges between caller and other in both directions.
func (s *FollowService) State(ctx context.Context, caller *policy.Caller, other primitive.ObjectID) (models.FollowState, error) {
	if err := requireCaller(caller); err != nil {
		return models.FollowState{}, err
	}
	var state models.FollowState
	if out, err := s.follows.Get(ctx, caller.ID, other); err == nil {
		state.Following = out.Status
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return state, errs.Upstream(err, "Failed to read follow state")
	}
	if in, err := s.follows.Get(ctx, other, caller.ID); err == nil {
		state.FollowedBy = in.Status
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return state, errs.Upstream(err, "Failed to read follow state")
	}
	return state, nil
}

// isAcceptedFollower reports whether follower follows followee with an accepted edge.
func isAcceptedFollower(ctx context.Context, follows repositories.FollowRepository, follower, followee primitive.ObjectID) (bool, error) {
	edge, err := follows.Get(ctx, follower, followee)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, errs.Upstream(err, "Failed to read follow state")
	}
	return edge.Status == models.FollowAccepted, nil
}
