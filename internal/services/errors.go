package services

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
)

var (
	ErrSelfRelationship = errs.Forbidden("You cannot perform this action on yourself")
	ErrAlreadyPending   = errs.Conflict("A request is already pending")
	ErrAlreadyFollowing = errs.Conflict("You are already following this account")
	ErrAlreadyAccepted  = errs.Conflict("Request already accepted")
	ErrRequestNotFound  = errs.NotFound("Follow request not found")
	ErrFollowNotFound   = errs.NotFound("Follow not found")
	ErrAlreadyReacted   = errs.Conflict("You already reacted to this item")
	ErrPrivateContent   = errs.Forbidden("This account is private")
	ErrAlreadySaved     = errs.Conflict("Business already saved")
	ErrReviewTextNeeded = errs.Validation("Review text cannot be removed, delete the review instead")
	ErrEmailTaken       = errs.Conflict("Email is already registered")
	ErrInvalidLogin     = errs.Unauthorized("Invalid email or password")
	ErrPasswordChange   = errs.Forbidden("Use change-password to set a new password")
	ErrNotConfirmed     = errs.Forbidden("Account is not confirmed")
	ErrNotApproved      = errs.Unapproved("Account is not approved")
	ErrInvalidSession   = errs.Unauthorized("Invalid or expired token")
)

// storeErr classifies a repository error. ErrNotFound becomes a not_found
// error carrying notFound; anything else is an upstream failure.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return errs.NotFound(notFound)
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errs.Upstream(err, "Database error")
}

// requireCaller rejects anonymous callers of operations that act as the caller.
func requireCaller(caller *policy.Caller) error {
	if caller == nil {
		return errs.Unauthorized("Authentication required")
	}
	return nil
}

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errs.Validation("Invalid " + what + " ID")
	}
	return id, nil
}
