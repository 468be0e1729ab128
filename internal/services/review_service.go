package services

import (
	"context"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/policy"
	"github.com/goer-app/goer/backend/internal/repositories"
	"github.com/goer-app/goer/backend/pkg/logger"
)

// ReviewService manages reviews and keeps the business rating up to date.
// Each mutation is followed by a full recompute, so re-running it after a
// partial failure converges. Concurrent writers may race on the stored value.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	accounts repositories.AccountRepository
	comments repositories.CommentRepository
	items    items
	notifier *Notifier
}

func NewReviewService(
	reviews repositories.ReviewRepository,
	accounts repositories.AccountRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	reactions repositories.ReactionRepository,
	notifier *Notifier,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		accounts: accounts,
		comments: comments,
		items:    items{posts: posts, reviews: reviews, comments: comments, reactions: reactions},
		notifier: notifier,
	}
}

func reviewRef(r *models.Review) models.ItemRef {
	return models.ItemRef{Model: models.ItemReview, Document: r.ID}
}

// roundRating rounds to two decimal places.
func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recompute averages every review of business and stores the result.
func (s *ReviewService) Recompute(ctx context.Context, business primitive.ObjectID) (*models.Rating, error) {
	avg, count, err := s.reviews.AverageRating(ctx, business)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to compute rating")
	}
	rating := &models.Rating{Business: business, Average: roundRating(avg), Count: count}
	if count == 0 {
		rating.Average = 0
	}
	if err := s.accounts.SetRating(ctx, business, rating.Average); err != nil {
		return nil, storeErr(err, "Business not found")
	}
	return rating, nil
}

func (s *ReviewService) business(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	b, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Business not found")
	}
	if b.Role != models.RoleBusiness {
		return nil, errs.NotFound("Business not found")
	}
	return b, nil
}

// Create stores a review. A rating without text replaces the caller's
// previous rating-only review of the same business.
func (s *ReviewService) Create(ctx context.Context, caller *policy.Caller, req models.CreateReviewRequest) (*models.Review, *models.Rating, error) {
	if err := policy.Can(caller, policy.ActionCreate, policy.Resource{Kind: policy.KindReview}); err != nil {
		return nil, nil, err
	}
	businessID, err := parseID(req.Business, "business")
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.business(ctx, businessID); err != nil {
		return nil, nil, err
	}

	var review *models.Review
	created := true
	if req.Text == "" {
		review, created, err = s.reviews.UpsertRating(ctx, caller.ID, businessID, req.Rating)
	} else {
		review = &models.Review{User: caller.ID, Business: businessID, Rating: req.Rating, Text: req.Text}
		err = s.reviews.Create(ctx, review)
	}
	if err != nil {
		return nil, nil, errs.Upstream(err, "Failed to save review")
	}

	rating, err := s.Recompute(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}
	if created {
		if _, err := s.notifier.Notify(ctx, models.NotificationReview, caller.ID, businessID, reviewRef(review), NotifyOptions{Push: true}); err != nil {
			return nil, nil, err
		}
	}
	return review, rating, nil
}

// Update changes rating or text of the caller's own review.
func (s *ReviewService) Update(ctx context.Context, caller *policy.Caller, id primitive.ObjectID, req models.UpdateReviewRequest) (*models.Review, *models.Rating, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err, "Review not found")
	}
	if err := policy.Can(caller, policy.ActionUpdate, policy.Resource{Kind: policy.KindReview, Owner: review.User}); err != nil {
		return nil, nil, err
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		// Clearing the text would leave a second rating-only review next
		// to the one UpsertRating maintains.
		if text == "" && review.Text != "" {
			return nil, nil, ErrReviewTextNeeded
		}
		review.Text = text
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, nil, storeErr(err, "Review not found")
	}
	rating, err := s.Recompute(ctx, review.Business)
	if err != nil {
		return nil, nil, err
	}
	return review, rating, nil
}

// Delete removes a review along with its reactions, comments and notifications.
func (s *ReviewService) Delete(ctx context.Context, caller *policy.Caller, id primitive.ObjectID) (*models.Rating, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Review not found")
	}
	if err := policy.Can(caller, policy.ActionDelete, policy.Resource{Kind: policy.KindReview, Owner: review.User}); err != nil {
		return nil, err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return nil, storeErr(err, "Review not found")
	}

	rating, err := s.Recompute(ctx, review.Business)
	if err != nil {
		return nil, err
	}
	ref := reviewRef(review)
	if err := s.notifier.Remove(ctx, models.NotificationFilter{Item: ref}); err != nil {
		return nil, err
	}
	if err := cascadeItem(ctx, s.items, s.comments, s.notifier, ref); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("review_id", id.Hex()).Msg("failed to clean up review children")
	}
	return rating, nil
}

// Rating returns the current average of business.
func (s *ReviewService) Rating(ctx context.Context, business primitive.ObjectID) (*models.Rating, error) {
	if _, err := s.business(ctx, business); err != nil {
		return nil, err
	}
	return s.Recompute(ctx, business)
}

// List returns the text reviews of business with authors and reaction counts.
func (s *ReviewService) List(ctx context.Context, caller *policy.Caller, business primitive.ObjectID, page int) ([]models.ReviewView, error) {
	if err := policy.Can(caller, policy.ActionList, policy.Resource{Kind: policy.KindReview}); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByBusiness(ctx, business, page)
	if err != nil {
		return nil, errs.Upstream(err, "Failed to list reviews")
	}
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.User)
	}
	authors, err := compacts(ctx, s.accounts, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.ReviewView, 0, len(reviews))
	for i := range reviews {
		counts, err := s.items.counts(ctx, caller, reviewRef(&reviews[i]))
		if err != nil {
			return nil, err
		}
		views = append(views, models.ReviewView{Review: reviews[i], Author: authors[reviews[i].User], Reactions: counts})
	}
	return views, nil
}

// cascadeItem deletes the reactions and comments of a removed item, and the
// notifications that pointed at those comments.
func cascadeItem(ctx context.Context, x items, comments repositories.CommentRepository, notifier *Notifier, ref models.ItemRef) error {
	if err := x.reactions.DeleteByItem(ctx, ref); err != nil {
		return err
	}
	ids, err := comments.DeleteByItem(ctx, ref)
	if err != nil {
		return err
	}
	for _, id := range ids {
		child := models.ItemRef{Model: models.ItemComment, Document: id}
		if err := x.reactions.DeleteByItem(ctx, child); err != nil {
			return err
		}
		if err := notifier.Remove(ctx, models.NotificationFilter{Item: child}); err != nil {
			return err
		}
	}
	return nil
}
