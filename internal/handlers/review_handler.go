package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goer-app/goer/backend/internal/middleware"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/services"
)

// ReviewHandler handles business reviews and ratings
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// RegisterReviewRoutes registers review-related routes
func (h *ReviewHandler) RegisterReviewRoutes(g *echo.Group) {
	g.GET("/reviews", h.GetReviews)
	g.POST("/reviews", h.CreateReview)
	g.PUT("/reviews/:id", h.UpdateReview)
	g.DELETE("/reviews/:id", h.DeleteReview)
	g.GET("/ratings/:id", h.GetRating)
}

// GetReviews lists the text reviews of the business query parameter
func (h *ReviewHandler) GetReviews(c echo.Context) error {
	business, err := queryID(c, "business", "business")
	if err != nil {
		return err
	}
	page := pageOf(c)
	reviews, err := h.reviews.List(c.Request().Context(), middleware.CallerFrom(c), business, page)
	if err != nil {
		return err
	}
	return paged(c, reviews, page)
}

// CreateReview rates a business and returns the new average
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req models.CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	review, rating, err := h.reviews.Create(c.Request().Context(), middleware.CallerFrom(c), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, echo.Map{"review": review, "rating": rating})
}

func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	id, err := pathID(c, "id", "review")
	if err != nil {
		return err
	}
	var req models.UpdateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	review, rating, err := h.reviews.Update(c.Request().Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"review": review, "rating": rating})
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	id, err := pathID(c, "id", "review")
	if err != nil {
		return err
	}
	rating, err := h.reviews.Delete(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"rating": rating})
}

// GetRating returns the average rating of a business
func (h *ReviewHandler) GetRating(c echo.Context) error {
	id, err := pathID(c, "id", "business")
	if err != nil {
		return err
	}
	rating, err := h.reviews.Rating(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, rating)
}
