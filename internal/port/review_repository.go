package port

import (
	"context"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
)

type ReviewRepository interface {
	// InsertReview persists a new review.
	InsertReview(ctx context.Context, review domain.Review) error

	// GetReview retrieves a review by id scoped to a recipe, nil if absent.
	GetReview(ctx context.Context, reviewID, recipeID string) (*domain.Review, error)

	// ListReviews returns a recipe's reviews, newest first.
	ListReviews(ctx context.Context, recipeID string) ([]domain.Review, error)

	// UpdateReview overwrites an existing review.
	UpdateReview(ctx context.Context, review domain.Review) error

	// DeleteReview removes a review by id scoped to a recipe.
	DeleteReview(ctx context.Context, reviewID, recipeID string) error
}
