package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/port"
)

const (
	minRating = 1.0
	maxRating = 5.0
)

// ReviewService owns reviews and the derived rating aggregate on recipes.
type ReviewService struct {
	reviews port.ReviewRepository
	recipes port.RecipeRepository
	logger  *zap.Logger
}

func NewReviewService(reviews port.ReviewRepository, recipes port.RecipeRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, recipes: recipes, logger: logger}
}

// resolveRecipe maps a caller-supplied reference to a recipe id. Callers are
// inconsistent about passing ids or display names, so resolution tries three
// tiers: exact id, exact name, then the name normalized to id form
// (lower-cased, spaces to underscores).
func (s *ReviewService) resolveRecipe(ctx context.Context, ref string) (string, error) {
	recipes, err := s.recipes.ListRecipes(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: load recipes: %v", ErrStorageUnavailable, err)
	}

	for _, r := range recipes {
		if r.ID == ref {
			return r.ID, nil
		}
	}
	for _, r := range recipes {
		if r.Name == ref {
			return r.ID, nil
		}
	}
	normalized := strings.ReplaceAll(strings.ToLower(ref), " ", "_")
	for _, r := range recipes {
		if r.ID == normalized {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("recipe %q: %w", ref, ErrNotFound)
}

// AddReview validates and stores a review, then recomputes the recipe's
// aggregate. createdAt defaults to now when zero.
func (s *ReviewService) AddReview(ctx context.Context, recipeRef, author string, rating float64, comment string, createdAt time.Time) (string, error) {
	if recipeRef == "" {
		return "", missingField("mocktailId")
	}
	if author == "" {
		return "", missingField("author")
	}
	if rating < minRating || rating > maxRating {
		return "", &ValidationError{Field: "rating", Reason: fmt.Sprintf("rating %.1f outside [%.1f, %.1f]", rating, minRating, maxRating)}
	}

	recipeID, err := s.resolveRecipe(ctx, recipeRef)
	if err != nil {
		return "", err
	}

	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	review := domain.Review{
		ID:        uuid.New().String(),
		RecipeID:  recipeID,
		Author:    author,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: createdAt,
	}
	if err := s.reviews.InsertReview(ctx, review); err != nil {
		return "", fmt.Errorf("%w: insert review: %v", ErrStorageUnavailable, err)
	}

	if err := s.recomputeAggregate(ctx, recipeID); err != nil {
		return "", err
	}
	s.logger.Info("review added",
		zap.String("review_id", review.ID),
		zap.String("recipe", recipeID),
		zap.Float64("rating", rating))
	return review.ID, nil
}

// ListReviews returns a recipe's reviews, newest first, using the same
// resolution chain as AddReview.
func (s *ReviewService) ListReviews(ctx context.Context, recipeRef string) ([]domain.Review, error) {
	recipeID, err := s.resolveRecipe(ctx, recipeRef)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListReviews(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reviews: %v", ErrStorageUnavailable, err)
	}
	return reviews, nil
}

// UpdateReview rewrites an existing review's rating and comment and
// recomputes the recipe aggregate.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, recipeRef string, rating float64, comment string) error {
	if rating < minRating || rating > maxRating {
		return &ValidationError{Field: "rating", Reason: fmt.Sprintf("rating %.1f outside [%.1f, %.1f]", rating, minRating, maxRating)}
	}

	recipeID, err := s.resolveRecipe(ctx, recipeRef)
	if err != nil {
		return err
	}
	existing, err := s.reviews.GetReview(ctx, reviewID, recipeID)
	if err != nil {
		return fmt.Errorf("%w: get review: %v", ErrStorageUnavailable, err)
	}
	if existing == nil {
		return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}

	existing.Rating = rating
	existing.Comment = comment
	if err := s.reviews.UpdateReview(ctx, *existing); err != nil {
		return fmt.Errorf("%w: update review: %v", ErrStorageUnavailable, err)
	}
	return s.recomputeAggregate(ctx, recipeID)
}

// DeleteReview removes a review and recomputes the recipe aggregate,
// resetting it to zero when the last review goes away.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, recipeRef string) error {
	recipeID, err := s.resolveRecipe(ctx, recipeRef)
	if err != nil {
		return err
	}
	existing, err := s.reviews.GetReview(ctx, reviewID, recipeID)
	if err != nil {
		return fmt.Errorf("%w: get review: %v", ErrStorageUnavailable, err)
	}
	if existing == nil {
		return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}

	if err := s.reviews.DeleteReview(ctx, reviewID, recipeID); err != nil {
		return fmt.Errorf("%w: delete review: %v", ErrStorageUnavailable, err)
	}
	return s.recomputeAggregate(ctx, recipeID)
}

// ListRecipes returns every recipe with its current aggregate.
func (s *ReviewService) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	recipes, err := s.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load recipes: %v", ErrStorageUnavailable, err)
	}
	return recipes, nil
}

// recomputeAggregate stores the mean rating and count of the recipe's
// reviews, or zeroes when none remain.
func (s *ReviewService) recomputeAggregate(ctx context.Context, recipeID string) error {
	reviews, err := s.reviews.ListReviews(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("%w: list reviews: %v", ErrStorageUnavailable, err)
	}

	var rating float64
	if len(reviews) > 0 {
		var sum float64
		for _, r := range reviews {
			sum += r.Rating
		}
		rating = sum / float64(len(reviews))
	}

	if err := s.recipes.UpdateRecipeAggregate(ctx, recipeID, rating, len(reviews)); err != nil {
		return fmt.Errorf("%w: update recipe aggregate: %v", ErrStorageUnavailable, err)
	}
	return nil
}
