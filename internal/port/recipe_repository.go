package port

import (
	"context"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
)

type RecipeRepository interface {
	// ListRecipes returns every recipe with its derived rating aggregate.
	ListRecipes(ctx context.Context) ([]domain.Recipe, error)

	// GetRecipe retrieves a recipe by id, nil if absent.
	GetRecipe(ctx context.Context, id string) (*domain.Recipe, error)

	// UpsertRecipe inserts or updates a recipe definition (used by the importer).
	UpsertRecipe(ctx context.Context, recipe domain.Recipe) error

	// UpdateRecipeAggregate stores the derived mean rating and review count.
	UpdateRecipeAggregate(ctx context.Context, recipeID string, rating float64, count int) error
}
