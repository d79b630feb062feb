package port

import (
	"context"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
)

type IngredientRepository interface {
	// ListIngredients returns every ingredient reservoir.
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)

	// SaveIngredients persists the given levels as one batch; a concurrent
	// reader must never observe a partially written batch.
	SaveIngredients(ctx context.Context, ingredients []domain.Ingredient) error

	// SetIngredientLevel overwrites one ingredient's current level.
	SetIngredientLevel(ctx context.Context, ingredientID string, level int) error
}
