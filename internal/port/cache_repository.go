package port

import "context"

type LevelCache interface {
	// SetLevel stores an ingredient's current level in the cache.
	SetLevel(ctx context.Context, ingredientID string, level int) error

	// DeductLevel atomically decreases a cached level, clamping at zero, and
	// returns the remaining level.
	DeductLevel(ctx context.Context, ingredientID string, volume int) (int, error)

	// GetLevel reads a cached level; found is false when the key is absent.
	GetLevel(ctx context.Context, ingredientID string) (level int, found bool, err error)
}
