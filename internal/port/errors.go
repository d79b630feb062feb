package port

import "errors"

// ErrIngredientNotFound is returned by adapters when an ingredient id does
// not exist in the store.
var ErrIngredientNotFound = errors.New("ingredient not found")

// ErrLevelNotCached is returned by a LevelCache when the ingredient has no
// cached level; the caller falls back to the durable store.
var ErrLevelNotCached = errors.New("level not cached")
