package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/port"
)

// AvailabilityResult is the outcome of a stock check. Available is true iff
// Shortfalls is empty.
type AvailabilityResult struct {
	Available  bool               `json:"available"`
	Shortfalls []domain.Shortfall `json:"shortfalls"`
}

// DeductResult reports which requested ingredients were actually applied.
// Skipped lists names that matched no reservoir, so callers can tell partial
// application from full.
type DeductResult struct {
	Applied map[string]int `json:"applied"`
	Skipped []string       `json:"skipped"`
}

// InventoryService owns ingredient stock levels. All read-modify-write
// sequences are serialized behind mu so concurrent deductions never lose
// updates.
type InventoryService struct {
	repo   port.IngredientRepository
	cache  port.LevelCache // optional, nil when no cache is wired
	logger *zap.Logger
	mu     sync.Mutex // held across load-modify-save
}

func NewInventoryService(repo port.IngredientRepository, cache port.LevelCache, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// CheckAvailability verifies each requested volume against current stock.
// Names are matched case-insensitively against ingredient name and id.
// Pure read, no side effects.
func (s *InventoryService) CheckAvailability(ctx context.Context, requested map[string]int) (AvailabilityResult, error) {
	ingredients, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return AvailabilityResult{}, fmt.Errorf("%w: load ingredients: %v", ErrStorageUnavailable, err)
	}

	result := AvailabilityResult{Available: true}
	for name, volume := range requested {
		ing := findIngredient(ingredients, name)
		if ing == nil {
			result.Available = false
			result.Shortfalls = append(result.Shortfalls, domain.Shortfall{
				Ingredient: name,
				Requested:  volume,
				Missing:    true,
			})
			continue
		}
		if ing.CurrentLevel < volume {
			result.Available = false
			result.Shortfalls = append(result.Shortfalls, domain.Shortfall{
				Ingredient: ing.Name,
				Requested:  volume,
				Available:  ing.CurrentLevel,
			})
		}
	}
	return result, nil
}

// Deduct subtracts the used volumes, clamping each level at zero. Unknown
// ingredient names are skipped and logged rather than failing the batch.
// The whole update is persisted as a single batch.
func (s *InventoryService) Deduct(ctx context.Context, used map[string]int) (DeductResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ingredients, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return DeductResult{}, fmt.Errorf("%w: load ingredients: %v", ErrStorageUnavailable, err)
	}

	result := DeductResult{Applied: make(map[string]int)}
	for name, volume := range used {
		ing := findIngredient(ingredients, name)
		if ing == nil {
			s.logger.Warn("deduct skipped unknown ingredient", zap.String("ingredient", name), zap.Int("volume", volume))
			result.Skipped = append(result.Skipped, name)
			continue
		}
		applied := volume
		if applied > ing.CurrentLevel {
			applied = ing.CurrentLevel
		}
		ing.CurrentLevel -= applied
		result.Applied[ing.ID] = applied
	}

	if err := s.repo.SaveIngredients(ctx, ingredients); err != nil {
		return DeductResult{}, fmt.Errorf("%w: save ingredients: %v", ErrStorageUnavailable, err)
	}

	s.syncCache(ctx, ingredients, result.Applied)
	return result, nil
}

// SetLevel is the administrative override. It bypasses the clamp checks that
// Deduct applies; the operator is trusted to pass sane values.
func (s *InventoryService) SetLevel(ctx context.Context, ingredientID string, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SetIngredientLevel(ctx, ingredientID, level); err != nil {
		if errors.Is(err, port.ErrIngredientNotFound) {
			return fmt.Errorf("ingredient %s: %w", ingredientID, ErrNotFound)
		}
		return fmt.Errorf("%w: set level: %v", ErrStorageUnavailable, err)
	}
	if s.cache != nil {
		if err := s.cache.SetLevel(ctx, ingredientID, level); err != nil {
			s.logger.Warn("level cache set failed", zap.String("ingredient", ingredientID), zap.Error(err))
		}
	}
	s.logger.Info("ingredient level set", zap.String("ingredient", ingredientID), zap.Int("level", level))
	return nil
}

// Levels returns the current reservoir state. When a cache is attached the
// current levels come from it, falling back per ingredient to the durable
// value on a miss or cache error.
func (s *InventoryService) Levels(ctx context.Context) ([]domain.Ingredient, error) {
	ingredients, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load ingredients: %v", ErrStorageUnavailable, err)
	}
	if s.cache == nil {
		return ingredients, nil
	}
	for i := range ingredients {
		level, found, err := s.cache.GetLevel(ctx, ingredients[i].ID)
		if err != nil {
			s.logger.Warn("level cache read failed", zap.String("ingredient", ingredients[i].ID), zap.Error(err))
			continue
		}
		if found {
			ingredients[i].CurrentLevel = level
		}
	}
	return ingredients, nil
}

// WarmCache pushes every durable level into the cache, like the stock sync
// the server does at startup.
func (s *InventoryService) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	ingredients, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return fmt.Errorf("%w: load ingredients: %v", ErrStorageUnavailable, err)
	}
	for _, ing := range ingredients {
		if err := s.cache.SetLevel(ctx, ing.ID, ing.CurrentLevel); err != nil {
			return fmt.Errorf("warm cache %s: %w", ing.ID, err)
		}
	}
	return nil
}

// syncCache mirrors applied deductions into the cache through the atomic
// clamped decrement; an ingredient the cache has never seen gets its durable
// level written instead. Cache failures are logged, never surfaced: the
// durable store already holds the truth.
func (s *InventoryService) syncCache(ctx context.Context, ingredients []domain.Ingredient, applied map[string]int) {
	if s.cache == nil {
		return
	}
	for _, ing := range ingredients {
		used, ok := applied[ing.ID]
		if !ok {
			continue
		}
		_, err := s.cache.DeductLevel(ctx, ing.ID, used)
		if errors.Is(err, port.ErrLevelNotCached) {
			err = s.cache.SetLevel(ctx, ing.ID, ing.CurrentLevel)
		}
		if err != nil {
			s.logger.Warn("level cache sync failed", zap.String("ingredient", ing.ID), zap.Error(err))
		}
	}
}

// findIngredient matches ref against ingredient name or id, ignoring case.
// Returns a pointer into the slice so the caller can mutate the entry.
func findIngredient(ingredients []domain.Ingredient, ref string) *domain.Ingredient {
	for i := range ingredients {
		if strings.EqualFold(ingredients[i].Name, ref) || strings.EqualFold(ingredients[i].ID, ref) {
			return &ingredients[i]
		}
	}
	return nil
}
