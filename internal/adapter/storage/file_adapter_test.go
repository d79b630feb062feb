package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/port"
)

func newTestFileAdapter(t *testing.T) *FileAdapter {
	t.Helper()
	adapter, err := NewFileAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	return adapter
}

func TestFileAdapter_SeedsFreshStore(t *testing.T) {
	adapter := newTestFileAdapter(t)
	ctx := context.Background()

	ingredients, err := adapter.ListIngredients(ctx)
	if err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(ingredients) != 4 {
		t.Errorf("expected 4 seeded ingredients, got %d", len(ingredients))
	}
	for _, ing := range ingredients {
		if ing.MaxLevel != 1000 {
			t.Errorf("ingredient %s: expected capacity 1000, got %d", ing.ID, ing.MaxLevel)
		}
	}

	recipes, err := adapter.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 8 {
		t.Errorf("expected 8 seeded recipes, got %d", len(recipes))
	}
}

func TestFileAdapter_SeedsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileAdapter(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.SetIngredientLevel(ctx, "sprite", 123); err != nil {
		t.Fatalf("set level: %v", err)
	}

	second, err := NewFileAdapter(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	ingredients, err := second.ListIngredients(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, ing := range ingredients {
		if ing.ID == "sprite" && ing.CurrentLevel != 123 {
			t.Errorf("level lost on reopen: got %d", ing.CurrentLevel)
		}
	}
}

func TestFileAdapter_SetIngredientLevel_Unknown(t *testing.T) {
	adapter := newTestFileAdapter(t)

	err := adapter.SetIngredientLevel(context.Background(), "absinthe", 100)
	if !errors.Is(err, port.ErrIngredientNotFound) {
		t.Errorf("expected ErrIngredientNotFound, got %v", err)
	}
}

func TestFileAdapter_OrderRoundTrip(t *testing.T) {
	adapter := newTestFileAdapter(t)
	ctx := context.Background()

	order := domain.Order{
		ID:          "order-1",
		RecipeName:  "Sunrise Rouge",
		Ingredients: map[string]int{"Jus de Cranberry": 70, "Sprite": 60},
		TotalVolume: 150,
		Status:      domain.OrderStatusReceived,
		CreatedAt:   time.Now().Truncate(time.Second),
		UpdatedAt:   time.Now().Truncate(time.Second),
	}
	if err := adapter.InsertOrder(ctx, order); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := adapter.GetOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("order not found after insert")
	}
	if got.RecipeName != order.RecipeName || got.TotalVolume != order.TotalVolume {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Ingredients["Jus de Cranberry"] != 70 {
		t.Errorf("ingredients lost: %+v", got.Ingredients)
	}

	if err := adapter.UpdateOrderStatus(ctx, "order-1", domain.OrderStatusProcessing); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ = adapter.GetOrder(ctx, "order-1")
	if got.Status != domain.OrderStatusProcessing {
		t.Errorf("expected processing, got %s", got.Status)
	}
}

func TestFileAdapter_UpdateOrderStatus_RefreshesUpdatedAt(t *testing.T) {
	adapter := newTestFileAdapter(t)
	ctx := context.Background()

	stale := time.Now().Add(-time.Hour)
	order := domain.Order{
		ID:          "order-2",
		RecipeName:  "Citrus Fizz",
		Ingredients: map[string]int{"Citron": 50},
		TotalVolume: 50,
		Status:      domain.OrderStatusReceived,
		CreatedAt:   stale,
		UpdatedAt:   stale,
	}
	if err := adapter.InsertOrder(ctx, order); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := adapter.UpdateOrderStatus(ctx, "order-2", domain.OrderStatusProcessing); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := adapter.GetOrder(ctx, "order-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.UpdatedAt.After(stale) {
		t.Errorf("expected UpdatedAt to advance past %v, got %v", stale, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(stale) {
		t.Errorf("CreatedAt should not move, got %v", got.CreatedAt)
	}
}

func TestFileAdapter_GetOrder_Absent(t *testing.T) {
	adapter := newTestFileAdapter(t)

	got, err := adapter.GetOrder(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for absent order, got %+v", got)
	}
}

func TestFileAdapter_ListOrders_NewestFirst(t *testing.T) {
	adapter := newTestFileAdapter(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		err := adapter.InsertOrder(ctx, domain.Order{
			ID:        string(rune('a' + i)),
			Status:    domain.OrderStatusReceived,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	orders, err := adapter.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 3 || orders[0].ID != "c" {
		t.Errorf("expected newest first, got %+v", orders)
	}
}

func TestFileAdapter_ReviewLifecycle(t *testing.T) {
	adapter := newTestFileAdapter(t)
	ctx := context.Background()

	review := domain.Review{
		ID:        "rev-1",
		RecipeID:  "sunrise_rouge",
		Author:    "Alice",
		Rating:    4.5,
		Comment:   "très bon",
		CreatedAt: time.Now(),
	}
	if err := adapter.InsertReview(ctx, review); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := adapter.GetReview(ctx, "rev-1", "sunrise_rouge")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Author != "Alice" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// scoped to the recipe: same id under another recipe is absent
	got, err = adapter.GetReview(ctx, "rev-1", "citrus_fizz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("review leaked across recipes: %+v", got)
	}

	review.Rating = 2.0
	if err := adapter.UpdateReview(ctx, review); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = adapter.GetReview(ctx, "rev-1", "sunrise_rouge")
	if got.Rating != 2.0 {
		t.Errorf("expected rating 2.0, got %f", got.Rating)
	}

	if err := adapter.DeleteReview(ctx, "rev-1", "sunrise_rouge"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	reviews, err := adapter.ListReviews(ctx, "sunrise_rouge")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reviews) != 0 {
		t.Errorf("expected no reviews after delete, got %d", len(reviews))
	}
}

func TestFileAdapter_UpdateRecipeAggregate(t *testing.T) {
	adapter := newTestFileAdapter(t)
	ctx := context.Background()

	if err := adapter.UpdateRecipeAggregate(ctx, "sunrise_rouge", 4.2, 5); err != nil {
		t.Fatalf("update aggregate: %v", err)
	}
	recipe, err := adapter.GetRecipe(ctx, "sunrise_rouge")
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if recipe.Rating != 4.2 || recipe.ReviewCount != 5 {
		t.Errorf("aggregate not stored: %f/%d", recipe.Rating, recipe.ReviewCount)
	}
}

func TestFileAdapter_UpsertRecipe_KeepsAggregate(t *testing.T) {
	adapter := newTestFileAdapter(t)
	ctx := context.Background()

	if err := adapter.UpdateRecipeAggregate(ctx, "sunrise_rouge", 3.5, 2); err != nil {
		t.Fatalf("update aggregate: %v", err)
	}

	recipe, _ := adapter.GetRecipe(ctx, "sunrise_rouge")
	recipe.Description = "nouvelle description"
	if err := adapter.UpsertRecipe(ctx, *recipe); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, _ := adapter.GetRecipe(ctx, "sunrise_rouge")
	if got.Rating != 3.5 || got.ReviewCount != 2 {
		t.Errorf("upsert clobbered the aggregate: %f/%d", got.Rating, got.ReviewCount)
	}
	if got.Description != "nouvelle description" {
		t.Errorf("description not updated: %s", got.Description)
	}
}
