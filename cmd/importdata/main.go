// Command importdata seeds or refreshes the fixture dataset (ingredients,
// recipes, tags) in the configured backend. Safe to run repeatedly: existing
// rows are updated in place and review aggregates are recomputed rather than
// reset.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/lberthe/mocktail-machine/internal/adapter/storage"
	"github.com/lberthe/mocktail-machine/internal/port"
	"github.com/lberthe/mocktail-machine/internal/seed"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		ingredientRepo port.IngredientRepository
		recipeRepo     port.RecipeRepository
		reviewRepo     port.ReviewRepository
	)
	switch kind := envOr("STORAGE", "file"); kind {
	case "mysql":
		db, err := sql.Open("mysql", envOr("MYSQL_DSN",
			"mocktail_user:sin@tcp(localhost:3306)/mocktail_machine?parseTime=true"))
		if err != nil {
			logger.Fatal("failed to open mysql", zap.Error(err))
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("failed to ping mysql", zap.Error(err))
		}
		adapter := storage.NewMySQLAdapter(db)
		ingredientRepo, recipeRepo, reviewRepo = adapter, adapter, adapter
	case "file":
		adapter, err := storage.NewFileAdapter(envOr("DATA_DIR", "data"))
		if err != nil {
			logger.Fatal("failed to open file store", zap.Error(err))
		}
		ingredientRepo, recipeRepo, reviewRepo = adapter, adapter, adapter
	default:
		logger.Fatal("unknown STORAGE", zap.String("storage", kind))
	}

	// Ingredients: update name and capacity, keep whatever level was already
	// stored for reservoirs the machine already knows.
	existing, err := ingredientRepo.ListIngredients(ctx)
	if err != nil {
		logger.Fatal("failed to load ingredients", zap.Error(err))
	}
	levels := make(map[string]int, len(existing))
	for _, ing := range existing {
		levels[ing.ID] = ing.CurrentLevel
	}
	ingredients := seed.Ingredients()
	for i := range ingredients {
		if level, ok := levels[ingredients[i].ID]; ok {
			ingredients[i].CurrentLevel = level
		}
	}
	if err := ingredientRepo.SaveIngredients(ctx, ingredients); err != nil {
		logger.Fatal("failed to save ingredients", zap.Error(err))
	}
	logger.Info("ingredients updated", zap.Int("count", len(ingredients)))

	// Recipes: upsert definitions, then recompute aggregates from whatever
	// reviews the store already holds.
	for _, recipe := range seed.Recipes() {
		if err := recipeRepo.UpsertRecipe(ctx, recipe); err != nil {
			logger.Fatal("failed to upsert recipe",
				zap.String("recipe", recipe.ID), zap.Error(err))
		}
		if err := recomputeAggregate(ctx, reviewRepo, recipeRepo, recipe.ID); err != nil {
			logger.Fatal("failed to recompute aggregate",
				zap.String("recipe", recipe.ID), zap.Error(err))
		}
		logger.Info("recipe updated", zap.String("recipe", recipe.ID))
	}

	logger.Info("import finished")
}

func recomputeAggregate(ctx context.Context, reviews port.ReviewRepository, recipes port.RecipeRepository, recipeID string) error {
	stored, err := reviews.ListReviews(ctx, recipeID)
	if err != nil {
		return err
	}
	var rating float64
	if len(stored) > 0 {
		var sum float64
		for _, r := range stored {
			sum += r.Rating
		}
		rating = sum / float64(len(stored))
	}
	return recipes.UpdateRecipeAggregate(ctx, recipeID, rating, len(stored))
}
