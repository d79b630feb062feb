package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/port"
	"github.com/lberthe/mocktail-machine/internal/seed"
)

const (
	ingredientsFile = "ingredients.json"
	recipesFile     = "recipes.json"
	ordersFile      = "orders.json"
	reviewsFile     = "reviews.json"
)

// FileAdapter stores everything as JSON files under one data directory.
// A single lock guards all file access; writes go through a temp file and
// rename so readers never see a torn file.
type FileAdapter struct {
	dir string
	mu  sync.RWMutex
}

// NewFileAdapter opens (and if needed creates) the data directory. Missing
// ingredient and recipe files are seeded with the demo dataset.
func NewFileAdapter(dir string) (*FileAdapter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	a := &FileAdapter{dir: dir}

	if _, err := os.Stat(a.path(ingredientsFile)); errors.Is(err, fs.ErrNotExist) {
		if err := a.writeFile(ingredientsFile, seed.Ingredients()); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(a.path(recipesFile)); errors.Is(err, fs.ErrNotExist) {
		if err := a.writeFile(recipesFile, seed.Recipes()); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *FileAdapter) path(name string) string {
	return filepath.Join(a.dir, name)
}

// writeFile marshals v to a temp file in the same directory, then renames it
// over the target.
func (a *FileAdapter) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(a.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), a.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (a *FileAdapter) readFile(name string, v any) error {
	data, err := os.ReadFile(a.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// --- IngredientRepository

func (a *FileAdapter) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var ingredients []domain.Ingredient
	if err := a.readFile(ingredientsFile, &ingredients); err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (a *FileAdapter) SaveIngredients(ctx context.Context, ingredients []domain.Ingredient) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeFile(ingredientsFile, ingredients)
}

func (a *FileAdapter) SetIngredientLevel(ctx context.Context, ingredientID string, level int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var ingredients []domain.Ingredient
	if err := a.readFile(ingredientsFile, &ingredients); err != nil {
		return err
	}
	for i := range ingredients {
		if ingredients[i].ID == ingredientID {
			ingredients[i].CurrentLevel = level
			return a.writeFile(ingredientsFile, ingredients)
		}
	}
	return fmt.Errorf("%w: %s", port.ErrIngredientNotFound, ingredientID)
}

// --- OrderRepository

func (a *FileAdapter) InsertOrder(ctx context.Context, order domain.Order) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var orders []domain.Order
	if err := a.readFile(ordersFile, &orders); err != nil {
		return err
	}
	orders = append(orders, order)
	return a.writeFile(ordersFile, orders)
}

func (a *FileAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var orders []domain.Order
	if err := a.readFile(ordersFile, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, nil
}

func (a *FileAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var orders []domain.Order
	if err := a.readFile(ordersFile, &orders); err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (a *FileAdapter) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var orders []domain.Order
	if err := a.readFile(ordersFile, &orders); err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			orders[i].UpdatedAt = time.Now()
			return a.writeFile(ordersFile, orders)
		}
	}
	return fmt.Errorf("order %s not stored", id)
}

// --- ReviewRepository

func (a *FileAdapter) InsertReview(ctx context.Context, review domain.Review) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var reviews []domain.Review
	if err := a.readFile(reviewsFile, &reviews); err != nil {
		return err
	}
	reviews = append(reviews, review)
	return a.writeFile(reviewsFile, reviews)
}

func (a *FileAdapter) GetReview(ctx context.Context, reviewID, recipeID string) (*domain.Review, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var reviews []domain.Review
	if err := a.readFile(reviewsFile, &reviews); err != nil {
		return nil, err
	}
	for i := range reviews {
		if reviews[i].ID == reviewID && reviews[i].RecipeID == recipeID {
			return &reviews[i], nil
		}
	}
	return nil, nil
}

func (a *FileAdapter) ListReviews(ctx context.Context, recipeID string) ([]domain.Review, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var reviews []domain.Review
	if err := a.readFile(reviewsFile, &reviews); err != nil {
		return nil, err
	}
	var out []domain.Review
	for _, r := range reviews {
		if r.RecipeID == recipeID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (a *FileAdapter) UpdateReview(ctx context.Context, review domain.Review) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var reviews []domain.Review
	if err := a.readFile(reviewsFile, &reviews); err != nil {
		return err
	}
	for i := range reviews {
		if reviews[i].ID == review.ID && reviews[i].RecipeID == review.RecipeID {
			reviews[i] = review
			return a.writeFile(reviewsFile, reviews)
		}
	}
	return fmt.Errorf("review %s not stored", review.ID)
}

func (a *FileAdapter) DeleteReview(ctx context.Context, reviewID, recipeID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var reviews []domain.Review
	if err := a.readFile(reviewsFile, &reviews); err != nil {
		return err
	}
	for i := range reviews {
		if reviews[i].ID == reviewID && reviews[i].RecipeID == recipeID {
			reviews = append(reviews[:i], reviews[i+1:]...)
			return a.writeFile(reviewsFile, reviews)
		}
	}
	return fmt.Errorf("review %s not stored", reviewID)
}

// --- RecipeRepository

func (a *FileAdapter) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var recipes []domain.Recipe
	if err := a.readFile(recipesFile, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (a *FileAdapter) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var recipes []domain.Recipe
	if err := a.readFile(recipesFile, &recipes); err != nil {
		return nil, err
	}
	for i := range recipes {
		if recipes[i].ID == id {
			return &recipes[i], nil
		}
	}
	return nil, nil
}

func (a *FileAdapter) UpsertRecipe(ctx context.Context, recipe domain.Recipe) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var recipes []domain.Recipe
	if err := a.readFile(recipesFile, &recipes); err != nil {
		return err
	}
	for i := range recipes {
		if recipes[i].ID == recipe.ID {
			// keep the derived aggregate, the importer never owns it
			recipe.Rating = recipes[i].Rating
			recipe.ReviewCount = recipes[i].ReviewCount
			recipes[i] = recipe
			return a.writeFile(recipesFile, recipes)
		}
	}
	recipes = append(recipes, recipe)
	return a.writeFile(recipesFile, recipes)
}

func (a *FileAdapter) UpdateRecipeAggregate(ctx context.Context, recipeID string, rating float64, count int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var recipes []domain.Recipe
	if err := a.readFile(recipesFile, &recipes); err != nil {
		return err
	}
	for i := range recipes {
		if recipes[i].ID == recipeID {
			recipes[i].Rating = rating
			recipes[i].ReviewCount = count
			return a.writeFile(recipesFile, recipes)
		}
	}
	return fmt.Errorf("recipe %s not stored", recipeID)
}
