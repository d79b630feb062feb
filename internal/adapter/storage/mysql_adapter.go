package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/port"
)

// MySQLAdapter is the relational realization of the persistence adapter,
// over the normalized mocktail_machine schema: ingredients, mocktails,
// mocktail_ingredients, tags, mocktail_tags, orders, reviews.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// --- IngredientRepository

func (m *MySQLAdapter) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT ingredient_id, name, current_level, max_level
		FROM ingredients ORDER BY ingredient_id`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []domain.Ingredient
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.CurrentLevel, &ing.MaxLevel); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

// SaveIngredients writes all levels in one transaction so a concurrent
// reader never observes a half-applied batch.
func (m *MySQLAdapter) SaveIngredients(ctx context.Context, ingredients []domain.Ingredient) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, ing := range ingredients {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (ingredient_id, name, current_level, max_level)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE name = VALUES(name),
				current_level = VALUES(current_level), max_level = VALUES(max_level)`,
			ing.ID, ing.Name, ing.CurrentLevel, ing.MaxLevel,
		)
		if err != nil {
			return fmt.Errorf("upsert ingredient %s: %w", ing.ID, err)
		}
	}
	return tx.Commit()
}

func (m *MySQLAdapter) SetIngredientLevel(ctx context.Context, ingredientID string, level int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE ingredients SET current_level = ? WHERE ingredient_id = ?`,
		level, ingredientID,
	)
	if err != nil {
		return fmt.Errorf("update ingredient level: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// level may equal the stored one; distinguish absent from unchanged
		var n int
		err := m.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM ingredients WHERE ingredient_id = ?`, ingredientID).Scan(&n)
		if err != nil {
			return fmt.Errorf("check ingredient: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", port.ErrIngredientNotFound, ingredientID)
		}
	}
	return nil
}

// --- OrderRepository

func (m *MySQLAdapter) InsertOrder(ctx context.Context, order domain.Order) error {
	ingredients, err := json.Marshal(order.Ingredients)
	if err != nil {
		return fmt.Errorf("encode order ingredients: %w", err)
	}
	_, err = m.db.ExecContext(ctx, `
		INSERT INTO orders (id, mocktail_name, ingredients, total_volume, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.RecipeName, ingredients, order.TotalVolume, order.Status,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var (
		order       domain.Order
		ingredients []byte
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, mocktail_name, ingredients, total_volume, status, created_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&order.ID, &order.RecipeName, &ingredients, &order.TotalVolume,
		&order.Status, &order.CreatedAt, &order.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	if err := json.Unmarshal(ingredients, &order.Ingredients); err != nil {
		return nil, fmt.Errorf("decode order ingredients: %w", err)
	}
	return &order, nil
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, mocktail_name, ingredients, total_volume, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			order       domain.Order
			ingredients []byte
		)
		if err := rows.Scan(&order.ID, &order.RecipeName, &ingredients, &order.TotalVolume,
			&order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(ingredients, &order.Ingredients); err != nil {
			return nil, fmt.Errorf("decode order ingredients: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %s not stored", id)
	}
	return nil
}

// --- ReviewRepository

func (m *MySQLAdapter) InsertReview(ctx context.Context, review domain.Review) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO reviews (review_id, mocktail_id, author, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID, review.RecipeID, review.Author, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetReview(ctx context.Context, reviewID, recipeID string) (*domain.Review, error) {
	var review domain.Review
	err := m.db.QueryRowContext(ctx, `
		SELECT review_id, mocktail_id, author, rating, comment, created_at
		FROM reviews WHERE review_id = ? AND mocktail_id = ?`, reviewID, recipeID,
	).Scan(&review.ID, &review.RecipeID, &review.Author, &review.Rating,
		&review.Comment, &review.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query review: %w", err)
	}
	return &review, nil
}

func (m *MySQLAdapter) ListReviews(ctx context.Context, recipeID string) ([]domain.Review, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT review_id, mocktail_id, author, rating, comment, created_at
		FROM reviews WHERE mocktail_id = ? ORDER BY created_at DESC`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(&review.ID, &review.RecipeID, &review.Author,
			&review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (m *MySQLAdapter) UpdateReview(ctx context.Context, review domain.Review) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE reviews SET rating = ?, comment = ?
		WHERE review_id = ? AND mocktail_id = ?`,
		review.Rating, review.Comment, review.ID, review.RecipeID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// the driver reports changed rows, so a no-op rewrite also lands here;
		// distinguish absent from unchanged
		var n int
		if err := m.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reviews WHERE review_id = ? AND mocktail_id = ?`,
			review.ID, review.RecipeID).Scan(&n); err != nil {
			return fmt.Errorf("check review: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("review %s not stored", review.ID)
		}
	}
	return nil
}

func (m *MySQLAdapter) DeleteReview(ctx context.Context, reviewID, recipeID string) error {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM reviews WHERE review_id = ? AND mocktail_id = ?`,
		reviewID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("review %s not stored", reviewID)
	}
	return nil
}

// --- RecipeRepository

func (m *MySQLAdapter) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT mocktail_id, name, description, image_url, rating, review_count
		FROM mocktails ORDER BY mocktail_id`)
	if err != nil {
		return nil, fmt.Errorf("query mocktails: %w", err)
	}
	defer rows.Close()

	var recipes []domain.Recipe
	for rows.Next() {
		var r domain.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.ImageURL,
			&r.Rating, &r.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan mocktail: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if err := m.loadRecipeDetails(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (m *MySQLAdapter) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	var r domain.Recipe
	err := m.db.QueryRowContext(ctx, `
		SELECT mocktail_id, name, description, image_url, rating, review_count
		FROM mocktails WHERE mocktail_id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.Description, &r.ImageURL, &r.Rating, &r.ReviewCount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query mocktail: %w", err)
	}
	if err := m.loadRecipeDetails(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *MySQLAdapter) loadRecipeDetails(ctx context.Context, recipe *domain.Recipe) error {
	rows, err := m.db.QueryContext(ctx, `
		SELECT i.name, mi.amount
		FROM mocktail_ingredients mi
		JOIN ingredients i ON i.ingredient_id = mi.ingredient_id
		WHERE mi.mocktail_id = ?`, recipe.ID)
	if err != nil {
		return fmt.Errorf("query mocktail ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ing domain.RecipeIngredient
		if err := rows.Scan(&ing.Name, &ing.Volume); err != nil {
			return fmt.Errorf("scan mocktail ingredient: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tagRows, err := m.db.QueryContext(ctx, `
		SELECT t.name
		FROM mocktail_tags mt
		JOIN tags t ON t.tag_id = mt.tag_id
		WHERE mt.mocktail_id = ?`, recipe.ID)
	if err != nil {
		return fmt.Errorf("query mocktail tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return fmt.Errorf("scan mocktail tag: %w", err)
		}
		recipe.Tags = append(recipe.Tags, tag)
	}
	return tagRows.Err()
}

// UpsertRecipe rewrites the recipe definition and its tag and ingredient
// links in one transaction, mirroring the import flow.
func (m *MySQLAdapter) UpsertRecipe(ctx context.Context, recipe domain.Recipe) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO mocktails (mocktail_id, name, description, image_url)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name),
			description = VALUES(description), image_url = VALUES(image_url)`,
		recipe.ID, recipe.Name, recipe.Description, recipe.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("upsert mocktail: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM mocktail_tags WHERE mocktail_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("clear mocktail tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM mocktail_ingredients WHERE mocktail_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("clear mocktail ingredients: %w", err)
	}

	for _, tag := range recipe.Tags {
		var tagID int64
		err := tx.QueryRowContext(ctx, `SELECT tag_id FROM tags WHERE name = ?`, tag).Scan(&tagID)
		if errors.Is(err, sql.ErrNoRows) {
			result, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, tag)
			if err != nil {
				return fmt.Errorf("insert tag %q: %w", tag, err)
			}
			tagID, err = result.LastInsertId()
			if err != nil {
				return fmt.Errorf("tag id for %q: %w", tag, err)
			}
		} else if err != nil {
			return fmt.Errorf("query tag %q: %w", tag, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mocktail_tags (mocktail_id, tag_id) VALUES (?, ?)`,
			recipe.ID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", tag, err)
		}
	}

	for _, ing := range recipe.Ingredients {
		var ingredientID string
		err := tx.QueryRowContext(ctx,
			`SELECT ingredient_id FROM ingredients WHERE name = ?`, ing.Name).Scan(&ingredientID)
		if errors.Is(err, sql.ErrNoRows) {
			// recipe references an ingredient the machine does not carry
			continue
		}
		if err != nil {
			return fmt.Errorf("query ingredient %q: %w", ing.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mocktail_ingredients (mocktail_id, ingredient_id, amount) VALUES (?, ?, ?)`,
			recipe.ID, ingredientID, ing.Volume); err != nil {
			return fmt.Errorf("link ingredient %q: %w", ing.Name, err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) UpdateRecipeAggregate(ctx context.Context, recipeID string, rating float64, count int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE mocktails SET rating = ?, review_count = ? WHERE mocktail_id = ?`,
		rating, count, recipeID,
	)
	if err != nil {
		return fmt.Errorf("update mocktail aggregate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var n int
		if err := m.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM mocktails WHERE mocktail_id = ?`, recipeID).Scan(&n); err != nil {
			return fmt.Errorf("check mocktail: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("recipe %s not stored", recipeID)
		}
	}
	return nil
}
