package repository

import (
	"context"
	"errors"
	"fmt"

	"pasta-logger/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// recipeRepository implements RecipeRepository using PostgreSQL.
type recipeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRecipeRepository creates a new PostgreSQL-backed recipe repository.
func NewRecipeRepository(pool *pgxpool.Pool, logger zerolog.Logger) RecipeRepository {
	return &recipeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "recipe").Logger(),
	}
}

const recipeColumns = `id, name, is_active, created_at`

func scanRecipes(rows pgx.Rows) ([]model.Recipe, error) {
	recipes := []model.Recipe{}
	for rows.Next() {
		var rc model.Recipe
		if err := rows.Scan(&rc.ID, &rc.Name, &rc.IsActive, &rc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}
	return recipes, nil
}

// List returns recipes matching the name filter, ordered by name.
func (r *recipeRepository) List(ctx context.Context, f model.MasterFilter) ([]model.Recipe, error) {
	var where whereClause
	where.contains("name", f.Name)

	query := fmt.Sprintf(`SELECT %s FROM recipes %s ORDER BY name`, recipeColumns, where.String())

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query recipes")
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read recipe rows")
		return nil, err
	}
	return recipes, nil
}

// ListActive returns the recipes offered on the new-log form.
func (r *recipeRepository) ListActive(ctx context.Context) ([]model.Recipe, error) {
	query := fmt.Sprintf(`SELECT %s FROM recipes WHERE is_active ORDER BY name`, recipeColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query active recipes")
		return nil, fmt.Errorf("failed to query active recipes: %w", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// GetByID retrieves a recipe, or nil when it does not exist.
func (r *recipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	query := fmt.Sprintf(`SELECT %s FROM recipes WHERE id = $1`, recipeColumns)

	var rc model.Recipe
	err := r.pool.QueryRow(ctx, query, id).Scan(&rc.ID, &rc.Name, &rc.IsActive, &rc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("recipe_id", id.String()).Msg("recipe not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("recipe_id", id.String()).Msg("failed to query recipe")
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}
	return &rc, nil
}

// Create inserts a recipe.
func (r *recipeRepository) Create(ctx context.Context, rc *model.Recipe) error {
	query := `
		INSERT INTO recipes (id, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, rc.ID, rc.Name, rc.IsActive).Scan(&rc.CreatedAt); err != nil {
		r.logger.Error().Err(err).Str("name", rc.Name).Msg("failed to create recipe")
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a recipe.
func (r *recipeRepository) Update(ctx context.Context, rc *model.Recipe) error {
	tag, err := r.pool.Exec(ctx, `UPDATE recipes SET name = $2, is_active = $3 WHERE id = $1`,
		rc.ID, rc.Name, rc.IsActive)
	if err != nil {
		r.logger.Error().Err(err).Str("recipe_id", rc.ID.String()).Msg("failed to update recipe")
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMasterNotFound
	}
	return nil
}

// Delete removes a recipe. Logs that referenced it keep no recipe.
func (r *recipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("recipe_id", id.String()).Msg("failed to delete recipe")
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMasterNotFound
	}
	return nil
}

// Count returns the number of recipes.
func (r *recipeRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		r.logger.Error().Err(err).Msg("failed to count recipes")
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}
