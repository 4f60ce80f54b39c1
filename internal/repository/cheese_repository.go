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

// cheeseRepository implements CheeseRepository using PostgreSQL.
type cheeseRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCheeseRepository creates a new PostgreSQL-backed cheese repository.
func NewCheeseRepository(pool *pgxpool.Pool, logger zerolog.Logger) CheeseRepository {
	return &cheeseRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cheese").Logger(),
	}
}

const cheeseColumns = `id, name, manufacturer, purchase_location, image_path, image_url, is_active, created_at`

func scanCheese(row pgx.Row, c *model.Cheese) error {
	return row.Scan(&c.ID, &c.Name, &c.Manufacturer, &c.PurchaseLocation,
		&c.ImagePath, &c.ImageURL, &c.IsActive, &c.CreatedAt)
}

func (r *cheeseRepository) query(ctx context.Context, query string, args ...any) ([]model.Cheese, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query cheeses")
		return nil, fmt.Errorf("failed to query cheeses: %w", err)
	}
	defer rows.Close()

	cheeses := []model.Cheese{}
	for rows.Next() {
		var c model.Cheese
		if err := scanCheese(rows, &c); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cheese row")
			return nil, fmt.Errorf("failed to scan cheese: %w", err)
		}
		cheeses = append(cheeses, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cheese rows")
		return nil, fmt.Errorf("error iterating cheeses: %w", err)
	}
	return cheeses, nil
}

// List returns cheeses matching the filter, ordered by name.
func (r *cheeseRepository) List(ctx context.Context, f model.MasterFilter) ([]model.Cheese, error) {
	var where whereClause
	where.contains("name", f.Name)
	where.contains("manufacturer", f.Manufacturer)
	where.contains("purchase_location", f.Location)

	query := fmt.Sprintf(`SELECT %s FROM cheeses %s ORDER BY name`, cheeseColumns, where.String())
	return r.query(ctx, query, where.args...)
}

// ListActive returns the cheeses offered on the new-log form.
func (r *cheeseRepository) ListActive(ctx context.Context) ([]model.Cheese, error) {
	query := fmt.Sprintf(`SELECT %s FROM cheeses WHERE is_active ORDER BY name`, cheeseColumns)
	return r.query(ctx, query)
}

// GetByID retrieves a cheese, or nil when it does not exist.
func (r *cheeseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Cheese, error) {
	query := fmt.Sprintf(`SELECT %s FROM cheeses WHERE id = $1`, cheeseColumns)

	var c model.Cheese
	if err := scanCheese(r.pool.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("cheese_id", id.String()).Msg("cheese not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cheese_id", id.String()).Msg("failed to query cheese")
		return nil, fmt.Errorf("failed to query cheese: %w", err)
	}
	return &c, nil
}

// Create inserts a cheese.
func (r *cheeseRepository) Create(ctx context.Context, c *model.Cheese) error {
	query := `
		INSERT INTO cheeses (id, name, manufacturer, purchase_location, image_path, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Manufacturer, c.PurchaseLocation,
		c.ImagePath, c.ImageURL, c.IsActive).Scan(&c.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", c.Name).Msg("failed to create cheese")
		return fmt.Errorf("failed to create cheese: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a cheese.
func (r *cheeseRepository) Update(ctx context.Context, c *model.Cheese) error {
	query := `
		UPDATE cheeses
		SET name = $2, manufacturer = $3, purchase_location = $4,
		    image_path = $5, image_url = $6, is_active = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Manufacturer, c.PurchaseLocation,
		c.ImagePath, c.ImageURL, c.IsActive)
	if err != nil {
		r.logger.Error().Err(err).Str("cheese_id", c.ID.String()).Msg("failed to update cheese")
		return fmt.Errorf("failed to update cheese: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMasterNotFound
	}
	return nil
}

// Delete removes a cheese. Logs keep the dangling id and simply stop
// showing its name.
func (r *cheeseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cheeses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("cheese_id", id.String()).Msg("failed to delete cheese")
		return fmt.Errorf("failed to delete cheese: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMasterNotFound
	}
	return nil
}

// Count returns the number of cheeses.
func (r *cheeseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cheeses`).Scan(&n); err != nil {
		r.logger.Error().Err(err).Msg("failed to count cheeses")
		return 0, fmt.Errorf("failed to count cheeses: %w", err)
	}
	return n, nil
}

// NamesByIDs returns cheese names in the order of ids.
func (r *cheeseRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT c.name
		FROM unnest($1::uuid[]) WITH ORDINALITY AS wanted(id, ord)
		JOIN cheeses c ON c.id = wanted.id
		ORDER BY wanted.ord
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query cheese names")
		return nil, fmt.Errorf("failed to query cheese names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan cheese name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cheese names: %w", err)
	}
	return names, nil
}
