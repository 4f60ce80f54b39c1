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

// pastaKindRepository implements PastaKindRepository using PostgreSQL.
type pastaKindRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPastaKindRepository creates a new PostgreSQL-backed pasta kind repository.
func NewPastaKindRepository(pool *pgxpool.Pool, logger zerolog.Logger) PastaKindRepository {
	return &pastaKindRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "pasta_kind").Logger(),
	}
}

const pastaKindColumns = `id, brand, thickness_mm, purchase_location, image_path, image_url, is_active, created_at`

func scanPastaKind(row pgx.Row, p *model.PastaKind) error {
	return row.Scan(&p.ID, &p.Brand, &p.ThicknessMM, &p.PurchaseLocation,
		&p.ImagePath, &p.ImageURL, &p.IsActive, &p.CreatedAt)
}

func (r *pastaKindRepository) query(ctx context.Context, query string, args ...any) ([]model.PastaKind, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query pasta kinds")
		return nil, fmt.Errorf("failed to query pasta kinds: %w", err)
	}
	defer rows.Close()

	kinds := []model.PastaKind{}
	for rows.Next() {
		var p model.PastaKind
		if err := scanPastaKind(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan pasta kind row")
			return nil, fmt.Errorf("failed to scan pasta kind: %w", err)
		}
		kinds = append(kinds, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating pasta kind rows")
		return nil, fmt.Errorf("error iterating pasta kinds: %w", err)
	}
	return kinds, nil
}

// List returns pasta kinds matching the filter, ordered by brand then thickness.
func (r *pastaKindRepository) List(ctx context.Context, f model.MasterFilter) ([]model.PastaKind, error) {
	var where whereClause
	where.contains("brand", f.Brand)
	where.contains("purchase_location", f.Location)
	if f.ThicknessMin != nil {
		where.add("thickness_mm >= ?", *f.ThicknessMin)
	}
	if f.ThicknessMax != nil {
		where.add("thickness_mm <= ?", *f.ThicknessMax)
	}

	query := fmt.Sprintf(`SELECT %s FROM pasta_kinds %s ORDER BY brand, thickness_mm`,
		pastaKindColumns, where.String())
	return r.query(ctx, query, where.args...)
}

// ListActive returns the pasta kinds offered on the new-log form.
func (r *pastaKindRepository) ListActive(ctx context.Context) ([]model.PastaKind, error) {
	query := fmt.Sprintf(`SELECT %s FROM pasta_kinds WHERE is_active ORDER BY brand, thickness_mm`, pastaKindColumns)
	return r.query(ctx, query)
}

// GetByID retrieves a pasta kind, or nil when it does not exist.
func (r *pastaKindRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PastaKind, error) {
	query := fmt.Sprintf(`SELECT %s FROM pasta_kinds WHERE id = $1`, pastaKindColumns)

	var p model.PastaKind
	if err := scanPastaKind(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("pasta_kind_id", id.String()).Msg("pasta kind not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("pasta_kind_id", id.String()).Msg("failed to query pasta kind")
		return nil, fmt.Errorf("failed to query pasta kind: %w", err)
	}
	return &p, nil
}

// Create inserts a pasta kind.
func (r *pastaKindRepository) Create(ctx context.Context, p *model.PastaKind) error {
	query := `
		INSERT INTO pasta_kinds (id, brand, thickness_mm, purchase_location, image_path, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, p.ID, p.Brand, p.ThicknessMM, p.PurchaseLocation,
		p.ImagePath, p.ImageURL, p.IsActive).Scan(&p.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create pasta kind")
		return fmt.Errorf("failed to create pasta kind: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a pasta kind.
func (r *pastaKindRepository) Update(ctx context.Context, p *model.PastaKind) error {
	query := `
		UPDATE pasta_kinds
		SET brand = $2, thickness_mm = $3, purchase_location = $4,
		    image_path = $5, image_url = $6, is_active = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.Brand, p.ThicknessMM, p.PurchaseLocation,
		p.ImagePath, p.ImageURL, p.IsActive)
	if err != nil {
		r.logger.Error().Err(err).Str("pasta_kind_id", p.ID.String()).Msg("failed to update pasta kind")
		return fmt.Errorf("failed to update pasta kind: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMasterNotFound
	}
	return nil
}

// Delete removes a pasta kind. Kinds referenced by logs cannot be deleted.
func (r *pastaKindRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pasta_kinds WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrMasterInUse
		}
		r.logger.Error().Err(err).Str("pasta_kind_id", id.String()).Msg("failed to delete pasta kind")
		return fmt.Errorf("failed to delete pasta kind: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMasterNotFound
	}
	return nil
}

// Count returns the number of pasta kinds.
func (r *pastaKindRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pasta_kinds`).Scan(&n); err != nil {
		r.logger.Error().Err(err).Msg("failed to count pasta kinds")
		return 0, fmt.Errorf("failed to count pasta kinds: %w", err)
	}
	return n, nil
}
