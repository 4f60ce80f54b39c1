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

// DefaultLogLimit caps the history list.
const DefaultLogLimit = 50

// logRepository implements LogRepository using PostgreSQL.
type logRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLogRepository creates a new PostgreSQL-backed log repository.
func NewLogRepository(pool *pgxpool.Pool, logger zerolog.Logger) LogRepository {
	return &logRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "log").Logger(),
	}
}

// Create inserts a log entry.
func (r *logRepository) Create(ctx context.Context, e *model.LogEntry) error {
	query := `
		INSERT INTO pasta_logs (
			id, user_id, taken_at, recipe_id, pasta_kind_id, cheese_kind_ids,
			boil_start_ts, up_ts, combine_end_ts, boil_salt_pct, ladle_half_units,
			photo_path, photo_url, rating_core, title, feedback_text, recipe_reference,
			cooking_process_times, cooking_start_time, cooking_total_seconds
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20
		)
	`

	cheeseIDs := e.CheeseIDs
	if cheeseIDs == nil {
		cheeseIDs = []uuid.UUID{}
	}

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.UserID, e.TakenAt, e.RecipeID, e.PastaKindID, cheeseIDs,
		e.BoilStartAt, e.UpAt, e.CombineEndAt, e.SaltPct, e.LadleHalfUnits,
		e.PhotoPath, e.PhotoURL, e.Rating, e.Title, e.Feedback, e.RecipeReference,
		e.ProcessTimes, e.CookingStartAt, e.CookingTotalSeconds,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("log_id", e.ID.String()).
			Str("user_id", e.UserID.String()).
			Msg("failed to create log")
		return fmt.Errorf("failed to create log: %w", err)
	}

	r.logger.Debug().Str("log_id", e.ID.String()).Msg("log created successfully")
	return nil
}

// List returns the user's logs ordered by overall rating, then newest first.
func (r *logRepository) List(ctx context.Context, userID uuid.UUID, f model.LogFilter) ([]model.LogSummary, error) {
	var where whereClause
	where.add("l.user_id = ?", userID)
	if f.RecipeID != nil {
		where.add("l.recipe_id = ?", *f.RecipeID)
	}
	if f.PastaKindID != nil {
		where.add("l.pasta_kind_id = ?", *f.PastaKindID)
	}
	if f.ThicknessMin != nil {
		where.add("p.thickness_mm >= ?", *f.ThicknessMin)
	}
	if f.ThicknessMax != nil {
		where.add("p.thickness_mm <= ?", *f.ThicknessMax)
	}

	limit := f.Limit
	if limit <= 0 || limit > DefaultLogLimit {
		limit = DefaultLogLimit
	}

	query := fmt.Sprintf(`
		SELECT l.id, l.taken_at, (l.rating_core->>'overall')::int, COALESCE(l.feedback_text, ''),
		       p.brand, p.thickness_mm, l.photo_path, l.photo_url
		FROM pasta_logs l
		JOIN pasta_kinds p ON p.id = l.pasta_kind_id
		%s
		ORDER BY (l.rating_core->>'overall')::int DESC NULLS LAST, l.taken_at DESC
		LIMIT %s
	`, where.String(), where.next(limit))

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query logs")
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	logs := []model.LogSummary{}
	for rows.Next() {
		var s model.LogSummary
		err := rows.Scan(&s.ID, &s.TakenAt, &s.Overall, &s.Feedback,
			&s.PastaBrand, &s.PastaThickness, &s.PhotoPath, &s.PhotoURL)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan log row")
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating log rows")
		return nil, fmt.Errorf("error iterating logs: %w", err)
	}

	return logs, nil
}

// GetDetail retrieves one log with its recipe name and pasta kind.
func (r *logRepository) GetDetail(ctx context.Context, userID, id uuid.UUID) (*model.LogDetail, error) {
	query := `
		SELECT l.id, l.user_id, l.taken_at, l.recipe_id, l.pasta_kind_id, l.cheese_kind_ids,
		       l.boil_start_ts, l.up_ts, l.combine_end_ts, l.boil_salt_pct, l.ladle_half_units,
		       l.photo_path, l.photo_url, l.rating_core, l.title, l.feedback_text, l.recipe_reference,
		       l.cooking_process_times, l.cooking_start_time, l.cooking_total_seconds,
		       rc.name, p.brand, p.thickness_mm
		FROM pasta_logs l
		LEFT JOIN recipes rc ON rc.id = l.recipe_id
		LEFT JOIN pasta_kinds p ON p.id = l.pasta_kind_id
		WHERE l.id = $1 AND l.user_id = $2
	`

	var d model.LogDetail
	e := &d.LogEntry
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&e.ID, &e.UserID, &e.TakenAt, &e.RecipeID, &e.PastaKindID, &e.CheeseIDs,
		&e.BoilStartAt, &e.UpAt, &e.CombineEndAt, &e.SaltPct, &e.LadleHalfUnits,
		&e.PhotoPath, &e.PhotoURL, &e.Rating, &e.Title, &e.Feedback, &e.RecipeReference,
		&e.ProcessTimes, &e.CookingStartAt, &e.CookingTotalSeconds,
		&d.RecipeName, &d.PastaBrand, &d.PastaThickness,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("log_id", id.String()).Msg("log not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("log_id", id.String()).Msg("failed to query log")
		return nil, fmt.Errorf("failed to query log: %w", err)
	}

	return &d, nil
}

// Delete removes one of the user's logs.
func (r *logRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pasta_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("log_id", id.String()).Msg("failed to delete log")
		return fmt.Errorf("failed to delete log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLogNotFound
	}

	r.logger.Debug().Str("log_id", id.String()).Msg("log deleted")
	return nil
}
