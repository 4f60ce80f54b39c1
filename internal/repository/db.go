package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// foreignKeyViolation is raised when deleting a row that logs still reference.
const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// Repositories bundles every PostgreSQL-backed repository on one pool.
type Repositories struct {
	Users      UserRepository
	MagicLinks MagicLinkRepository
	Logs       LogRepository
	Recipes    RecipeRepository
	PastaKinds PastaKindRepository
	Cheeses    CheeseRepository
}

// New creates all repositories sharing pool.
func New(pool *pgxpool.Pool, logger zerolog.Logger) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(pool, logger),
		MagicLinks: NewMagicLinkRepository(pool, logger),
		Logs:       NewLogRepository(pool, logger),
		Recipes:    NewRecipeRepository(pool, logger),
		PastaKinds: NewPastaKindRepository(pool, logger),
		Cheeses:    NewCheeseRepository(pool, logger),
	}
}
