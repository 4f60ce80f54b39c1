package repository

import (
	"context"
	"time"

	"pasta-logger/internal/model"

	"github.com/google/uuid"
)

// UserRepository defines data access for accounts.
type UserRepository interface {
	// UpsertByEmail returns the user with the given email, creating it if needed.
	UpsertByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// MagicLinkRepository defines data access for one-time sign-in tokens.
type MagicLinkRepository interface {
	// Create stores a new pending link.
	Create(ctx context.Context, link *model.MagicLink) error

	// Consume marks the link used and returns it. It returns nil when the
	// hash is unknown, already used, or expired at now.
	Consume(ctx context.Context, tokenHash string, now time.Time) (*model.MagicLink, error)
}

// LogRepository defines data access for cooking logs. Every operation is
// scoped to the owning user.
type LogRepository interface {
	// Create inserts a log entry. ID and TakenAt are set by the caller.
	Create(ctx context.Context, entry *model.LogEntry) error

	// List returns the user's logs, best rated first, then newest first.
	List(ctx context.Context, userID uuid.UUID, filter model.LogFilter) ([]model.LogSummary, error)

	// GetDetail retrieves one log with its recipe and pasta kind resolved,
	// or nil when it does not exist.
	GetDetail(ctx context.Context, userID, id uuid.UUID) (*model.LogDetail, error)

	// Delete removes a log. It returns model.ErrLogNotFound when nothing was deleted.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// RecipeRepository defines data access for recipe categories.
type RecipeRepository interface {
	List(ctx context.Context, filter model.MasterFilter) ([]model.Recipe, error)
	ListActive(ctx context.Context) ([]model.Recipe, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	Create(ctx context.Context, recipe *model.Recipe) error
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// PastaKindRepository defines data access for pasta kinds.
type PastaKindRepository interface {
	List(ctx context.Context, filter model.MasterFilter) ([]model.PastaKind, error)
	ListActive(ctx context.Context) ([]model.PastaKind, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.PastaKind, error)
	Create(ctx context.Context, kind *model.PastaKind) error
	Update(ctx context.Context, kind *model.PastaKind) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// CheeseRepository defines data access for cheeses.
type CheeseRepository interface {
	List(ctx context.Context, filter model.MasterFilter) ([]model.Cheese, error)
	ListActive(ctx context.Context) ([]model.Cheese, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Cheese, error)
	Create(ctx context.Context, cheese *model.Cheese) error
	Update(ctx context.Context, cheese *model.Cheese) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)

	// NamesByIDs returns the names of the given cheeses in the order of ids,
	// skipping ids that no longer exist.
	NamesByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
}
