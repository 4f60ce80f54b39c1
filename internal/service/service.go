package service

import (
	"context"
	"io"
	"strings"

	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"

	"github.com/google/uuid"
)

// Upload is an image submitted with a form.
type Upload struct {
	Body        io.Reader
	ContentType string
}

// LogService defines operations on a user's cooking logs.
type LogService interface {
	// Create saves a new log from the form input and the cooking process
	// recorded so far. A failed photo upload does not fail the save.
	Create(ctx context.Context, userID uuid.UUID, in model.LogInput, photo *Upload, snap cooking.Snapshot) (*model.LogEntry, error)

	// List returns the user's logs with photo URLs resolved.
	List(ctx context.Context, userID uuid.UUID, filter model.LogFilter) ([]model.LogSummary, error)

	// Get retrieves one log with cheese names, photo URL and display title.
	Get(ctx context.Context, userID, id uuid.UUID) (*model.LogDetail, error)

	// Delete removes a log and, best effort, its photo.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// MasterService defines operations for the shared reference tables.
// A nil id on Save creates a new row.
type MasterService interface {
	ListRecipes(ctx context.Context, filter model.MasterFilter) ([]model.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	SaveRecipe(ctx context.Context, id *uuid.UUID, in model.RecipeInput) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error

	ListPastaKinds(ctx context.Context, filter model.MasterFilter) ([]model.PastaKind, error)
	GetPastaKind(ctx context.Context, id uuid.UUID) (*model.PastaKind, error)
	SavePastaKind(ctx context.Context, userID uuid.UUID, id *uuid.UUID, in model.PastaKindInput, image *Upload) (*model.PastaKind, error)
	DeletePastaKind(ctx context.Context, id uuid.UUID) error

	ListCheeses(ctx context.Context, filter model.MasterFilter) ([]model.Cheese, error)
	GetCheese(ctx context.Context, id uuid.UUID) (*model.Cheese, error)
	SaveCheese(ctx context.Context, userID uuid.UUID, id *uuid.UUID, in model.CheeseInput, image *Upload) (*model.Cheese, error)
	DeleteCheese(ctx context.Context, id uuid.UUID) error

	// Stats counts the rows of each table.
	Stats(ctx context.Context) (*model.MasterStats, error)

	// Pickers loads the active rows offered on the new-log form.
	Pickers(ctx context.Context) (*model.Pickers, error)
}

// optional trims s and returns nil when nothing is left.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
