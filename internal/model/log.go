package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating is the per-session score stored as a JSON object.
type Rating struct {
	Overall  *int `json:"overall"`
	Firmness *int `json:"firmness"`
}

// Scores run from MinScore to MaxScore.
const (
	MinScore = 1
	MaxScore = 5
)

// MaxStoredDecimal is the largest value a NUMERIC(4,1) column holds.
const MaxStoredDecimal = 999.9

// LogEntry is one recorded cooking session.
type LogEntry struct {
	ID                  uuid.UUID            `json:"id" db:"id"`
	UserID              uuid.UUID            `json:"userId" db:"user_id"`
	TakenAt             time.Time            `json:"takenAt" db:"taken_at"`
	RecipeID            *uuid.UUID           `json:"recipeId,omitempty" db:"recipe_id"`
	PastaKindID         uuid.UUID            `json:"pastaKindId" db:"pasta_kind_id"`
	CheeseIDs           []uuid.UUID          `json:"cheeseKindIds" db:"cheese_kind_ids"`
	BoilStartAt         *time.Time           `json:"boilStartTs,omitempty" db:"boil_start_ts"`
	UpAt                *time.Time           `json:"upTs,omitempty" db:"up_ts"`
	CombineEndAt        *time.Time           `json:"combineEndTs,omitempty" db:"combine_end_ts"`
	SaltPct             *float64             `json:"boilSaltPct,omitempty" db:"boil_salt_pct"`
	LadleHalfUnits      *float64             `json:"ladleHalfUnits,omitempty" db:"ladle_half_units"`
	PhotoPath           *string              `json:"photoPath,omitempty" db:"photo_path"`
	PhotoURL            *string              `json:"photoUrl,omitempty" db:"photo_url"`
	Rating              Rating               `json:"ratingCore" db:"rating_core"`
	Title               *string              `json:"title,omitempty" db:"title"`
	Feedback            *string              `json:"feedbackText,omitempty" db:"feedback_text"`
	RecipeReference     *string              `json:"recipeReference,omitempty" db:"recipe_reference"`
	ProcessTimes        map[string]time.Time `json:"cookingProcessTimes,omitempty" db:"cooking_process_times"`
	CookingStartAt      *time.Time           `json:"cookingStartTime,omitempty" db:"cooking_start_time"`
	CookingTotalSeconds *int                 `json:"cookingTotalSeconds,omitempty" db:"cooking_total_seconds"`
}

// LogInput carries the fields a user submits on the new-log form.
type LogInput struct {
	RecipeID        *uuid.UUID
	PastaKindID     *uuid.UUID
	CheeseIDs       []uuid.UUID
	WaterLitres     *float64
	SaltGrams       *float64
	LadleHalfUnits  *float64
	Overall         *int
	Firmness        *int
	Title           string
	Feedback        string
	RecipeReference string
}

// LogFilter narrows the history list. Zero values mean "no filter".
type LogFilter struct {
	RecipeID     *uuid.UUID
	PastaKindID  *uuid.UUID
	ThicknessMin *float64
	ThicknessMax *float64
	Limit        int
}

// LogSummary is one row of the history list.
type LogSummary struct {
	ID             uuid.UUID
	TakenAt        time.Time
	Overall        *int
	Feedback       string
	PastaBrand     *string
	PastaThickness *float64
	PhotoPath      *string
	PhotoURL       *string
	ResolvedPhoto  string
}

// PastaLabel renders the pasta kind like "Brand 1.6mm", or "" when the log has none.
func (s LogSummary) PastaLabel() string {
	if s.PastaBrand == nil && s.PastaThickness == nil {
		return ""
	}
	return PastaDisplayName(s.PastaBrand, s.PastaThickness)
}

// LogDetail is a log entry joined with the names of what it references.
type LogDetail struct {
	LogEntry
	RecipeName     *string
	PastaBrand     *string
	PastaThickness *float64
	CheeseNames    []string
	ResolvedPhoto  string
	DisplayTitle   string
	DisplayMemo    string
}
