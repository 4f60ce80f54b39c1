package view

import (
	"net/url"

	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"

	"github.com/google/uuid"
)

// LoginData is the sign-in page.
type LoginData struct {
	Email string
	Sent  bool
}

// PausedData is the backend-paused notice.
type PausedData struct {
	DashboardURL string
}

// LogListData is the history page.
type LogListData struct {
	Logs    []model.LogSummary
	Pickers *model.Pickers
	Query   url.Values
}

// LogNewData is the new-log form with the live cooking timer.
type LogNewData struct {
	Pickers   *model.Pickers
	Snapshot  cooking.Snapshot
	Form      url.Values
	CheeseIDs []uuid.UUID
	Scores    []int
}

// LogDetailData is a single log.
type LogDetailData struct {
	Log      *model.LogDetail
	Analysis *cooking.AnalysisReport
}

// ManageData is the master data dashboard.
type ManageData struct {
	Stats *model.MasterStats
}

// MasterListData is a manage screen: the filtered rows plus the row being
// edited, if any.
type MasterListData[T any] struct {
	Items   []T
	Editing *T
	Query   url.Values
}

// Scores are the choices of the rating selects.
var Scores = []int{1, 2, 3, 4, 5}
