package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"
	"pasta-logger/internal/repository"
	"pasta-logger/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// legacyTitle matches memos written before logs had a title column,
// where the title was stored as "【title】" on the first line.
var legacyTitle = regexp.MustCompile(`(?s)^【(.+?)】\n?(.*)$`)

// logService implements LogService.
type logService struct {
	logs       repository.LogRepository
	pastaKinds repository.PastaKindRepository
	cheeses    repository.CheeseRepository
	store      storage.Store
	urlTTL     time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewLogService creates a new log service.
func NewLogService(
	logs repository.LogRepository,
	pastaKinds repository.PastaKindRepository,
	cheeses repository.CheeseRepository,
	store storage.Store,
	urlTTL time.Duration,
	logger zerolog.Logger,
) LogService {
	return &logService{
		logs:       logs,
		pastaKinds: pastaKinds,
		cheeses:    cheeses,
		store:      store,
		urlTTL:     urlTTL,
		now:        time.Now,
		logger:     logger.With().Str("service", "log").Logger(),
	}
}

// Create saves a new log.
func (s *logService) Create(ctx context.Context, userID uuid.UUID, in model.LogInput, photo *Upload, snap cooking.Snapshot) (*model.LogEntry, error) {
	if in.PastaKindID == nil {
		return nil, model.ErrPastaKindRequired
	}

	kind, err := s.pastaKinds.GetByID(ctx, *in.PastaKindID)
	if err != nil {
		s.logger.Error().Err(err).Str("pasta_kind_id", in.PastaKindID.String()).Msg("failed to look up pasta kind")
		return nil, fmt.Errorf("failed to look up pasta kind: %w", err)
	}
	if kind == nil {
		s.logger.Warn().Str("pasta_kind_id", in.PastaKindID.String()).Msg("pasta kind does not exist")
		return nil, model.ErrPastaKindRequired
	}

	saltPct, err := saltPercentage(in.WaterLitres, in.SaltGrams)
	if err != nil {
		return nil, err
	}
	if l := in.LadleHalfUnits; l != nil && !(*l >= 0 && *l <= model.MaxStoredDecimal) {
		return nil, model.ErrInvalidForm
	}

	entry := &model.LogEntry{
		ID:              uuid.New(),
		UserID:          userID,
		TakenAt:         s.now(),
		RecipeID:        in.RecipeID,
		PastaKindID:     kind.ID,
		CheeseIDs:       in.CheeseIDs,
		BoilStartAt:     snap.Marks.BoilStart,
		UpAt:            snap.Marks.Up,
		CombineEndAt:    snap.Marks.CombineEnd,
		SaltPct:         saltPct,
		LadleHalfUnits:  in.LadleHalfUnits,
		Rating:          model.Rating{Overall: in.Overall, Firmness: in.Firmness},
		Title:           optional(in.Title),
		Feedback:        optional(in.Feedback),
		RecipeReference: optional(in.RecipeReference),
	}

	if !snap.Empty() {
		entry.ProcessTimes = snap.StageTimes()
		entry.CookingStartAt = snap.CookStart
		entry.CookingTotalSeconds = snap.TotalSeconds
	}

	if photo != nil {
		s.attachPhoto(ctx, entry, photo)
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create log")
		return nil, fmt.Errorf("failed to create log: %w", err)
	}

	s.logger.Info().
		Str("log_id", entry.ID.String()).
		Str("user_id", userID.String()).
		Int("stages", len(entry.ProcessTimes)).
		Msg("log created successfully")

	return entry, nil
}

// saltPercentage computes the stored salt ratio. It is only derived when
// both amounts are given and positive.
func saltPercentage(water, salt *float64) (*float64, error) {
	if water == nil || salt == nil {
		return nil, nil
	}
	if *water < 0 || *salt < 0 {
		return nil, model.ErrInvalidSaltInput
	}
	if *water == 0 || *salt == 0 {
		return nil, nil
	}
	pct, err := cooking.SaltPercentage(*water, *salt)
	if err != nil {
		return nil, err
	}
	return &pct, nil
}

func (s *logService) attachPhoto(ctx context.Context, entry *model.LogEntry, photo *Upload) {
	key := storage.PhotoKey(entry.UserID, photo.ContentType)
	if err := s.store.Upload(ctx, storage.BucketPhotos, key, photo.Body, photo.ContentType); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("photo upload failed, saving log without photo")
		return
	}

	entry.PhotoPath = &key
	if url := s.store.PublicURL(storage.BucketPhotos, key); url != "" {
		entry.PhotoURL = &url
	}
}

// List returns the user's logs.
func (s *logService) List(ctx context.Context, userID uuid.UUID, filter model.LogFilter) ([]model.LogSummary, error) {
	logs, err := s.logs.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list logs")
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	for i := range logs {
		logs[i].ResolvedPhoto = s.photoURL(ctx, logs[i].PhotoURL, logs[i].PhotoPath)
	}

	s.logger.Debug().Int("count", len(logs)).Str("user_id", userID.String()).Msg("retrieved logs")
	return logs, nil
}

// Get retrieves one log.
func (s *logService) Get(ctx context.Context, userID, id uuid.UUID) (*model.LogDetail, error) {
	detail, err := s.logs.GetDetail(ctx, userID, id)
	if err != nil {
		s.logger.Error().Err(err).Str("log_id", id.String()).Msg("failed to get log")
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	if detail == nil {
		return nil, model.ErrLogNotFound
	}

	detail.CheeseNames = []string{}
	if len(detail.CheeseIDs) > 0 {
		names, err := s.cheeses.NamesByIDs(ctx, detail.CheeseIDs)
		if err != nil {
			s.logger.Warn().Err(err).Str("log_id", id.String()).Msg("failed to resolve cheese names")
		} else {
			detail.CheeseNames = names
		}
	}

	detail.ResolvedPhoto = s.photoURL(ctx, detail.PhotoURL, detail.PhotoPath)
	detail.DisplayTitle, detail.DisplayMemo = displayText(detail.Title, detail.Feedback)

	return detail, nil
}

// displayText returns the title and memo to show. Old logs kept the title
// inside the memo.
func displayText(title, feedback *string) (string, string) {
	memo := ""
	if feedback != nil {
		memo = *feedback
	}
	if title != nil && *title != "" {
		return *title, memo
	}
	if m := legacyTitle.FindStringSubmatch(memo); m != nil {
		return m[1], m[2]
	}
	return "", memo
}

// Delete removes a log after removing its photo.
func (s *logService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	detail, err := s.logs.GetDetail(ctx, userID, id)
	if err != nil {
		s.logger.Error().Err(err).Str("log_id", id.String()).Msg("failed to get log for deletion")
		return fmt.Errorf("failed to delete log: %w", err)
	}
	if detail == nil {
		return model.ErrLogNotFound
	}

	if detail.PhotoPath != nil && *detail.PhotoPath != "" {
		if err := s.store.Remove(ctx, storage.BucketPhotos, *detail.PhotoPath); err != nil {
			s.logger.Warn().Err(err).Str("key", *detail.PhotoPath).Msg("failed to remove photo")
		}
	}

	if err := s.logs.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info().Str("log_id", id.String()).Str("user_id", userID.String()).Msg("log deleted")
	return nil
}

func (s *logService) photoURL(ctx context.Context, storedURL, path *string) string {
	url, err := storage.ResolveURL(ctx, s.store, storage.BucketPhotos, storedURL, path, s.urlTTL)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to sign photo URL")
		return ""
	}
	return url
}
