package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pasta-logger/internal/model"
	"pasta-logger/internal/repository"
	"pasta-logger/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// masterService implements MasterService.
type masterService struct {
	recipes    repository.RecipeRepository
	pastaKinds repository.PastaKindRepository
	cheeses    repository.CheeseRepository
	store      storage.Store
	urlTTL     time.Duration
	logger     zerolog.Logger
}

// NewMasterService creates a new master data service.
func NewMasterService(
	recipes repository.RecipeRepository,
	pastaKinds repository.PastaKindRepository,
	cheeses repository.CheeseRepository,
	store storage.Store,
	urlTTL time.Duration,
	logger zerolog.Logger,
) MasterService {
	return &masterService{
		recipes:    recipes,
		pastaKinds: pastaKinds,
		cheeses:    cheeses,
		store:      store,
		urlTTL:     urlTTL,
		logger:     logger.With().Str("service", "master").Logger(),
	}
}

// ListRecipes returns recipes matching the filter.
func (s *masterService) ListRecipes(ctx context.Context, filter model.MasterFilter) ([]model.Recipe, error) {
	recipes, err := s.recipes.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list recipes")
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe retrieves a recipe.
func (s *masterService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe == nil {
		return nil, model.ErrMasterNotFound
	}
	return recipe, nil
}

// SaveRecipe creates or updates a recipe. Saved recipes are always active.
func (s *masterService) SaveRecipe(ctx context.Context, id *uuid.UUID, in model.RecipeInput) (*model.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.ErrRecipeNameRequired
	}

	if id == nil {
		recipe := &model.Recipe{ID: uuid.New(), Name: name, IsActive: true}
		if err := s.recipes.Create(ctx, recipe); err != nil {
			return nil, fmt.Errorf("failed to create recipe: %w", err)
		}
		s.logger.Info().Str("recipe_id", recipe.ID.String()).Str("name", name).Msg("recipe created")
		return recipe, nil
	}

	recipe, err := s.GetRecipe(ctx, *id)
	if err != nil {
		return nil, err
	}
	recipe.Name = name
	recipe.IsActive = true
	if err := s.recipes.Update(ctx, recipe); err != nil {
		return nil, err
	}
	s.logger.Info().Str("recipe_id", recipe.ID.String()).Msg("recipe updated")
	return recipe, nil
}

// DeleteRecipe removes a recipe.
func (s *masterService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("recipe_id", id.String()).Msg("recipe deleted")
	return nil
}

// ListPastaKinds returns pasta kinds matching the filter with images resolved.
func (s *masterService) ListPastaKinds(ctx context.Context, filter model.MasterFilter) ([]model.PastaKind, error) {
	kinds, err := s.pastaKinds.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list pasta kinds")
		return nil, fmt.Errorf("failed to list pasta kinds: %w", err)
	}
	for i := range kinds {
		kinds[i].DisplayImage = s.imageURL(ctx, kinds[i].ImageURL, kinds[i].ImagePath)
	}
	return kinds, nil
}

// GetPastaKind retrieves a pasta kind.
func (s *masterService) GetPastaKind(ctx context.Context, id uuid.UUID) (*model.PastaKind, error) {
	kind, err := s.pastaKinds.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pasta kind: %w", err)
	}
	if kind == nil {
		return nil, model.ErrMasterNotFound
	}
	kind.DisplayImage = s.imageURL(ctx, kind.ImageURL, kind.ImagePath)
	return kind, nil
}

// SavePastaKind creates or updates a pasta kind. Either a brand or a
// thickness must be given. An existing image is kept unless a new one is
// uploaded.
func (s *masterService) SavePastaKind(ctx context.Context, userID uuid.UUID, id *uuid.UUID, in model.PastaKindInput, image *Upload) (*model.PastaKind, error) {
	brand := optional(in.Brand)
	thickness := in.ThicknessMM
	if thickness != nil && *thickness <= 0 {
		thickness = nil
	}
	if brand == nil && thickness == nil {
		return nil, model.ErrPastaKindIdentityRequired
	}

	kind := &model.PastaKind{ID: uuid.New()}
	if id != nil {
		existing, err := s.GetPastaKind(ctx, *id)
		if err != nil {
			return nil, err
		}
		kind = existing
	}

	kind.Brand = brand
	kind.ThicknessMM = thickness
	kind.PurchaseLocation = optional(in.PurchaseLocation)
	kind.IsActive = true
	if img := s.uploadImage(ctx, storage.FolderPasta, userID, image); img != nil {
		kind.ImagePath = &img.Path
		kind.ImageURL = nil
		if img.URL != "" {
			kind.ImageURL = &img.URL
		}
	}

	if id == nil {
		if err := s.pastaKinds.Create(ctx, kind); err != nil {
			return nil, fmt.Errorf("failed to create pasta kind: %w", err)
		}
		s.logger.Info().Str("pasta_kind_id", kind.ID.String()).Msg("pasta kind created")
	} else {
		if err := s.pastaKinds.Update(ctx, kind); err != nil {
			return nil, err
		}
		s.logger.Info().Str("pasta_kind_id", kind.ID.String()).Msg("pasta kind updated")
	}

	kind.DisplayImage = s.imageURL(ctx, kind.ImageURL, kind.ImagePath)
	return kind, nil
}

// DeletePastaKind removes a pasta kind that no log uses.
func (s *masterService) DeletePastaKind(ctx context.Context, id uuid.UUID) error {
	if err := s.pastaKinds.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("pasta_kind_id", id.String()).Msg("pasta kind deleted")
	return nil
}

// ListCheeses returns cheeses matching the filter with images resolved.
func (s *masterService) ListCheeses(ctx context.Context, filter model.MasterFilter) ([]model.Cheese, error) {
	cheeses, err := s.cheeses.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list cheeses")
		return nil, fmt.Errorf("failed to list cheeses: %w", err)
	}
	for i := range cheeses {
		cheeses[i].DisplayImage = s.imageURL(ctx, cheeses[i].ImageURL, cheeses[i].ImagePath)
	}
	return cheeses, nil
}

// GetCheese retrieves a cheese.
func (s *masterService) GetCheese(ctx context.Context, id uuid.UUID) (*model.Cheese, error) {
	cheese, err := s.cheeses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cheese: %w", err)
	}
	if cheese == nil {
		return nil, model.ErrMasterNotFound
	}
	cheese.DisplayImage = s.imageURL(ctx, cheese.ImageURL, cheese.ImagePath)
	return cheese, nil
}

// SaveCheese creates or updates a cheese.
func (s *masterService) SaveCheese(ctx context.Context, userID uuid.UUID, id *uuid.UUID, in model.CheeseInput, image *Upload) (*model.Cheese, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.ErrCheeseNameRequired
	}

	cheese := &model.Cheese{ID: uuid.New()}
	if id != nil {
		existing, err := s.GetCheese(ctx, *id)
		if err != nil {
			return nil, err
		}
		cheese = existing
	}

	cheese.Name = name
	cheese.Manufacturer = optional(in.Manufacturer)
	cheese.PurchaseLocation = optional(in.PurchaseLocation)
	cheese.IsActive = true
	if img := s.uploadImage(ctx, storage.FolderCheese, userID, image); img != nil {
		cheese.ImagePath = &img.Path
		cheese.ImageURL = nil
		if img.URL != "" {
			cheese.ImageURL = &img.URL
		}
	}

	if id == nil {
		if err := s.cheeses.Create(ctx, cheese); err != nil {
			return nil, fmt.Errorf("failed to create cheese: %w", err)
		}
		s.logger.Info().Str("cheese_id", cheese.ID.String()).Msg("cheese created")
	} else {
		if err := s.cheeses.Update(ctx, cheese); err != nil {
			return nil, err
		}
		s.logger.Info().Str("cheese_id", cheese.ID.String()).Msg("cheese updated")
	}

	cheese.DisplayImage = s.imageURL(ctx, cheese.ImageURL, cheese.ImagePath)
	return cheese, nil
}

// DeleteCheese removes a cheese.
func (s *masterService) DeleteCheese(ctx context.Context, id uuid.UUID) error {
	if err := s.cheeses.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("cheese_id", id.String()).Msg("cheese deleted")
	return nil
}

// Stats counts recipes, pasta kinds and cheeses concurrently.
func (s *masterService) Stats(ctx context.Context) (*model.MasterStats, error) {
	var stats model.MasterStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Recipes, err = s.recipes.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PastaKinds, err = s.pastaKinds.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Cheeses, err = s.cheeses.Count(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to count master data")
		return nil, fmt.Errorf("failed to count master data: %w", err)
	}
	return &stats, nil
}

// Pickers loads active recipes, pasta kinds and cheeses concurrently.
func (s *masterService) Pickers(ctx context.Context) (*model.Pickers, error) {
	var (
		recipes []model.Recipe
		kinds   []model.PastaKind
		cheeses []model.Cheese
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		recipes, err = s.recipes.ListActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		kinds, err = s.pastaKinds.ListActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		cheeses, err = s.cheeses.ListActive(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to load pickers")
		return nil, fmt.Errorf("failed to load pickers: %w", err)
	}

	p := &model.Pickers{
		Recipes:    make([]model.PickerItem, 0, len(recipes)),
		PastaKinds: make([]model.PickerItem, 0, len(kinds)),
		Cheeses:    make([]model.PickerItem, 0, len(cheeses)),
	}
	for _, r := range recipes {
		p.Recipes = append(p.Recipes, model.PickerItem{ID: r.ID, Label: r.Name})
	}
	for _, k := range kinds {
		p.PastaKinds = append(p.PastaKinds, model.PickerItem{
			ID:       k.ID,
			Label:    k.DisplayName(),
			Detail:   deref(k.PurchaseLocation),
			ImageURL: s.imageURL(ctx, k.ImageURL, k.ImagePath),
		})
	}
	for _, c := range cheeses {
		p.Cheeses = append(p.Cheeses, model.PickerItem{
			ID:       c.ID,
			Label:    c.Name,
			Detail:   deref(c.Manufacturer),
			ImageURL: s.imageURL(ctx, c.ImageURL, c.ImagePath),
		})
	}
	return p, nil
}

// uploadImage stores a master image. It returns nil when there is nothing
// to upload or the upload failed.
func (s *masterService) uploadImage(ctx context.Context, folder string, userID uuid.UUID, image *Upload) *model.Image {
	if image == nil {
		return nil
	}
	key := storage.ImageKey(folder, userID, image.ContentType)
	if err := s.store.Upload(ctx, storage.BucketImages, key, image.Body, image.ContentType); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("image upload failed, saving without image")
		return nil
	}
	return &model.Image{Path: key, URL: s.store.PublicURL(storage.BucketImages, key)}
}

func (s *masterService) imageURL(ctx context.Context, storedURL, path *string) string {
	url, err := storage.ResolveURL(ctx, s.store, storage.BucketImages, storedURL, path, s.urlTTL)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to sign image URL")
		return ""
	}
	return url
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
