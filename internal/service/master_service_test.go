package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pasta-logger/internal/model"
	"pasta-logger/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type masterFixture struct {
	recipes *MockRecipeRepository
	kinds   *MockPastaKindRepository
	cheeses *MockCheeseRepository
	store   *MockStore
	svc     MasterService
}

func newMasterFixture() *masterFixture {
	f := &masterFixture{
		recipes: new(MockRecipeRepository),
		kinds:   new(MockPastaKindRepository),
		cheeses: new(MockCheeseRepository),
		store:   new(MockStore),
	}
	f.svc = NewMasterService(f.recipes, f.kinds, f.cheeses, f.store, time.Hour, zerolog.Nop())
	return f
}

func TestMasterService_SaveRecipe(t *testing.T) {
	ctx := context.Background()

	t.Run("Name required", func(t *testing.T) {
		f := newMasterFixture()
		_, err := f.svc.SaveRecipe(ctx, nil, model.RecipeInput{Name: "   "})
		assert.ErrorIs(t, err, model.ErrRecipeNameRequired)
	})

	t.Run("Create", func(t *testing.T) {
		f := newMasterFixture()
		f.recipes.On("Create", ctx, mock.MatchedBy(func(r *model.Recipe) bool {
			return r.Name == "Carbonara" && r.IsActive && r.ID != uuid.Nil
		})).Return(nil)

		recipe, err := f.svc.SaveRecipe(ctx, nil, model.RecipeInput{Name: " Carbonara "})

		require.NoError(t, err)
		assert.Equal(t, "Carbonara", recipe.Name)
		f.recipes.AssertExpectations(t)
	})

	t.Run("Update reactivates", func(t *testing.T) {
		f := newMasterFixture()
		id := uuid.New()
		f.recipes.On("GetByID", ctx, id).Return(&model.Recipe{ID: id, Name: "Old", IsActive: false}, nil)
		f.recipes.On("Update", ctx, mock.MatchedBy(func(r *model.Recipe) bool {
			return r.ID == id && r.Name == "New" && r.IsActive
		})).Return(nil)

		_, err := f.svc.SaveRecipe(ctx, &id, model.RecipeInput{Name: "New"})

		require.NoError(t, err)
		f.recipes.AssertExpectations(t)
	})

	t.Run("Update missing", func(t *testing.T) {
		f := newMasterFixture()
		id := uuid.New()
		f.recipes.On("GetByID", ctx, id).Return(nil, nil)

		_, err := f.svc.SaveRecipe(ctx, &id, model.RecipeInput{Name: "New"})

		assert.ErrorIs(t, err, model.ErrMasterNotFound)
		f.recipes.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestMasterService_SavePastaKind(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name  string
		input model.PastaKindInput
		valid bool
	}{
		{name: "Brand only", input: model.PastaKindInput{Brand: "Barilla"}, valid: true},
		{name: "Thickness only", input: model.PastaKindInput{ThicknessMM: floatPtr(1.7)}, valid: true},
		{name: "Neither", input: model.PastaKindInput{PurchaseLocation: "Shop"}},
		{name: "Blank brand and zero thickness", input: model.PastaKindInput{Brand: " ", ThicknessMM: floatPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMasterFixture()
			if tt.valid {
				f.kinds.On("Create", ctx, mock.AnythingOfType("*model.PastaKind")).Return(nil)
			}

			kind, err := f.svc.SavePastaKind(ctx, userID, nil, tt.input, nil)

			if !tt.valid {
				assert.ErrorIs(t, err, model.ErrPastaKindIdentityRequired)
				return
			}
			require.NoError(t, err)
			assert.True(t, kind.IsActive)
			assert.Nil(t, kind.ImagePath)
			f.kinds.AssertExpectations(t)
		})
	}
}

func TestMasterService_SavePastaKind_Image(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	t.Run("Keeps old image without upload", func(t *testing.T) {
		f := newMasterFixture()
		f.kinds.On("GetByID", ctx, id).Return(&model.PastaKind{
			ID: id, Brand: strPtr("Barilla"), ImagePath: strPtr("pasta/u/old.jpg"), ImageURL: strPtr("https://cdn/old.jpg"),
		}, nil)
		f.kinds.On("Update", ctx, mock.MatchedBy(func(k *model.PastaKind) bool {
			return *k.ImagePath == "pasta/u/old.jpg" && *k.ImageURL == "https://cdn/old.jpg" && *k.Brand == "De Cecco"
		})).Return(nil)

		kind, err := f.svc.SavePastaKind(ctx, userID, &id, model.PastaKindInput{Brand: "De Cecco"}, nil)

		require.NoError(t, err)
		assert.Equal(t, "https://cdn/old.jpg", kind.DisplayImage)
		f.kinds.AssertExpectations(t)
	})

	t.Run("Replaces image on upload", func(t *testing.T) {
		f := newMasterFixture()
		image := &Upload{Body: strings.NewReader("png"), ContentType: "image/png"}
		f.kinds.On("GetByID", ctx, id).Return(&model.PastaKind{
			ID: id, Brand: strPtr("Barilla"), ImagePath: strPtr("pasta/u/old.jpg"), ImageURL: strPtr("https://cdn/old.jpg"),
		}, nil)
		f.store.On("Upload", ctx, storage.BucketImages, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "pasta/"+userID.String()+"/") && strings.HasSuffix(key, ".png")
		}), image.Body, "image/png").Return(nil)
		f.store.On("PublicURL", storage.BucketImages, mock.Anything).Return("")
		f.store.On("SignedURL", ctx, storage.BucketImages, mock.Anything, time.Hour).Return("http://signed/new", nil)
		f.kinds.On("Update", ctx, mock.MatchedBy(func(k *model.PastaKind) bool {
			return k.ImageURL == nil && strings.HasPrefix(*k.ImagePath, "pasta/")
		})).Return(nil)

		kind, err := f.svc.SavePastaKind(ctx, userID, &id, model.PastaKindInput{Brand: "Barilla"}, image)

		require.NoError(t, err)
		assert.Equal(t, "http://signed/new", kind.DisplayImage)
		f.store.AssertExpectations(t)
		f.kinds.AssertExpectations(t)
	})

	t.Run("Upload failure saves without image", func(t *testing.T) {
		f := newMasterFixture()
		f.store.On("Upload", ctx, storage.BucketImages, mock.Anything, mock.Anything, "image/jpeg").
			Return(errors.New("quota exceeded"))
		f.kinds.On("Create", ctx, mock.MatchedBy(func(k *model.PastaKind) bool {
			return k.ImagePath == nil
		})).Return(nil)

		_, err := f.svc.SavePastaKind(ctx, userID, nil, model.PastaKindInput{Brand: "Rummo"},
			&Upload{Body: strings.NewReader("jpg"), ContentType: "image/jpeg"})

		require.NoError(t, err)
		f.kinds.AssertExpectations(t)
	})
}

func TestMasterService_SaveCheese(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	f := newMasterFixture()
	_, err := f.svc.SaveCheese(ctx, userID, nil, model.CheeseInput{Manufacturer: "Locatelli"}, nil)
	assert.ErrorIs(t, err, model.ErrCheeseNameRequired)

	image := &Upload{Body: strings.NewReader("jpg"), ContentType: "image/jpeg"}
	f.store.On("Upload", ctx, storage.BucketImages, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "cheese/"+userID.String()+"/")
	}), image.Body, "image/jpeg").Return(nil)
	f.store.On("PublicURL", storage.BucketImages, mock.Anything).Return("https://cdn/cheese.jpg")
	f.cheeses.On("Create", ctx, mock.MatchedBy(func(c *model.Cheese) bool {
		return c.Name == "Pecorino" && *c.Manufacturer == "Locatelli" && c.PurchaseLocation == nil &&
			*c.ImageURL == "https://cdn/cheese.jpg"
	})).Return(nil)

	cheese, err := f.svc.SaveCheese(ctx, userID, nil,
		model.CheeseInput{Name: "Pecorino", Manufacturer: "Locatelli"}, image)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn/cheese.jpg", cheese.DisplayImage)
	f.cheeses.AssertExpectations(t)
}

func TestMasterService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	f := newMasterFixture()
	f.kinds.On("Delete", ctx, id).Return(model.ErrMasterInUse)
	f.recipes.On("Delete", ctx, id).Return(nil)
	f.cheeses.On("Delete", ctx, id).Return(model.ErrMasterNotFound)

	assert.ErrorIs(t, f.svc.DeletePastaKind(ctx, id), model.ErrMasterInUse)
	assert.NoError(t, f.svc.DeleteRecipe(ctx, id))
	assert.ErrorIs(t, f.svc.DeleteCheese(ctx, id), model.ErrMasterNotFound)
}

func TestMasterService_ListResolvesImages(t *testing.T) {
	ctx := context.Background()
	f := newMasterFixture()
	filter := model.MasterFilter{Brand: "bar"}

	f.kinds.On("List", ctx, filter).Return([]model.PastaKind{
		{ID: uuid.New(), ImagePath: strPtr("pasta/u/a.jpg")},
		{ID: uuid.New()},
	}, nil)
	f.store.On("SignedURL", ctx, storage.BucketImages, "pasta/u/a.jpg", time.Hour).Return("http://signed/a", nil)

	kinds, err := f.svc.ListPastaKinds(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, "http://signed/a", kinds[0].DisplayImage)
	assert.Empty(t, kinds[1].DisplayImage)
}

func TestMasterService_Stats(t *testing.T) {
	t.Run("Counts", func(t *testing.T) {
		f := newMasterFixture()
		f.recipes.On("Count", mock.Anything).Return(3, nil)
		f.kinds.On("Count", mock.Anything).Return(5, nil)
		f.cheeses.On("Count", mock.Anything).Return(2, nil)

		stats, err := f.svc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, &model.MasterStats{Recipes: 3, PastaKinds: 5, Cheeses: 2}, stats)
	})

	t.Run("One failure fails all", func(t *testing.T) {
		f := newMasterFixture()
		f.recipes.On("Count", mock.Anything).Return(3, nil)
		f.kinds.On("Count", mock.Anything).Return(0, errors.New("503 service unavailable"))
		f.cheeses.On("Count", mock.Anything).Return(2, nil)

		_, err := f.svc.Stats(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})
}

func TestMasterService_Pickers(t *testing.T) {
	f := newMasterFixture()
	recipeID, kindID, cheeseID := uuid.New(), uuid.New(), uuid.New()

	f.recipes.On("ListActive", mock.Anything).Return([]model.Recipe{{ID: recipeID, Name: "Carbonara"}}, nil)
	f.kinds.On("ListActive", mock.Anything).Return([]model.PastaKind{{
		ID: kindID, Brand: strPtr("De Cecco"), ThicknessMM: floatPtr(1.6),
		PurchaseLocation: strPtr("Corner shop"), ImageURL: strPtr("https://cdn/p.jpg"),
	}}, nil)
	f.cheeses.On("ListActive", mock.Anything).Return([]model.Cheese{{
		ID: cheeseID, Name: "Pecorino", Manufacturer: strPtr("Locatelli"),
	}}, nil)

	p, err := f.svc.Pickers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.PickerItem{{ID: recipeID, Label: "Carbonara"}}, p.Recipes)
	assert.Equal(t, []model.PickerItem{{
		ID: kindID, Label: "De Cecco 1.6mm", Detail: "Corner shop", ImageURL: "https://cdn/p.jpg",
	}}, p.PastaKinds)
	assert.Equal(t, []model.PickerItem{{ID: cheeseID, Label: "Pecorino", Detail: "Locatelli"}}, p.Cheeses)
	f.store.AssertNotCalled(t, "SignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMasterService_Pickers_Error(t *testing.T) {
	f := newMasterFixture()
	f.recipes.On("ListActive", mock.Anything).Return(nil, errors.New("fetch failed"))
	f.kinds.On("ListActive", mock.Anything).Return([]model.PastaKind{}, nil).Maybe()
	f.cheeses.On("ListActive", mock.Anything).Return([]model.Cheese{}, nil).Maybe()

	_, err := f.svc.Pickers(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch failed")
}
