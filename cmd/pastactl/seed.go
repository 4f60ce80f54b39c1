package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pasta-logger/internal/model"
	"pasta-logger/internal/service"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Recipes []struct {
		Name string `yaml:"name"`
	} `yaml:"recipes"`
	PastaKinds []struct {
		Brand            string   `yaml:"brand"`
		ThicknessMM      *float64 `yaml:"thicknessMm"`
		PurchaseLocation string   `yaml:"purchaseLocation"`
	} `yaml:"pastaKinds"`
	Cheeses []struct {
		Name             string `yaml:"name"`
		Manufacturer     string `yaml:"manufacturer"`
		PurchaseLocation string `yaml:"purchaseLocation"`
	} `yaml:"cheeses"`
}

// seedResult counts what Apply did.
type seedResult struct {
	Created int
	Skipped int
}

func (r seedResult) String() string {
	return fmt.Sprintf("%d created, %d already present", r.Created, r.Skipped)
}

func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (*seedFile, error) {
	var file seedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &file, nil
}

// Apply creates the rows of the file that the master tables do not hold yet.
// Validation is left to the service, so a row it rejects stops the run.
func (f *seedFile) Apply(ctx context.Context, masters service.MasterService) (seedResult, error) {
	var result seedResult

	for _, r := range f.Recipes {
		existing, err := masters.ListRecipes(ctx, model.MasterFilter{Name: strings.TrimSpace(r.Name)})
		if err != nil {
			return result, err
		}
		if containsRecipe(existing, r.Name) {
			result.Skipped++
			continue
		}
		if _, err := masters.SaveRecipe(ctx, nil, model.RecipeInput{Name: r.Name}); err != nil {
			return result, fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		result.Created++
	}

	for _, p := range f.PastaKinds {
		existing, err := masters.ListPastaKinds(ctx, model.MasterFilter{Brand: strings.TrimSpace(p.Brand)})
		if err != nil {
			return result, err
		}
		if containsPastaKind(existing, p.Brand, p.ThicknessMM) {
			result.Skipped++
			continue
		}
		in := model.PastaKindInput{Brand: p.Brand, ThicknessMM: p.ThicknessMM, PurchaseLocation: p.PurchaseLocation}
		if _, err := masters.SavePastaKind(ctx, uuid.Nil, nil, in, nil); err != nil {
			return result, fmt.Errorf("pasta kind %q: %w", model.PastaDisplayName(&p.Brand, p.ThicknessMM), err)
		}
		result.Created++
	}

	for _, c := range f.Cheeses {
		existing, err := masters.ListCheeses(ctx, model.MasterFilter{Name: strings.TrimSpace(c.Name)})
		if err != nil {
			return result, err
		}
		if containsCheese(existing, c.Name, c.Manufacturer) {
			result.Skipped++
			continue
		}
		in := model.CheeseInput{Name: c.Name, Manufacturer: c.Manufacturer, PurchaseLocation: c.PurchaseLocation}
		if _, err := masters.SaveCheese(ctx, uuid.Nil, nil, in, nil); err != nil {
			return result, fmt.Errorf("cheese %q: %w", c.Name, err)
		}
		result.Created++
	}

	return result, nil
}

func containsRecipe(recipes []model.Recipe, name string) bool {
	for _, r := range recipes {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// containsPastaKind treats a thickness of zero or less as unset, matching how
// SavePastaKind stores it.
func containsPastaKind(kinds []model.PastaKind, brand string, thickness *float64) bool {
	if thickness != nil && *thickness <= 0 {
		thickness = nil
	}
	for _, k := range kinds {
		if !strings.EqualFold(deref(k.Brand), strings.TrimSpace(brand)) {
			continue
		}
		if (k.ThicknessMM == nil) != (thickness == nil) {
			continue
		}
		if thickness == nil || *k.ThicknessMM == *thickness {
			return true
		}
	}
	return false
}

func containsCheese(cheeses []model.Cheese, name, manufacturer string) bool {
	for _, c := range cheeses {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) &&
			strings.EqualFold(deref(c.Manufacturer), strings.TrimSpace(manufacturer)) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
