package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Recipe is a cooking category such as "carbonara".
type Recipe struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// PastaKind is a dried pasta product identified by brand and thickness.
type PastaKind struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Brand            *string   `json:"brand,omitempty" db:"brand"`
	ThicknessMM      *float64  `json:"thicknessMm,omitempty" db:"thickness_mm"`
	PurchaseLocation *string   `json:"purchaseLocation,omitempty" db:"purchase_location"`
	ImagePath        *string   `json:"imagePath,omitempty" db:"image_path"`
	ImageURL         *string   `json:"imageUrl,omitempty" db:"image_url"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	DisplayImage     string    `json:"displayImage,omitempty" db:"-"`
}

// DisplayName renders the pasta kind for pickers and lists.
func (p PastaKind) DisplayName() string {
	return PastaDisplayName(p.Brand, p.ThicknessMM)
}

// Cheese is a cheese product.
type Cheese struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Manufacturer     *string   `json:"manufacturer,omitempty" db:"manufacturer"`
	PurchaseLocation *string   `json:"purchaseLocation,omitempty" db:"purchase_location"`
	ImagePath        *string   `json:"imagePath,omitempty" db:"image_path"`
	ImageURL         *string   `json:"imageUrl,omitempty" db:"image_url"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	DisplayImage     string    `json:"displayImage,omitempty" db:"-"`
}

// MasterFilter holds the free-text and range filters of the manage screens.
// Text fields are matched case-insensitively as substrings.
type MasterFilter struct {
	Name         string
	Brand        string
	Manufacturer string
	Location     string
	ThicknessMin *float64
	ThicknessMax *float64
}

// RecipeInput is the editable part of a recipe.
type RecipeInput struct {
	Name string
}

// PastaKindInput is the editable part of a pasta kind.
type PastaKindInput struct {
	Brand            string
	ThicknessMM      *float64
	PurchaseLocation string
}

// CheeseInput is the editable part of a cheese.
type CheeseInput struct {
	Name             string
	Manufacturer     string
	PurchaseLocation string
}

// Image is a stored object reference attached to a master row.
type Image struct {
	Path string
	URL  string
}

// MasterStats are the counts shown on the manage dashboard.
type MasterStats struct {
	Recipes    int
	PastaKinds int
	Cheeses    int
}

// PickerItem is an option on the new-log form.
type PickerItem struct {
	ID       uuid.UUID
	Label    string
	Detail   string
	ImageURL string
}

// Pickers are the active master rows offered on the new-log form.
type Pickers struct {
	Recipes    []PickerItem
	PastaKinds []PickerItem
	Cheeses    []PickerItem
}

// PastaDisplayName renders "Brand 1.6mm", substituting a placeholder for a missing brand.
func PastaDisplayName(brand *string, thickness *float64) string {
	name := "Unknown brand"
	if brand != nil && *brand != "" {
		name = *brand
	}
	if thickness != nil {
		name = fmt.Sprintf("%s %smm", name, strconv.FormatFloat(*thickness, 'f', -1, 64))
	}
	return name
}
