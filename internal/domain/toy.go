package domain

import (
	"math"
	"time"
)

// Category is one of the fixed toy categories.
type Category string

const (
	CategoryActionFigure   Category = "Action Figure"
	CategoryDoll           Category = "Doll"
	CategoryEducational    Category = "Educational"
	CategoryBuildingBlocks Category = "Building Blocks"
	CategoryBoardGame      Category = "Board Game"
	CategoryVehicle        Category = "Vehicle"
	CategoryPlushToy       Category = "Plush Toy"
	CategoryPuzzle         Category = "Puzzle"
	CategoryArtsAndCrafts  Category = "Arts & Crafts"
	CategoryElectronic     Category = "Electronic"
	CategoryOutdoor        Category = "Outdoor"
	CategoryMusical        Category = "Musical"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryActionFigure,
	CategoryDoll,
	CategoryEducational,
	CategoryBuildingBlocks,
	CategoryBoardGame,
	CategoryVehicle,
	CategoryPlushToy,
	CategoryPuzzle,
	CategoryArtsAndCrafts,
	CategoryElectronic,
	CategoryOutdoor,
	CategoryMusical,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const MaxRating = 5

type Toy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Price       *float64  `json:"price,omitempty"`
	AgeRange    string    `json:"ageRange,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	InStock     bool      `json:"inStock"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// ToyFields is a partial toy record. Nil fields are left unchanged when
// applied to an existing toy.
type ToyFields struct {
	Name        *string   `json:"name,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	AgeRange    *string   `json:"ageRange,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	InStock     *bool     `json:"inStock,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Description *string   `json:"description,omitempty"`
	Deleted     *bool     `json:"deleted,omitempty"`
}

// SoftDelete is the patch that marks a toy as deleted.
func SoftDelete() ToyFields {
	deleted := true
	return ToyFields{Deleted: &deleted}
}

// Apply merges the non-nil fields of f into a copy of t.
func (t Toy) Apply(f ToyFields) Toy {
	if f.Name != nil {
		t.Name = *f.Name
	}
	if f.Category != nil {
		t.Category = *f.Category
	}
	if f.Price != nil {
		p := RoundPrice(*f.Price)
		t.Price = &p
	}
	if f.AgeRange != nil {
		t.AgeRange = *f.AgeRange
	}
	if f.Rating != nil {
		t.Rating = *f.Rating
	}
	if f.InStock != nil {
		t.InStock = *f.InStock
	}
	if f.ImageURL != nil {
		t.ImageURL = *f.ImageURL
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Deleted != nil {
		t.Deleted = *f.Deleted
	}
	return t
}

// Fields returns every editable field of t as a patch.
func (t Toy) Fields() ToyFields {
	f := ToyFields{
		Name:        &t.Name,
		Category:    &t.Category,
		AgeRange:    &t.AgeRange,
		Rating:      &t.Rating,
		InStock:     &t.InStock,
		ImageURL:    &t.ImageURL,
		Description: &t.Description,
	}
	if t.Price != nil {
		p := *t.Price
		f.Price = &p
	}
	return f
}

// MaxPrice is the highest price a toy may carry.
const MaxPrice = 1_000_000_000

// RoundPrice rounds p to cents. Negative zero becomes zero. Values too large
// to carry cents are returned unchanged.
func RoundPrice(p float64) float64 {
	if math.IsNaN(p) || math.Abs(p) >= 1e15 {
		return p
	}
	r := math.Round(p*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
