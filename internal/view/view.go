// Package view derives display values for the inventory screen. It has no
// state of its own.
package view

import (
	"strconv"
	"strings"

	"github.com/vbonduro/toyinv/internal/domain"
	"github.com/vbonduro/toyinv/internal/inventory"
)

const DefaultColor = "default"

var categoryColors = map[domain.Category]string{
	domain.CategoryActionFigure:   "red",
	domain.CategoryDoll:           "pink",
	domain.CategoryEducational:    "green",
	domain.CategoryBuildingBlocks: "blue",
	domain.CategoryBoardGame:      "purple",
	domain.CategoryVehicle:        "orange",
	domain.CategoryPlushToy:       "magenta",
	domain.CategoryPuzzle:         "cyan",
	domain.CategoryArtsAndCrafts:  "lime",
	domain.CategoryElectronic:     "geekblue",
	domain.CategoryOutdoor:        "gold",
	domain.CategoryMusical:        "volcano",
}

// CategoryColor returns the badge color for c, or DefaultColor for anything
// outside the fixed set.
func CategoryColor(c domain.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return DefaultColor
}

// FormatPrice formats p with two decimals; an absent price shows as 0.00.
func FormatPrice(p *float64) string {
	if p == nil {
		return "0.00"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

// Stars renders a 0-5 rating as filled and empty stars.
func Stars(rating int) string {
	rating = max(0, min(rating, domain.MaxRating))
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}

type Card struct {
	ID            string
	Name          string
	Category      string
	CategoryColor string
	Price         string
	AgeRange      string
	Rating        int
	Stars         string
	InStock       bool
	StockLabel    string
	StockColor    string
	ImageURL      string
	Description   string
}

// ShowRating reports whether the card has a rating to show; unrated toys
// show none.
func (c Card) ShowRating() bool { return c.Rating > 0 }

func NewCard(t *domain.Toy) Card {
	c := Card{
		ID:            t.ID,
		Name:          t.Name,
		Category:      string(t.Category),
		CategoryColor: CategoryColor(t.Category),
		Price:         FormatPrice(t.Price),
		AgeRange:      t.AgeRange,
		Rating:        t.Rating,
		Stars:         Stars(t.Rating),
		InStock:       t.InStock,
		StockLabel:    "Out of Stock",
		StockColor:    "red",
		ImageURL:      t.ImageURL,
		Description:   t.Description,
	}
	if t.InStock {
		c.StockLabel, c.StockColor = "In Stock", "green"
	}
	return c
}

type List struct {
	Cards   []Card
	Loading bool
	// Empty is set when there is nothing to show and nothing loading; the
	// page renders a call to action instead of the grid.
	Empty bool
}

// NewList maps the snapshot one card per record, in order.
func NewList(toys []*domain.Toy, loading bool) List {
	cards := make([]Card, 0, len(toys))
	for _, t := range toys {
		cards = append(cards, NewCard(t))
	}
	return List{Cards: cards, Loading: loading, Empty: len(cards) == 0 && !loading}
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type Dialog struct {
	Open        bool
	Editing     bool
	ToyID       string
	Title       string
	SubmitLabel string

	Name        string
	Category    string
	Price       string
	AgeRange    string
	Rating      string
	InStock     bool
	ImageURL    string
	Description string

	Categories []Option
	Ratings    []Option
	Errors     map[string]string
}

func NewDialog(d inventory.Dialog) Dialog {
	v := Dialog{
		Open:        d.Open,
		Editing:     d.Mode == inventory.ModeEdit,
		ToyID:       d.ToyID,
		Title:       "Add New Toy",
		SubmitLabel: "Add Toy",
		Name:        d.Form.Name,
		Category:    string(d.Form.Category),
		AgeRange:    d.Form.AgeRange,
		InStock:     d.Form.InStock,
		ImageURL:    d.Form.ImageURL,
		Description: d.Form.Description,
		Errors:      d.Errors,
	}
	if v.Editing {
		v.Title, v.SubmitLabel = "Edit Toy", "Update Toy"
	}
	if d.Form.Price != nil {
		v.Price = FormatPrice(d.Form.Price)
	}
	if d.Form.Rating != nil {
		v.Rating = strconv.Itoa(*d.Form.Rating)
	}

	v.Categories = make([]Option, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		v.Categories = append(v.Categories, Option{Value: string(c), Label: string(c), Selected: c == d.Form.Category})
	}
	v.Ratings = []Option{{Value: "", Label: "No rating", Selected: v.Rating == ""}}
	for r := 1; r <= domain.MaxRating; r++ {
		val := strconv.Itoa(r)
		v.Ratings = append(v.Ratings, Option{Value: val, Label: Stars(r), Selected: v.Rating == val})
	}
	return v
}

type Notice struct {
	Kind    string
	Message string
}

// Screen is everything the inventory page renders.
type Screen struct {
	List    List
	Dialog  Dialog
	Notices []Notice
	Version uint64
}

// NewScreen builds the screen from state. notices are passed separately
// because they are consumed when shown.
func NewScreen(st inventory.State, notices []inventory.Notice) Screen {
	s := Screen{
		List:    NewList(st.Toys, st.Loading),
		Dialog:  NewDialog(st.Dialog),
		Version: st.Version,
	}
	for _, n := range notices {
		s.Notices = append(s.Notices, Notice{Kind: string(n.Kind), Message: n.Message})
	}
	return s
}
