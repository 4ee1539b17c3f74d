package inventory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vbonduro/toyinv/internal/domain"
)

// Form is the edit dialog's model. Pointer fields distinguish "absent" from
// zero values.
type Form struct {
	Name        string          `form:"name" validate:"required"`
	Category    domain.Category `form:"category" validate:"required,toycategory"`
	Price       *float64        `form:"price" validate:"required,gte=0,lte=1000000000"`
	AgeRange    string          `form:"ageRange"`
	Rating      *int            `form:"rating" validate:"omitempty,gte=0,lte=5"`
	InStock     bool            `form:"inStock"`
	ImageURL    string          `form:"imageUrl"`
	Description string          `form:"description"`
}

// NewForm returns an empty form with the create defaults.
func NewForm() Form {
	return Form{InStock: true}
}

// FormFromToy loads a toy's current values into a form.
func FormFromToy(t *domain.Toy) Form {
	f := Form{
		Name:        t.Name,
		Category:    t.Category,
		AgeRange:    t.AgeRange,
		InStock:     t.InStock,
		ImageURL:    t.ImageURL,
		Description: t.Description,
	}
	if t.Price != nil {
		p := *t.Price
		f.Price = &p
	}
	if t.Rating > 0 {
		r := t.Rating
		f.Rating = &r
	}
	return f
}

// Fields converts the form into the record fields submitted to the gateway.
// Every editable field is set so an edit replaces the stored values.
func (f Form) Fields() domain.ToyFields {
	name := strings.TrimSpace(f.Name)
	category := f.Category
	ageRange := strings.TrimSpace(f.AgeRange)
	rating := 0
	if f.Rating != nil {
		rating = *f.Rating
	}
	inStock := f.InStock
	imageURL := strings.TrimSpace(f.ImageURL)
	description := strings.TrimSpace(f.Description)

	fields := domain.ToyFields{
		Name:        &name,
		Category:    &category,
		AgeRange:    &ageRange,
		Rating:      &rating,
		InStock:     &inStock,
		ImageURL:    &imageURL,
		Description: &description,
	}
	if f.Price != nil {
		p := domain.RoundPrice(*f.Price)
		fields.Price = &p
	}
	return fields
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("toycategory", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

var fieldMessages = map[string]map[string]string{
	"name":     {"required": "Please enter toy name!"},
	"category": {"required": "Please select category!", "toycategory": "Please select category!"},
	"price":    {"required": "Please enter price!", "gte": "Price must be 0 or more", "lte": "Price must be at most 1000000000"},
	"rating":   {"gte": "Rating must be between 0 and 5", "lte": "Rating must be between 0 and 5"},
}

// Validate checks the required fields. It returns a *ValidationError with
// one message per failing field.
func (f Form) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = msg
		}
	}
	return out
}
