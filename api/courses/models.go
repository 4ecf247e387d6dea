package courses

import (
	"encoding/json"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/elimu/core"
)

// Levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// CategoryRef is a category reference as it appears on a course: the
// backend sends either a bare id string or an expanded {_id, name}
// object depending on the endpoint. The distinction stops here; both
// shapes decode into this struct.
type CategoryRef struct {
	ID   string
	Name null.String // set only when the reference came expanded
}

func (ref CategoryRef) Expanded() bool { return ref.Name.Valid }

func (ref *CategoryRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		ref.ID = id
		ref.Name = null.String{}
		return nil
	}
	var expanded struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &expanded); err != nil {
		return errors.Wrap(err, "decoding category reference")
	}
	ref.ID = expanded.ID
	ref.Name = null.StringFrom(expanded.Name)
	return nil
}

// MarshalJSON always writes the bare id; the expanded shape is an
// inbound-only convenience.
func (ref CategoryRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(ref.ID)
}

// Course mirrors the backend course schema.
type Course struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Discount    null.Float64 `json:"discount,omitempty"`
	Level       string       `json:"level"`
	CategoryID  CategoryRef  `json:"categoryId"`
	Thumbnail   string       `json:"thumbnail"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// DiscountedPrice applies the discount when one is set.
func (c Course) DiscountedPrice() float64 {
	if c.Discount.Valid {
		return c.Price - c.Discount.Float64
	}
	return c.Price
}

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Title       string       `json:"title" validate:"required,min=2"`
	Description string       `json:"description"`
	Price       float64      `json:"price" validate:"gte=0"`
	Discount    null.Float64 `json:"discount,omitempty" validate:"omitempty,gte=0,ltefield=Price"`
	Level       string       `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	CategoryID  string       `json:"categoryId" validate:"required"`
	Thumbnail   string       `json:"thumbnail" validate:"required,url"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Thumbnail = core.CleanString(nc.Thumbnail)
	if err := validate.Struct(nc); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

// UpdateCourse defines what may be modified on an existing Course;
// zero fields are left untouched by the backend.
type UpdateCourse struct {
	ID          string       `json:"-"`
	Title       string       `json:"title,omitempty" validate:"omitempty,min=2"`
	Description string       `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty" validate:"omitempty,gte=0"`
	Discount    null.Float64 `json:"discount,omitempty" validate:"omitempty,gte=0"`
	Level       string       `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	CategoryID  string       `json:"categoryId,omitempty"`
	Thumbnail   string       `json:"thumbnail,omitempty" validate:"omitempty,url"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Thumbnail = core.CleanString(uc.Thumbnail)
	if err := validate.Struct(uc); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}
