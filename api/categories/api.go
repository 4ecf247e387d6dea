// Package categories declares the course-category endpoints.
package categories

import (
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/cache"
	"github.com/trezcool/elimu/core"
)

// Category mirrors the backend category schema; the slug is
// server-assigned.
type Category struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewCategory struct {
	Name string `json:"name" validate:"required,alphanum_"`
}

func (nc *NewCategory) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.Name = core.CleanString(nc.Name)
	if err := validate.Struct(nc); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

type UpdateCategory struct {
	ID   string `json:"-"`
	Name string `json:"name" validate:"required,alphanum_"`
}

func (uc *UpdateCategory) Validate(validate *validator.Validate, translator ut.Translator) error {
	uc.Name = core.CleanString(uc.Name)
	if err := validate.Struct(uc); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

var (
	List = api.Query{
		Name:     "categories.list",
		Provides: []cache.Tag{cache.TagCategory},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/category"}, nil
		},
	}

	Add = api.Mutation{
		Name:        "categories.add",
		Invalidates: []cache.Tag{cache.TagCategory},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(NewCategory)
			if !ok {
				return api.Descriptor{}, errors.Errorf("categories.add: unexpected args type %T", args)
			}
			return api.Descriptor{Method: http.MethodPost, Path: "/category", Body: in}, nil
		},
	}

	Update = api.Mutation{
		Name:        "categories.update",
		Invalidates: []cache.Tag{cache.TagCategory},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(UpdateCategory)
			if !ok {
				return api.Descriptor{}, errors.Errorf("categories.update: unexpected args type %T", args)
			}
			if in.ID == "" {
				return api.Descriptor{}, errors.New("categories.update: category id required")
			}
			return api.Descriptor{Method: http.MethodPatch, Path: "/category/" + in.ID, Body: in}, nil
		},
	}

	Delete = api.Mutation{
		Name:        "categories.delete",
		Invalidates: []cache.Tag{cache.TagCategory},
		Build: func(args interface{}) (api.Descriptor, error) {
			id, ok := args.(string)
			if !ok || id == "" {
				return api.Descriptor{}, errors.Errorf("categories.delete: category id required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodDelete, Path: "/category/" + id}, nil
		},
	}
)
