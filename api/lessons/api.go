// Package lessons declares the lesson endpoints. Lesson writes also
// invalidate the course tag: lesson counts roll up into courses.
package lessons

import (
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/cache"
	"github.com/trezcool/elimu/core"
)

// Lesson mirrors the backend lesson schema.
type Lesson struct {
	ID        string    `json:"_id"`
	CourseID  string    `json:"courseId"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"videoUrl"`
	Duration  null.Int  `json:"duration,omitempty"` // minutes
	Resources []string  `json:"resources"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLesson contains information needed to create a Lesson.
type NewLesson struct {
	CourseID  string   `json:"courseId" validate:"required"`
	Title     string   `json:"title" validate:"required,min=2"`
	VideoURL  string   `json:"videoUrl" validate:"required,url"`
	Duration  null.Int `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Resources []string `json:"resources,omitempty" validate:"omitempty,dive,url"`
	Order     int      `json:"order,omitempty" validate:"omitempty,gte=0"`
}

func (nl *NewLesson) Validate(validate *validator.Validate, translator ut.Translator) error {
	nl.Title = core.CleanString(nl.Title)
	nl.VideoURL = core.CleanString(nl.VideoURL)
	if err := validate.Struct(nl); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

// UpdateLesson defines what may be modified on an existing Lesson.
type UpdateLesson struct {
	ID        string   `json:"-"`
	Title     string   `json:"title,omitempty" validate:"omitempty,min=2"`
	VideoURL  string   `json:"videoUrl,omitempty" validate:"omitempty,url"`
	Duration  null.Int `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Resources []string `json:"resources,omitempty" validate:"omitempty,dive,url"`
	Order     *int     `json:"order,omitempty" validate:"omitempty,gte=0"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate, translator ut.Translator) error {
	ul.Title = core.CleanString(ul.Title)
	ul.VideoURL = core.CleanString(ul.VideoURL)
	if err := validate.Struct(ul); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

var (
	All = api.Query{
		Name:     "lessons.all",
		Provides: []cache.Tag{cache.TagLesson},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/lessons"}, nil
		},
	}

	ByCourse = api.Query{
		Name:     "lessons.byCourse",
		Provides: []cache.Tag{cache.TagLesson},
		Build: func(args interface{}) (api.Descriptor, error) {
			courseID, ok := args.(string)
			if !ok || courseID == "" {
				return api.Descriptor{}, errors.Errorf("lessons.byCourse: course id required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodGet, Path: "/lessons/by-course/" + courseID}, nil
		},
	}

	Create = api.Mutation{
		Name:        "lessons.create",
		Invalidates: []cache.Tag{cache.TagLesson, cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(NewLesson)
			if !ok {
				return api.Descriptor{}, errors.Errorf("lessons.create: unexpected args type %T", args)
			}
			return api.Descriptor{Method: http.MethodPost, Path: "/lessons", Body: in}, nil
		},
	}

	Update = api.Mutation{
		Name:        "lessons.update",
		Invalidates: []cache.Tag{cache.TagLesson, cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(UpdateLesson)
			if !ok {
				return api.Descriptor{}, errors.Errorf("lessons.update: unexpected args type %T", args)
			}
			if in.ID == "" {
				return api.Descriptor{}, errors.New("lessons.update: lesson id required")
			}
			return api.Descriptor{Method: http.MethodPatch, Path: "/lessons/" + in.ID, Body: in}, nil
		},
	}

	Delete = api.Mutation{
		Name:        "lessons.delete",
		Invalidates: []cache.Tag{cache.TagLesson, cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			id, ok := args.(string)
			if !ok || id == "" {
				return api.Descriptor{}, errors.Errorf("lessons.delete: lesson id required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodDelete, Path: "/lessons/" + id}, nil
		},
	}
)
