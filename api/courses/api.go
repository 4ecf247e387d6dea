// Package courses declares the course catalog endpoints.
package courses

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/cache"
)

var (
	All = api.Query{
		Name:     "courses.all",
		Provides: []cache.Tag{cache.TagCourse},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/course"}, nil
		},
	}

	BySlug = api.Query{
		Name:     "courses.bySlug",
		Provides: []cache.Tag{cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			slug, ok := args.(string)
			if !ok || slug == "" {
				return api.Descriptor{}, errors.Errorf("courses.bySlug: slug required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodGet, Path: "/course/" + slug}, nil
		},
	}

	Create = api.Mutation{
		Name:        "courses.create",
		Invalidates: []cache.Tag{cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(NewCourse)
			if !ok {
				return api.Descriptor{}, errors.Errorf("courses.create: unexpected args type %T", args)
			}
			return api.Descriptor{Method: http.MethodPost, Path: "/course", Body: in}, nil
		},
	}

	Update = api.Mutation{
		Name:        "courses.update",
		Invalidates: []cache.Tag{cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(UpdateCourse)
			if !ok {
				return api.Descriptor{}, errors.Errorf("courses.update: unexpected args type %T", args)
			}
			if in.ID == "" {
				return api.Descriptor{}, errors.New("courses.update: course id required")
			}
			return api.Descriptor{Method: http.MethodPatch, Path: "/course/" + in.ID, Body: in}, nil
		},
	}

	Delete = api.Mutation{
		Name:        "courses.delete",
		Invalidates: []cache.Tag{cache.TagCourse},
		Build: func(args interface{}) (api.Descriptor, error) {
			id, ok := args.(string)
			if !ok || id == "" {
				return api.Descriptor{}, errors.Errorf("courses.delete: course id required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodDelete, Path: "/course/" + id}, nil
		},
	}
)
