// Package users declares the user-management endpoints of the admin
// console, plus the User DTO shared with the session gate.
package users

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/cache"
)

var (
	All = api.Query{
		Name:     "users.all",
		Provides: []cache.Tag{cache.TagUser},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/users/all-users"}, nil
		},
	}

	ByID = api.Query{
		Name:     "users.byID",
		Provides: []cache.Tag{cache.TagUser},
		Build: func(args interface{}) (api.Descriptor, error) {
			id, ok := args.(string)
			if !ok || id == "" {
				return api.Descriptor{}, errors.Errorf("users.byID: user id required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodGet, Path: "/users/" + id}, nil
		},
	}

	Update = api.Mutation{
		Name:        "users.update",
		Invalidates: []cache.Tag{cache.TagUser},
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(UpdateInput)
			if !ok {
				return api.Descriptor{}, errors.Errorf("users.update: unexpected args type %T", args)
			}
			if in.ID == "" {
				return api.Descriptor{}, errors.New("users.update: user id required")
			}
			return api.Descriptor{Method: http.MethodPatch, Path: "/users/" + in.ID, Body: in.Fields}, nil
		},
	}

	Block = api.Mutation{
		Name:        "users.block",
		Invalidates: []cache.Tag{cache.TagUser},
		Build: func(args interface{}) (api.Descriptor, error) {
			id, ok := args.(string)
			if !ok || id == "" {
				return api.Descriptor{}, errors.Errorf("users.block: user id required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodPatch, Path: "/users/block/" + id}, nil
		},
	}

	Unblock = api.Mutation{
		Name:        "users.unblock",
		Invalidates: []cache.Tag{cache.TagUser},
		Build: func(args interface{}) (api.Descriptor, error) {
			id, ok := args.(string)
			if !ok || id == "" {
				return api.Descriptor{}, errors.Errorf("users.unblock: user id required, got %T", args)
			}
			return api.Descriptor{Method: http.MethodPatch, Path: "/users/unblock/" + id}, nil
		},
	}
)
