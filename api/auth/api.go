// Package auth declares the authentication endpoints: login, register,
// logout and the who-am-i query the session gate is built on.
package auth

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/cache"
	"github.com/trezcool/elimu/core"
)

// blockedAccountMessage is the exact message the backend returns for a
// blocked account; the frontend contract matches on it verbatim.
const blockedAccountMessage = "The user has been blocked"

var (
	// Me is the who-am-i query; the current session is just this
	// cache entry.
	Me = api.Query{
		Name:     "auth.me",
		Provides: []cache.Tag{cache.TagUser},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/users/me"}, nil
		},
	}

	Login = api.Mutation{
		Name: "auth.login",
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(LoginInput)
			if !ok {
				return api.Descriptor{}, errors.Errorf("auth.login: unexpected args type %T", args)
			}
			return api.Descriptor{Method: http.MethodPost, Path: "/auth/login", Body: in}, nil
		},
	}

	Register = api.Mutation{
		Name: "auth.register",
		Build: func(args interface{}) (api.Descriptor, error) {
			in, ok := args.(RegisterInput)
			if !ok {
				return api.Descriptor{}, errors.Errorf("auth.register: unexpected args type %T", args)
			}
			return api.Descriptor{Method: http.MethodPost, Path: "/auth/register", Body: in}, nil
		},
	}

	Logout = api.Mutation{
		Name:        "auth.logout",
		Invalidates: []cache.Tag{cache.TagUser},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodPost, Path: "/auth/logout"}, nil
		},
	}
)

// IsBlocked reports whether err is the backend's blocked-account
// rejection. This is a string contract with the backend and must not
// drift.
func IsBlocked(err error) bool {
	apiErr, ok := core.AsAPIError(err)
	return ok && apiErr.Message() == blockedAccountMessage
}
