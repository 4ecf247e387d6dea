// Package session derives the authenticated identity from the who-am-i
// query and gates role-restricted surfaces on it. The session is never
// stored on its own: it is just the USER-tagged cache entry, refreshed
// through the same invalidation machinery as everything else.
package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/api/auth"
	"github.com/trezcool/elimu/api/users"
	"github.com/trezcool/elimu/core"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("permission denied")

	// ErrAccountBlocked routes blocked accounts to the account-status
	// view instead of a plain failure toast.
	ErrAccountBlocked = errors.New("account blocked")
)

type (
	Session struct {
		User users.User
	}

	Gate struct {
		client *api.Client
	}
)

func NewGate(client *api.Client) *Gate {
	return &Gate{client: client}
}

func (s Session) Role() string { return s.User.Role }

// Current resolves the current session through the cached who-am-i
// query. An unauthenticated backend answer maps to ErrUnauthenticated.
func (g *Gate) Current(ctx context.Context) (Session, error) {
	var usr users.User
	if err := g.client.Fetch(ctx, auth.Me, nil, &usr); err != nil {
		if apiErr, ok := core.AsAPIError(err); ok && (apiErr.Status == 401 || apiErr.Status == 403) {
			return Session{}, ErrUnauthenticated
		}
		return Session{}, err
	}
	return Session{User: usr}, nil
}

// RequireRole renders-or-redirects: the caller proceeds only when the
// current session holds the required role.
func (g *Gate) RequireRole(ctx context.Context, role string) (Session, error) {
	sess, err := g.Current(ctx)
	if err != nil {
		return Session{}, err
	}
	if sess.Role() != role {
		return Session{}, ErrForbidden
	}
	return sess, nil
}

// Login authenticates and primes the session. A blocked account is
// distinguished from plain bad credentials so the caller can route to
// the account-status view.
func (g *Gate) Login(ctx context.Context, in auth.LoginInput) (*api.Response, error) {
	resp, err := g.client.Mutate(ctx, auth.Login, in, nil)
	if err != nil {
		if auth.IsBlocked(err) {
			return nil, errors.Wrap(ErrAccountBlocked, err.Error())
		}
		return nil, err
	}
	// the session cookie is set; who-am-i must not serve a stale identity
	g.client.Invalidate(auth.Me.Provides...)
	return resp, nil
}

// Logout ends the session server-side, then resets the entire cache so
// no authenticated data survives into the next session.
func (g *Gate) Logout(ctx context.Context) error {
	if _, err := g.client.Mutate(ctx, auth.Logout, nil, nil); err != nil {
		return err
	}
	g.client.Reset()
	return nil
}
