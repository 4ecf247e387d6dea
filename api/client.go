// Package api wires the HTTP transport, the endpoint descriptors and
// the cache store into the client the rest of the SDK is built on.
package api

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/cache"
	"github.com/trezcool/elimu/core"
)

var errSubscriptionClosed = errors.New("subscription closed")

type (
	Options struct {
		Config *core.Config
		Logger core.Logger

		// Transport overrides the default HTTP transport; used in tests.
		Transport Transport
	}

	Client struct {
		transport Transport
		store     *cache.Store
		logger    core.Logger
	}
)

func NewClient(opts *Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = NewTransport(opts.Config, opts.Logger)
	}
	return &Client{
		transport: transport,
		store:     cache.NewStore(opts.Config.Cache.GracePeriod),
		logger:    opts.Logger,
	}
}

// Subscribe opens a live subscription on q(args). Concurrent
// subscribers to the same key share one cache entry and at most one
// in-flight request.
func (c *Client) Subscribe(q Query, args interface{}) (*QueryRef, error) {
	key, err := q.Key(args)
	if err != nil {
		return nil, err
	}
	desc, err := q.Build(args)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", q.Name)
	}

	sub := c.store.Subscribe(key, q.Provides, func(ctx context.Context) (json.RawMessage, error) {
		return c.transport.Do(ctx, desc)
	})
	return &QueryRef{sub: sub}, nil
}

// Fetch is a one-shot read through the cache: it subscribes, waits for
// the entry to settle, decodes into out and unsubscribes.
func (c *Client) Fetch(ctx context.Context, q Query, args, out interface{}) error {
	ref, err := c.Subscribe(q, args)
	if err != nil {
		return err
	}
	defer ref.Close()

	if _, err := ref.Wait(ctx); err != nil {
		return err
	}
	return ref.Decode(out)
}

// Mutate executes m(args) and, only if the call succeeds, invalidates
// the mutation's tag set. The response envelope is returned and its
// data payload decoded into out (when non-nil).
func (c *Client) Mutate(ctx context.Context, m Mutation, args, out interface{}) (*Response, error) {
	desc, err := m.Build(args)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", m.Name)
	}

	raw, err := c.transport.Do(ctx, desc)
	if err != nil {
		return nil, err // failed mutations must not invalidate
	}

	var resp Response
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, core.NewTransportError(errors.Wrapf(err, "decoding %s response", m.Name))
		}
	}
	if out != nil {
		if err := DecodeData(raw, out); err != nil {
			return nil, core.NewTransportError(err)
		}
	}

	c.store.Invalidate(m.Invalidates...)
	return &resp, nil
}

// Invalidate force-invalidates the given tags outside any mutation.
func (c *Client) Invalidate(tags ...cache.Tag) {
	c.store.Invalidate(tags...)
}

// Reset drops the entire cache; no data from a previous session
// survives. Used on logout.
func (c *Client) Reset() {
	c.store.Reset()
}

// QueryRef is a live handle on a cached query; it is the Go shape of
// the {data, isLoading, isError} contract exposed to consumers.
type QueryRef struct {
	sub *cache.Subscription
}

func (r *QueryRef) Result() cache.Result     { return r.sub.Result() }
func (r *QueryRef) IsLoading() bool          { return r.sub.Result().IsLoading() }
func (r *QueryRef) IsError() bool            { return r.sub.Result().IsError() }
func (r *QueryRef) Updates() <-chan struct{} { return r.sub.Updates() }
func (r *QueryRef) Refetch()                 { r.sub.Refetch() }
func (r *QueryRef) Close()                   { r.sub.Close() }

// Decode decodes the current success payload into out. A loading entry
// or a cached failure is returned as an error instead.
func (r *QueryRef) Decode(out interface{}) error {
	res := r.sub.Result()
	switch res.State {
	case cache.Success:
		return DecodeData(res.Data, out)
	case cache.Error:
		return res.Err
	default:
		return errors.New("query has not resolved yet")
	}
}

// Wait blocks until the entry settles (success or error) or ctx is
// done. The settled snapshot is returned; a cached failure is not an
// error here, read it off the Result.
func (r *QueryRef) Wait(ctx context.Context) (cache.Result, error) {
	for {
		res := r.sub.Result()
		if !res.IsLoading() {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case _, ok := <-r.sub.Updates():
			if !ok {
				return r.sub.Result(), errSubscriptionClosed
			}
		}
	}
}
