package api

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/cache"
)

type (
	// BuildFunc turns endpoint arguments into a request Descriptor.
	BuildFunc func(args interface{}) (Descriptor, error)

	// Query is a read endpoint: cacheable, provides tags.
	Query struct {
		Name     string
		Provides []cache.Tag
		Build    BuildFunc
	}

	// Mutation is a write endpoint: never cached, invalidates tags on
	// success (and only on success).
	Mutation struct {
		Name        string
		Invalidates []cache.Tag
		Build       BuildFunc
	}
)

// Key derives the cache key for this query and the given arguments.
// Two structurally equal argument values yield the same key.
func (q Query) Key(args interface{}) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", errors.Wrapf(err, "serializing %s arguments", q.Name)
	}
	return q.Name + ":" + string(data), nil
}

// Response is the backend's uniform response envelope.
type Response struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// DecodeData unwraps the envelope carried by raw and decodes its data
// payload into out. Bodies without an envelope are decoded directly.
func DecodeData(raw json.RawMessage, out interface{}) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err == nil && len(resp.Data) > 0 {
		return errors.Wrap(json.Unmarshal(resp.Data, out), "decoding response data")
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decoding response")
}
