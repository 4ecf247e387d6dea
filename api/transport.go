package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

// Transport executes a Descriptor against the backend. It never
// returns a raw transport error: every failure is normalized to a
// *core.APIError (non-2xx status, network unreachability, malformed
// JSON). Exactly one network call per invocation; no retries.
type Transport interface {
	Do(ctx context.Context, desc Descriptor) (json.RawMessage, error)
}

type httpTransport struct {
	base   string
	client *http.Client
	logger core.Logger
	debug  bool
}

var _ Transport = (*httpTransport)(nil)

// NewTransport wraps a single HTTP client configured with a cookie jar:
// the session is carried by server-set cookies, never attached by hand.
func NewTransport(conf *core.Config, logger core.Logger) Transport {
	jar, _ := cookiejar.New(nil)
	return &httpTransport{
		base: strings.TrimRight(conf.API.BaseURL, "/"),
		client: &http.Client{
			Jar:     jar,
			Timeout: conf.API.Timeout,
		},
		logger: logger,
		debug:  conf.Debug,
	}
}

func (t *httpTransport) Do(ctx context.Context, desc Descriptor) (json.RawMessage, error) {
	var body io.Reader
	if desc.Body != nil {
		data, err := json.Marshal(desc.Body)
		if err != nil {
			return nil, core.NewTransportError(errors.Wrap(err, "marshalling request body"))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method, t.base+desc.Path, body)
	if err != nil {
		return nil, core.NewTransportError(err)
	}
	if desc.Params != nil {
		req.URL.RawQuery = desc.Params.Encode()
	}
	for key, vals := range desc.Header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	if t.debug {
		t.logger.Debug("api request", map[string]interface{}{
			"method": desc.Method, "path": desc.Path, "reqID": req.Header.Get("X-Request-ID"),
		})
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.NewTransportError(err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.NewAPIError(resp.StatusCode, data)
	}
	if len(data) > 0 && !json.Valid(data) {
		return nil, core.NewTransportError(errors.Errorf("malformed response body (%d bytes)", len(data)))
	}
	return data, nil
}
