package api_test

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/core"
)

func newTransport(t *testing.T, handler http.HandlerFunc) api.Transport {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := &core.Config{
		TestMode: true,
		API:      core.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
	}
	return api.NewTransport(conf, testLogger())
}

func Test_Transport_requestShape(t *testing.T) {
	var seen *http.Request
	var seenBody []byte
	transport := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r
		seenBody, _ = ioutil.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`))
	})

	desc := api.Descriptor{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": "awe@test.cd"},
		Params: url.Values{"q": {"go"}},
		Header: http.Header{"X-Custom": {"yes"}},
	}
	raw, err := transport.Do(context.Background(), desc)
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("Do() = %s", raw)
	}

	if seen.URL.Path != "/auth/login" || seen.URL.Query().Get("q") != "go" {
		t.Errorf("request URL = %v", seen.URL)
	}
	if ct := seen.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if seen.Header.Get("X-Custom") != "yes" {
		t.Error("custom header dropped")
	}
	if seen.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
	if string(seenBody) != `{"email":"awe@test.cd"}` {
		t.Errorf("request body = %s", seenBody)
	}
}

func Test_Transport_normalizesFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"statusCode":404,"success":false,"message":"Course not found"}`))
			},
			wantStatus: 404,
			wantMsg:    "Course not found",
		},
		{
			name: "non-json success body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>surprise</html>`))
			},
			wantStatus: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newTransport(t, tt.handler)

			_, err := transport.Do(context.Background(), api.Descriptor{Method: http.MethodGet, Path: "/"})
			apiErr, ok := core.AsAPIError(err)
			if !ok {
				t.Fatalf("Do() error = %v (%T), want *core.APIError", err, err)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.wantStatus)
			}
			if tt.wantMsg != "" && apiErr.Message() != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", apiErr.Message(), tt.wantMsg)
			}
		})
	}
}

func Test_Transport_contextCancellation(t *testing.T) {
	transport := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := transport.Do(ctx, api.Descriptor{Method: http.MethodGet, Path: "/"})
	if apiErr, ok := core.AsAPIError(err); !ok || apiErr.Status != 0 {
		t.Errorf("Do() error = %v, want a normalized transport failure", err)
	}
}
