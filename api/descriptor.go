package api

import (
	"net/http"
	"net/url"
)

// Descriptor fully describes one request to the backend. It is built
// per call by an endpoint definition and never mutated afterwards.
type Descriptor struct {
	Method string
	Path   string      // joined to the configured base URL
	Body   interface{} // JSON-marshalled request body, if any
	Params url.Values
	Header http.Header
}
