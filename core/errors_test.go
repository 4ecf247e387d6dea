package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_APIError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "envelope payload",
			err:  NewAPIError(403, []byte(`{"statusCode":403,"success":false,"message":"The user has been blocked"}`)),
			want: "The user has been blocked",
		},
		{
			name: "plain string payload",
			err:  NewAPIError(500, []byte(`"something broke"`)),
			want: "something broke",
		},
		{name: "empty payload", err: NewAPIError(502, nil), want: ""},
		{name: "unintelligible payload", err: NewAPIError(500, []byte(`<html>`)), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Message())
		})
	}
}

func Test_APIError_Error(t *testing.T) {
	assert.Equal(t, "not found", NewAPIError(404, []byte(`{"message":"not found"}`)).Error())
	assert.Equal(t, "404 Not Found", NewAPIError(404, nil).Error())
	assert.Equal(t, "request failed", (&APIError{}).Error())
}

func Test_NewTransportError(t *testing.T) {
	err := NewTransportError(errors.New("connection refused"))
	assert.Equal(t, 0, err.Status)
	assert.Equal(t, "connection refused", err.Message())
}

func Test_AsAPIError(t *testing.T) {
	apiErr := NewAPIError(404, nil)

	// unwraps through pkg/errors wrapping
	got, ok := AsAPIError(errors.Wrap(apiErr, "fetching course"))
	assert.True(t, ok)
	assert.Equal(t, apiErr, got)

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = AsAPIError(nil)
	assert.False(t, ok)
}
