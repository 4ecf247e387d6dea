package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/api/auth"
	"github.com/trezcool/elimu/core"
	logsvc "github.com/trezcool/elimu/services/logger"
)

// NewTestClient spins an in-process backend and an api.Client wired to
// it. The grace period is kept short so eviction paths are testable.
func NewTestClient(t *testing.T) (*api.Client, *Backend) {
	t.Helper()

	backend := NewBackend()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	conf := &core.Config{
		AppName:  "Elimu",
		Env:      "TEST",
		TestMode: true,
		API: core.APIConfig{
			BaseURL: server.URL,
			Timeout: 5 * time.Second,
		},
		Cache: core.CacheConfig{
			GracePeriod: 50 * time.Millisecond,
		},
	}
	client := api.NewClient(&api.Options{
		Config: conf,
		Logger: logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0)),
	})
	return client, backend
}

// Login authenticates the client as the given seeded user.
func Login(t *testing.T, client *api.Client, email, pwd string) {
	t.Helper()
	in := auth.LoginInput{Email: email, Password: pwd}
	if _, err := client.Mutate(context.Background(), auth.Login, in, nil); err != nil {
		t.Fatalf("login(%s) failed: %v", email, err)
	}
}

// SeedAdmin and SeedStudent create the two canonical accounts.

func SeedAdmin(b *Backend) *UserRow {
	return b.DB.AddUser("Admin", "admin@elearning.com", "Sup3r-pass!", "admin", false)
}

func SeedStudent(b *Backend) *UserRow {
	return b.DB.AddUser("Student", "student@elearning.com", "Sup3r-pass!", "user", false)
}
