package main

import (
	"errors"
	"testing"

	"github.com/trezcool/elimu/api/auth"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/session"
	"github.com/trezcool/elimu/tests"
)

// errAny marks a table entry where any non-nil error is acceptable.
var errAny = errors.New("any error")

func setup(t *testing.T) (*commandLine, *testutil.Backend) {
	client, backend := testutil.NewTestClient(t)
	testutil.SeedAdmin(backend)
	testutil.SeedStudent(backend)

	validate, translator := core.NewValidator()
	auth.RegisterValidators(validate, translator)

	cli := &commandLine{
		client:     client,
		gate:       session.NewGate(client),
		validate:   validate,
		translator: translator,
	}
	return cli, backend
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	pwd     string
}

func mustLogin(t *testing.T, cli *commandLine, email string) {
	t.Helper()
	readPasswordFunc = func(int) ([]byte, error) { return []byte("Sup3r-pass!"), nil }
	if err := cli.run([]string{"admin", "login", "-email", email}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func Test_commandLine_help(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "login without email", args: []string{"login"}, wantErr: errHelp},
		{name: "addcategory without name", args: []string{"addcategory"}, wantErr: errHelp},
		{name: "delcategory without id", args: []string{"delcategory"}, wantErr: errHelp},
		{name: "blockuser without id", args: []string{"blockuser"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "invalid email", args: []string{"login", "-email", "nope"}, pwd: "whatever", wantErr: errAny},
		{name: "wrong password", args: []string{"login", "-email", "admin@elearning.com"}, pwd: "wrong", wantErr: errAny},
		{name: "ok", args: []string{"login", "-email", "admin@elearning.com"}, pwd: "Sup3r-pass!"},
		{name: "whoami after login", args: []string{"whoami"}},
		{name: "logout", args: []string{"logout"}},
		{name: "whoami after logout", args: []string{"whoami"}, wantErr: session.ErrUnauthenticated},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		readPasswordFunc = func(int) ([]byte, error) { return []byte(tt.pwd), nil }

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch tt.wantErr {
			case nil:
				if err != nil {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			case errAny:
				if err == nil {
					t.Error("cli.run() error = nil, want an error")
				}
			default:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func Test_commandLine_login_blocked(t *testing.T) {
	cli, backend := setup(t)
	backend.DB.AddUser("Blocked", "blocked@elearning.com", "Sup3r-pass!", "user", true)

	readPasswordFunc = func(int) ([]byte, error) { return []byte("Sup3r-pass!"), nil }
	err := cli.run([]string{"admin", "login", "-email", "blocked@elearning.com"})
	if !errors.Is(err, session.ErrAccountBlocked) {
		t.Errorf("cli.run() error = %v, want ErrAccountBlocked", err)
	}
}

func Test_commandLine_categories(t *testing.T) {
	cli, backend := setup(t)
	mustLogin(t, cli, "admin@elearning.com")

	if err := cli.run([]string{"admin", "addcategory", "-name", "Web Development"}); err != nil {
		t.Fatalf("addcategory failed: %v", err)
	}
	if len(backend.DB.Categories) != 1 {
		t.Fatalf("Categories = %d, want 1", len(backend.DB.Categories))
	}
	if err := cli.run([]string{"admin", "categories"}); err != nil {
		t.Fatalf("categories failed: %v", err)
	}

	var id string
	for catID := range backend.DB.Categories {
		id = catID
	}
	if err := cli.run([]string{"admin", "delcategory", "-id", id}); err != nil {
		t.Fatalf("delcategory failed: %v", err)
	}
	if len(backend.DB.Categories) != 0 {
		t.Errorf("Categories = %d after delete, want 0", len(backend.DB.Categories))
	}
}

func Test_commandLine_categories_requiresAdmin(t *testing.T) {
	cli, _ := setup(t)
	mustLogin(t, cli, "student@elearning.com")

	err := cli.run([]string{"admin", "addcategory", "-name", "Web Development"})
	if err != session.ErrForbidden {
		t.Errorf("cli.run() error = %v, want ErrForbidden", err)
	}
}

func Test_commandLine_users(t *testing.T) {
	cli, backend := setup(t)
	mustLogin(t, cli, "admin@elearning.com")

	if err := cli.run([]string{"admin", "users"}); err != nil {
		t.Fatalf("users failed: %v", err)
	}

	if err := cli.run([]string{"admin", "blockuser", "-id", "u2"}); err != nil {
		t.Fatalf("blockuser failed: %v", err)
	}
	if !backend.DB.Users["u2"].IsBlocked {
		t.Error("user not blocked")
	}
	if err := cli.run([]string{"admin", "unblockuser", "-id", "u2"}); err != nil {
		t.Fatalf("unblockuser failed: %v", err)
	}
	if backend.DB.Users["u2"].IsBlocked {
		t.Error("user still blocked")
	}
}
