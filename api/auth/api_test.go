package auth_test

import (
	"context"
	"testing"

	"github.com/trezcool/elimu/api/auth"
	"github.com/trezcool/elimu/api/users"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/tests"
)

func Test_Login(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	testutil.SeedStudent(backend)

	in := auth.LoginInput{Email: "student@elearning.com", Password: "Sup3r-pass!"}
	resp, err := client.Mutate(context.Background(), auth.Login, in, nil)
	if err != nil {
		t.Fatalf("Mutate() failed: %v", err)
	}
	if !resp.Success || resp.Message != "Login successful" {
		t.Errorf("response = %+v", resp)
	}

	// the session cookie is now on the jar
	var me users.User
	if err := client.Fetch(context.Background(), auth.Me, nil, &me); err != nil {
		t.Fatalf("Fetch(Me) failed: %v", err)
	}
	if me.Email != "student@elearning.com" || me.IsAdmin() {
		t.Errorf("me = %+v", me)
	}
}

func Test_Login_badCredentials(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	testutil.SeedStudent(backend)

	in := auth.LoginInput{Email: "student@elearning.com", Password: "wrong"}
	_, err := client.Mutate(context.Background(), auth.Login, in, nil)
	apiErr, ok := core.AsAPIError(err)
	if !ok || apiErr.Status != 400 {
		t.Fatalf("Mutate() error = %v, want a 400", err)
	}
	if apiErr.Message() != "Invalid credentials" {
		t.Errorf("Message() = %q", apiErr.Message())
	}
	if auth.IsBlocked(err) {
		t.Error("IsBlocked() = true for plain bad credentials")
	}
}

func Test_Login_blockedAccount(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	backend.DB.AddUser("Blocked", "blocked@elearning.com", "Sup3r-pass!", "user", true)

	in := auth.LoginInput{Email: "blocked@elearning.com", Password: "Sup3r-pass!"}
	_, err := client.Mutate(context.Background(), auth.Login, in, nil)
	apiErr, ok := core.AsAPIError(err)
	if !ok || apiErr.Status != 403 {
		t.Fatalf("Mutate() error = %v, want a 403", err)
	}
	if apiErr.Message() != testutil.BlockedAccountMessage {
		t.Errorf("Message() = %q, the blocked-account contract must hold verbatim", apiErr.Message())
	}
	if !auth.IsBlocked(err) {
		t.Error("IsBlocked() = false, want true")
	}
}

func Test_Register(t *testing.T) {
	client, backend := testutil.NewTestClient(t)

	in := auth.RegisterInput{
		Name:            "New Comer",
		Email:           "new@elearning.com",
		Phone:           "01712345678",
		Address:         "Dhaka",
		Password:        "Sup3r-pass!",
		PasswordConfirm: "Sup3r-pass!",
	}
	var usr users.User
	resp, err := client.Mutate(context.Background(), auth.Register, in, &usr)
	if err != nil {
		t.Fatalf("Mutate() failed: %v", err)
	}
	if resp.StatusCode != 201 || usr.Email != "new@elearning.com" || usr.Role != users.RoleUser {
		t.Errorf("resp = %+v, usr = %+v", resp, usr)
	}
	if _, found := backend.DB.UserByEmail("new@elearning.com"); !found {
		t.Error("registered user was not persisted")
	}

	// registration does not log in; the account works with the password
	testutil.Login(t, client, "new@elearning.com", "Sup3r-pass!")

	// duplicate email is rejected
	_, err = client.Mutate(context.Background(), auth.Register, in, nil)
	if apiErr, ok := core.AsAPIError(err); !ok || apiErr.Status != 409 {
		t.Errorf("Mutate() error = %v, want a 409", err)
	}
}

func Test_Logout(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	testutil.SeedStudent(backend)
	testutil.Login(t, client, "student@elearning.com", "Sup3r-pass!")

	if _, err := client.Mutate(context.Background(), auth.Logout, nil, nil); err != nil {
		t.Fatalf("Mutate() failed: %v", err)
	}

	// the cookie is gone: who-am-i is rejected
	err := client.Fetch(context.Background(), auth.Me, nil, nil)
	if apiErr, ok := core.AsAPIError(err); !ok || apiErr.Status != 401 {
		t.Errorf("Fetch(Me) error = %v, want a 401", err)
	}
}
