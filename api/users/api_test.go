package users_test

import (
	"context"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/elimu/api/users"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/tests"
)

func Test_All_requiresAdmin(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	testutil.SeedStudent(backend)

	// anonymous
	err := client.Fetch(context.Background(), users.All, nil, nil)
	if apiErr, ok := core.AsAPIError(err); !ok || apiErr.Status != 401 {
		t.Errorf("Fetch() error = %v, want a 401", err)
	}

	// plain user
	testutil.Login(t, client, "student@elearning.com", "Sup3r-pass!")
	client.Reset()
	err = client.Fetch(context.Background(), users.All, nil, nil)
	if apiErr, ok := core.AsAPIError(err); !ok || apiErr.Status != 403 {
		t.Errorf("Fetch() error = %v, want a 403", err)
	}
}

func Test_All(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	admin := testutil.SeedAdmin(backend)
	student := testutil.SeedStudent(backend)
	testutil.Login(t, client, admin.Email, "Sup3r-pass!")

	var list []users.User
	if err := client.Fetch(context.Background(), users.All, nil, &list); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != admin.ID || list[1].ID != student.ID {
		t.Errorf("Fetch() = %+v", list)
	}
}

func Test_ByID(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	admin := testutil.SeedAdmin(backend)
	student := testutil.SeedStudent(backend)
	testutil.Login(t, client, admin.Email, "Sup3r-pass!")

	var usr users.User
	if err := client.Fetch(context.Background(), users.ByID, student.ID, &usr); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if usr.ID != student.ID || usr.Email != student.Email {
		t.Errorf("Fetch() = %+v", usr)
	}

	err := client.Fetch(context.Background(), users.ByID, "nope", nil)
	if apiErr, ok := core.AsAPIError(err); !ok || apiErr.Status != 404 {
		t.Errorf("Fetch() error = %v, want a 404", err)
	}
}

func Test_Update(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	student := testutil.SeedStudent(backend)
	testutil.Login(t, client, student.Email, "Sup3r-pass!")

	in := users.UpdateInput{
		ID: student.ID,
		Fields: users.UpdateFields{
			Name:  "Renamed",
			Phone: null.StringFrom("01712345678"),
		},
	}
	var usr users.User
	if _, err := client.Mutate(context.Background(), users.Update, in, &usr); err != nil {
		t.Fatalf("Mutate() failed: %v", err)
	}
	if usr.Name != "Renamed" || usr.Phone.String != "01712345678" {
		t.Errorf("Mutate() = %+v", usr)
	}

	// a plain user cannot touch someone else's profile
	other := testutil.SeedAdmin(backend)
	in.ID = other.ID
	_, err := client.Mutate(context.Background(), users.Update, in, nil)
	if apiErr, ok := core.AsAPIError(err); !ok || apiErr.Status != 403 {
		t.Errorf("Mutate() error = %v, want a 403", err)
	}
}

func Test_Block_invalidatesUserQueries(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	admin := testutil.SeedAdmin(backend)
	student := testutil.SeedStudent(backend)
	testutil.Login(t, client, admin.Email, "Sup3r-pass!")
	backend.ResetHits()

	ref, err := client.Subscribe(users.All, nil)
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	defer ref.Close()
	if _, err := ref.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	var blocked users.User
	if _, err := client.Mutate(context.Background(), users.Block, student.ID, &blocked); err != nil {
		t.Fatalf("Mutate(Block) failed: %v", err)
	}
	if !blocked.IsBlocked {
		t.Error("IsBlocked = false after block")
	}

	if _, err := ref.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() after block failed: %v", err)
	}
	var list []users.User
	if err := ref.Decode(&list); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if !list[1].IsBlocked {
		t.Error("refetched list does not reflect the block")
	}
	if hits := backend.Hits("GET /users/all-users"); hits != 2 {
		t.Errorf("backend hit %d times, want the initial fetch plus one refetch", hits)
	}

	var unblocked users.User
	if _, err := client.Mutate(context.Background(), users.Unblock, student.ID, &unblocked); err != nil {
		t.Fatalf("Mutate(Unblock) failed: %v", err)
	}
	if unblocked.IsBlocked {
		t.Error("IsBlocked = true after unblock")
	}
}
