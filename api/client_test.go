package api_test

import (
	"context"
	"io/ioutil"
	"log"
	"sync"
	"testing"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/api/categories"
	"github.com/trezcool/elimu/api/courses"
	"github.com/trezcool/elimu/cache"
	"github.com/trezcool/elimu/core"
	logsvc "github.com/trezcool/elimu/services/logger"
	"github.com/trezcool/elimu/tests"
)

func testLogger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
}

func Test_Client_concurrentFetchesShareOneCall(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	backend.DB.AddCategory("Programming")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var list []categories.Category
			if err := client.Fetch(context.Background(), categories.List, nil, &list); err != nil {
				t.Errorf("Fetch() failed: %v", err)
				return
			}
			if len(list) != 1 || list[0].Name != "Programming" {
				t.Errorf("Fetch() = %+v", list)
			}
		}()
	}
	wg.Wait()

	if hits := backend.Hits("GET /category"); hits != 1 {
		t.Errorf("backend hit %d times, want 1", hits)
	}
}

func Test_Client_mutationInvalidatesSubscribers(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	testutil.SeedAdmin(backend)
	testutil.Login(t, client, "admin@elearning.com", "Sup3r-pass!")
	backend.ResetHits()

	ref, err := client.Subscribe(categories.List, nil)
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	defer ref.Close()
	if _, err := ref.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	var created categories.Category
	in := categories.NewCategory{Name: "Web Development"}
	if _, err := client.Mutate(context.Background(), categories.Add, in, &created); err != nil {
		t.Fatalf("Mutate() failed: %v", err)
	}
	if created.Slug != "web-development" {
		t.Errorf("created.Slug = %q, want the server-assigned slug", created.Slug)
	}

	if _, err := ref.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() after invalidation failed: %v", err)
	}
	var list []categories.Category
	if err := ref.Decode(&list); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("refetched list = %+v, want the new category", list)
	}
	if hits := backend.Hits("GET /category"); hits != 2 {
		t.Errorf("backend hit %d times, want the initial fetch plus one refetch", hits)
	}
}

func Test_Client_failedMutationDoesNotInvalidate(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	testutil.SeedAdmin(backend)
	testutil.Login(t, client, "admin@elearning.com", "Sup3r-pass!")
	backend.ResetHits()

	ref, err := client.Subscribe(categories.List, nil)
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	defer ref.Close()
	if _, err := ref.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	_, err = client.Mutate(context.Background(), categories.Delete, "nope", nil)
	apiErr, ok := core.AsAPIError(err)
	if !ok || apiErr.Status != 404 {
		t.Fatalf("Mutate() error = %v, want a 404", err)
	}

	if hits := backend.Hits("GET /category"); hits != 1 {
		t.Errorf("backend hit %d times after a failed mutation, want 1", hits)
	}
}

func Test_Client_failedQueryCachedUntilInvalidated(t *testing.T) {
	client, backend := testutil.NewTestClient(t)

	ref, err := client.Subscribe(courses.BySlug, "missing-course")
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	defer ref.Close()

	res, err := ref.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if !res.IsError() {
		t.Fatalf("Result().State = %v, want Error", res.State)
	}
	apiErr, ok := core.AsAPIError(res.Err)
	if !ok || apiErr.Status != 404 {
		t.Fatalf("cached error = %v, want a 404", res.Err)
	}

	// the failure is served as-is to later readers
	ref2, err := client.Subscribe(courses.BySlug, "missing-course")
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	defer ref2.Close()
	if !ref2.IsError() {
		t.Error("second subscriber did not see the cached failure")
	}
	if hits := backend.Hits("GET /course/:id"); hits != 1 {
		t.Errorf("backend hit %d times, want 1", hits)
	}

	// invalidation retries it
	client.Invalidate(cache.TagCourse)
	if _, err := ref.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() after invalidation failed: %v", err)
	}
	if hits := backend.Hits("GET /course/:id"); hits != 2 {
		t.Errorf("backend hit %d times after invalidation, want 2", hits)
	}
}

func Test_Client_fetchByArgsKeysSeparately(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	cat := backend.DB.AddCategory("Programming")
	backend.DB.AddCourse("Go Basics", courses.LevelBeginner, cat.ID, 50, 0)
	backend.DB.AddCourse("Go Advanced", courses.LevelAdvanced, cat.ID, 90, 0)

	var basics, advanced courses.Course
	if err := client.Fetch(context.Background(), courses.BySlug, "go-basics", &basics); err != nil {
		t.Fatalf("Fetch(go-basics) failed: %v", err)
	}
	if err := client.Fetch(context.Background(), courses.BySlug, "go-advanced", &advanced); err != nil {
		t.Fatalf("Fetch(go-advanced) failed: %v", err)
	}

	if basics.Title != "Go Basics" || advanced.Title != "Go Advanced" {
		t.Errorf("got %q / %q, distinct args must not share an entry", basics.Title, advanced.Title)
	}
	if hits := backend.Hits("GET /course/:id"); hits != 2 {
		t.Errorf("backend hit %d times, want one per argument set", hits)
	}
}

func Test_Client_resetDropsEverything(t *testing.T) {
	client, backend := testutil.NewTestClient(t)
	backend.DB.AddCategory("Programming")

	var list []categories.Category
	if err := client.Fetch(context.Background(), categories.List, nil, &list); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	client.Reset()

	if err := client.Fetch(context.Background(), categories.List, nil, &list); err != nil {
		t.Fatalf("Fetch() after Reset failed: %v", err)
	}
	if hits := backend.Hits("GET /category"); hits != 2 {
		t.Errorf("backend hit %d times, want a fresh fetch after Reset", hits)
	}
}

func Test_Client_transportErrorHasNoStatus(t *testing.T) {
	conf := &core.Config{
		TestMode: true,
		API:      core.APIConfig{BaseURL: "http://127.0.0.1:1"}, // nothing listens here
	}
	client := api.NewClient(&api.Options{Config: conf, Logger: testLogger()})

	err := client.Fetch(context.Background(), categories.List, nil, nil)
	apiErr, ok := core.AsAPIError(err)
	if !ok {
		t.Fatalf("Fetch() error = %v, want a normalized api error", err)
	}
	if apiErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for a transport failure", apiErr.Status)
	}
}
