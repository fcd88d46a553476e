package command

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"

	"github.com/ashureev/taskboard/internal/session"
	"github.com/ashureev/taskboard/internal/store"
)

func exitMessage(t *testing.T, err error) string {
	t.Helper()
	var exit cli.ExitCoder
	if !errors.As(err, &exit) {
		t.Fatalf("expected exit error, got %v", err)
	}
	return exit.Error()
}

func TestSignInStoresToken(t *testing.T) {
	h := newHarness(t)
	h.server.handle("POST /api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ada@example.com" || body["password"] != "pw" {
			errorResponse(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"token": "tok",
			"user":  map[string]string{"id": "u1", "name": "Ada"},
		})
	})

	if err := h.run(t, "signin", "--email", " ada@example.com ", "--password", "pw"); err != nil {
		t.Fatalf("signin: %v", err)
	}
	if got := h.out.String(); got != "Signed in as Ada\n" {
		t.Errorf("output = %q", got)
	}
	if token, err := h.kv.Get(context.Background(), session.TokenKey); err != nil || token != "tok" {
		t.Errorf("stored token = %q, %v", token, err)
	}
}

func TestSignInRejectedShowsBackendMessage(t *testing.T) {
	h := newHarness(t)
	h.server.handle("POST /api/auth/signin", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusUnauthorized, "Invalid credentials")
	})

	err := h.run(t, "signin", "--email", "a@x.io", "--password", "bad")
	if got := exitMessage(t, err); got != "error: Invalid credentials" {
		t.Errorf("message = %q", got)
	}
	if _, err := h.kv.Get(context.Background(), session.TokenKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("token stored after failed sign-in: %v", err)
	}
}

func TestSignUpFallbackMessage(t *testing.T) {
	h := newHarness(t)
	h.server.handle("POST /api/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	err := h.run(t, "signup", "--name", "Ada", "--email", "a@x.io", "--password", "pw")
	if got := exitMessage(t, err); got != "error: Sign up failed" {
		t.Errorf("message = %q", got)
	}
}

func TestSignInWhileSignedInIsRefused(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "user")

	err := h.run(t, "signin", "--email", "a@x.io", "--password", "pw")
	if got := exitMessage(t, err); !strings.Contains(got, "already signed in as Ada") {
		t.Errorf("message = %q", got)
	}
}

func TestStaleTokenIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.server.handle("GET /api/auth/me", meHandler("user"))
	if err := h.kv.Set(context.Background(), session.TokenKey, "stale"); err != nil {
		t.Fatal(err)
	}

	err := h.run(t, "whoami")
	if got := exitMessage(t, err); !strings.Contains(got, "not signed in") {
		t.Errorf("message = %q", got)
	}
	if _, err := h.kv.Get(context.Background(), session.TokenKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("stale token kept: %v", err)
	}
}

func TestWhoAmIJSON(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "admin")

	if err := h.run(t, "--output", "json", "whoami"); err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(h.out.Bytes(), &got); err != nil {
		t.Fatalf("output %q: %v", h.out.String(), err)
	}
	want := map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com", "role": "admin"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("whoami mismatch (-want +got):\n%s", diff)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "user")

	if err := h.run(t, "logout"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.kv.Get(context.Background(), session.TokenKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("token kept after logout: %v", err)
	}
	if err := h.run(t, "tasks", "list"); err == nil {
		t.Error("tasks list succeeded after logout")
	}
}

func TestTasksListClampsPage(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "user")
	var pages []string
	h.server.handle("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("page"))
		jsonResponse(w, http.StatusOK, map[string]any{
			"tasks": []map[string]string{
				{"_id": "t1", "title": "Write docs", "description": "d", "status": "Pending"},
			},
			"totalPages": 2,
		})
	})

	if err := h.run(t, "tasks", "list", "--page", "9"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"9", "2"}, pages); diff != "" {
		t.Errorf("requested pages mismatch (-want +got):\n%s", diff)
	}
	out := h.out.String()
	if !strings.Contains(out, "Write docs") || !strings.Contains(out, "Page 2 of 2") {
		t.Errorf("output = %q", out)
	}
}

func TestTasksCreateValidatesLocally(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "user")
	h.server.handle("POST /api/tasks", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusCreated, map[string]string{"_id": "t1"})
	})

	err := h.run(t, "tasks", "create", "--title", "Write", "--description", "d", "--status", "Done")
	if got := exitMessage(t, err); got != "error: status must be Pending or Completed" {
		t.Errorf("message = %q", got)
	}
	if n := h.server.count("POST /api/tasks"); n != 0 {
		t.Errorf("backend called %d times for invalid input", n)
	}
}

func TestTasksUpdateKeepsOmittedFields(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "user")
	h.server.handle("GET /api/tasks/", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{
			"_id": "t1", "title": "Write", "description": "docs", "status": "Pending",
		})
	})
	var sent map[string]string
	h.server.handle("PUT /api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		jsonResponse(w, http.StatusOK, map[string]string{
			"_id": "t1", "title": sent["title"], "description": sent["description"], "status": sent["status"],
		})
	})

	if err := h.run(t, "tasks", "update", "--status", "Completed", "t1"); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"title": "Write", "description": "docs", "status": "Completed"}
	if diff := cmp.Diff(want, sent); diff != "" {
		t.Errorf("update body mismatch (-want +got):\n%s", diff)
	}
}

func TestTasksDeleteRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "user")
	h.server.handle("DELETE /api/tasks/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	err := h.run(t, "tasks", "delete", "t1")
	if got := exitMessage(t, err); got != "error: only admins can delete tasks" {
		t.Errorf("message = %q", got)
	}
	if n := h.server.count("DELETE /api/tasks/"); n != 0 {
		t.Errorf("backend called %d times for non-admin delete", n)
	}
}

func TestTasksDeleteAsAdmin(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "admin")
	h.server.handle("DELETE /api/tasks/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if err := h.run(t, "tasks", "delete", "t1"); err != nil {
		t.Fatal(err)
	}
	if got := h.out.String(); got != "Task t1 deleted\n" {
		t.Errorf("output = %q", got)
	}
}

func TestTasksGetRequiresID(t *testing.T) {
	h := newHarness(t)
	h.signedIn(t, "user")

	err := h.run(t, "tasks", "get")
	if got := exitMessage(t, err); got != "error: TASK_ID is required" {
		t.Errorf("message = %q", got)
	}
}
