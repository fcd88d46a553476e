package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ashureev/taskboard/internal/buildinfo"
	"github.com/ashureev/taskboard/internal/cli/config"
	"github.com/ashureev/taskboard/internal/session"
	"github.com/ashureev/taskboard/internal/store"
)

// mockServer is a fake backend routing by method and path prefix.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     map[string]int
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
		hits:     make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		var match string
		for pattern := range m.handlers {
			method, prefix, _ := strings.Cut(pattern, " ")
			if method == r.Method && strings.HasPrefix(r.URL.Path, prefix) && len(pattern) > len(match) {
				match = pattern
			}
		}
		handler := m.handlers[match]
		if match != "" {
			m.hits[match]++
		}
		m.mu.Unlock()

		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// handle registers a handler for "METHOD /path-prefix".
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[pattern] = handler
}

func (m *mockServer) count(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[pattern]
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"message": message})
}

// meHandler answers the identity call for the given role.
func meHandler(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			errorResponse(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"user": map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com", "role": role},
		})
	}
}

type harness struct {
	server *mockServer
	kv     store.KV
	out    bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{server: newMockServer(t), kv: store.NewMemory()}
}

// signedIn stores a token the mock backend accepts for role.
func (h *harness) signedIn(t *testing.T, role string) {
	t.Helper()
	h.server.handle("GET /api/auth/me", meHandler(role))
	if err := h.kv.Set(context.Background(), session.TokenKey, "tok"); err != nil {
		t.Fatal(err)
	}
}

// run executes taskctl with args against a fresh runtime over the shared store.
func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	cfg := &config.Config{
		Origin:    "http://localhost:3000",
		APIURL:    h.server.URL,
		SessionDB: "unused",
		Output:    "table",
		Timeout:   5 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt, err := newRuntime(cfg, h.kv, logger, buildinfo.Development)
	if err != nil {
		t.Fatal(err)
	}

	h.out.Reset()
	app := App(WithRuntime(rt))
	app.Writer = &h.out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app.Run(append([]string{"taskctl"}, args...))
}
