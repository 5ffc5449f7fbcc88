package agent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ananyev/adkchat/internal/domain"
)

// fakeRepo is an in-memory session slot store.
type fakeRepo struct {
	mu        sync.Mutex
	sessionID string
	putCount  int
}

func (f *fakeRepo) GetSessionID(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionID, nil
}

func (f *fakeRepo) PutSessionID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionID = id
	f.putCount++
	return nil
}

func (f *fakeRepo) AppendTranscript(ctx context.Context, turn *domain.ChatTurn) error {
	return nil
}

func (f *fakeRepo) RecentTranscript(ctx context.Context, limit int) ([]*domain.ChatTurn, error) {
	return nil, nil
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// fakeBackend serves the session endpoints with programmable behavior.
type fakeBackend struct {
	validIDs    map[string]bool
	nextID      string
	createFails bool
	createCalls int
}

func (b *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/ping"):
			parts := strings.Split(r.URL.Path, "/")
			id := parts[len(parts)-2]
			if b.validIDs[id] {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case strings.HasSuffix(r.URL.Path, "/sessions"):
			b.createCalls++
			if b.createFails {
				http.Error(w, "no sessions today", http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"id":"` + b.nextID + `"}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestSessionManager(t *testing.T, repo *fakeRepo, backend *fakeBackend) *SessionManager {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		AppName: "analytics",
		UserID:  "u1",
	}, slog.Default())
	return NewSessionManager(repo, client, slog.Default())
}

func TestGetOrCreateCreatesWhenSlotEmpty(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	backend := &fakeBackend{nextID: "fresh-1", validIDs: map[string]bool{}}
	mgr := newTestSessionManager(t, repo, backend)

	id, err := mgr.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if id != "fresh-1" {
		t.Errorf("expected fresh-1, got %q", id)
	}
	if repo.sessionID != "fresh-1" {
		t.Errorf("new id not persisted, slot holds %q", repo.sessionID)
	}
}

func TestGetOrCreateIdempotentWhileValid(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{sessionID: "stored-1"}
	backend := &fakeBackend{validIDs: map[string]bool{"stored-1": true}}
	mgr := newTestSessionManager(t, repo, backend)

	first, err := mgr.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("first GetOrCreate failed: %v", err)
	}
	second, err := mgr.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if first != "stored-1" || second != "stored-1" {
		t.Errorf("expected stored-1 both times, got %q then %q", first, second)
	}
	if backend.createCalls != 0 {
		t.Errorf("no session should have been created, got %d creations", backend.createCalls)
	}
	if repo.putCount != 0 {
		t.Errorf("slot should not have been rewritten, got %d writes", repo.putCount)
	}
}

func TestGetOrCreateReplacesRejectedSession(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{sessionID: "stale-1"}
	backend := &fakeBackend{nextID: "fresh-2", validIDs: map[string]bool{}}
	mgr := newTestSessionManager(t, repo, backend)

	id, err := mgr.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if id != "fresh-2" {
		t.Errorf("expected fresh-2 after rejection, got %q", id)
	}
	if repo.sessionID != "fresh-2" {
		t.Errorf("slot should hold the replacement id, got %q", repo.sessionID)
	}
}

func TestGetOrCreateSessionErrorAfterSecondFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{sessionID: "stale-1"}
	backend := &fakeBackend{createFails: true, validIDs: map[string]bool{}}
	mgr := newTestSessionManager(t, repo, backend)

	_, err := mgr.GetOrCreate(context.Background())
	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("expected SessionError, got %v", err)
	}
	if repo.sessionID != "stale-1" {
		t.Errorf("failed re-creation must not clobber the slot, got %q", repo.sessionID)
	}
}

func TestGetOrCreateConnectivityErrorPropagates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		AppName: "analytics",
		UserID:  "u1",
	}, slog.Default())
	mgr := NewSessionManager(&fakeRepo{sessionID: "stored-1"}, client, slog.Default())

	_, err := mgr.GetOrCreate(context.Background())
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected connectivity error to propagate as BackendError, got %v", err)
	}
}
