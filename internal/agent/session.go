package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ananyev/adkchat/internal/store"
)

// SessionManager owns the single persisted backend session. It validates the
// stored id against the backend on every use and re-creates it once when the
// backend rejects it. A second failure surfaces as a SessionError.
type SessionManager struct {
	repo   store.Repository
	client *Client
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSessionManager creates a session manager over the given slot store and
// backend client.
func NewSessionManager(repo store.Repository, client *Client, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{repo: repo, client: client, logger: logger}
}

// GetOrCreate returns a session id the backend currently accepts. While the
// backend keeps the stored id valid, successive calls return the same id.
func (m *SessionManager) GetOrCreate(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.repo.GetSessionID(ctx)
	if err != nil {
		return "", &SessionError{Cause: err}
	}

	if stored != "" {
		valid, err := m.client.ValidateSession(ctx, stored)
		if err != nil {
			// Backend unreachable: connectivity errors propagate, they do
			// not mean the stored id is stale.
			return "", err
		}
		if valid {
			return stored, nil
		}
		m.logger.Info("Stored session rejected by backend, creating a new one", "session_id", stored)
	}

	id, err := m.client.CreateSession(ctx)
	if err != nil {
		return "", &SessionError{Cause: err}
	}

	if err := m.repo.PutSessionID(ctx, id); err != nil {
		return "", &SessionError{Cause: err}
	}
	return id, nil
}
