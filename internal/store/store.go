// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ananyev/adkchat/internal/domain"
)

// Repository defines the interface for persisting the session slot and the
// chat transcript.
type Repository interface {
	// GetSessionID reads the persisted backend session identifier.
	// Returns "" with no error when no session has been stored yet.
	GetSessionID(ctx context.Context) (string, error)

	// PutSessionID overwrites the session slot with a new identifier.
	PutSessionID(ctx context.Context, id string) error

	// AppendTranscript durably records one chat turn.
	AppendTranscript(ctx context.Context, turn *domain.ChatTurn) error

	// RecentTranscript returns up to limit most recent turns, oldest first.
	RecentTranscript(ctx context.Context, limit int) ([]*domain.ChatTurn, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
