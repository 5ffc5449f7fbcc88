// Package domain contains core domain types for the chat client.
package domain

import (
	"time"
)

// Speaker identifies who produced a chat turn.
type Speaker string

const (
	// SpeakerUser is a turn typed by the user.
	SpeakerUser Speaker = "user"
	// SpeakerAgent is a turn produced by the analytics agent backend.
	SpeakerAgent Speaker = "agent"
	// SpeakerSystem is a turn produced locally (session failures etc).
	SpeakerSystem Speaker = "system"
)

// ChatTurn is one message in the conversation, in display order.
// Content is HTML for agent turns and escaped plain text for user turns.
type ChatTurn struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	ChartID   string    `json:"chart_id,omitempty"`
	Error     bool      `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasChart returns true if the turn carries a chart artifact reference.
func (t *ChatTurn) HasChart() bool {
	return t.ChartID != ""
}
