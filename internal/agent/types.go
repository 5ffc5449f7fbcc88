// Package agent talks to the external analytics agent backend.
package agent

// Wire types for the backend's HTTP API. Only the fields this client reads
// or writes are modeled; everything else in the event stream is ignored.

// messagePart is one part of an event content block.
type messagePart struct {
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"`
}

// newMessage is the user message envelope sent to /run.
type newMessage struct {
	Role  string        `json:"role"`
	Parts []messagePart `json:"parts"`
}

// runRequest is the body posted to the backend query endpoint.
type runRequest struct {
	AppName    string     `json:"app_name"`
	UserID     string     `json:"user_id"`
	SessionID  string     `json:"session_id"`
	NewMessage newMessage `json:"new_message"`
}

// runEvent is one entry in the event array the backend returns. Events are
// authored by named agents; only the root agent's text parts are surfaced.
type runEvent struct {
	Author  string `json:"author"`
	Content struct {
		Parts []messagePart `json:"parts"`
	} `json:"content"`
}

// sessionResponse is the body returned by the session creation endpoint.
type sessionResponse struct {
	ID string `json:"id"`
}

const (
	// rootAgentAuthor is the author whose parts form the user-visible answer.
	rootAgentAuthor = "RootAgent"
	// semanticAgentName marks delegated sub-agent parts that must be skipped
	// even when relayed under the root author.
	semanticAgentName = "SemanticAgent"
)
