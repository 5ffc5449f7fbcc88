package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ananyev/adkchat/internal/domain"
)

func TestHubBroadcastsTurns(t *testing.T) {
	t.Parallel()

	hub := NewHub(slog.Default())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	events := make(chan domain.ChatTurn, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go hub.Run(ctx, events)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// Give the server side a moment to register the connection.
	time.Sleep(50 * time.Millisecond)

	events <- domain.ChatTurn{ID: "t1", Speaker: domain.SpeakerAgent, Content: "hello"}

	var got domain.ChatTurn
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.ID != "t1" || got.Content != "hello" {
		t.Errorf("unexpected turn: %+v", got)
	}
}
