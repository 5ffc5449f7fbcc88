package chat

import (
	"context"
	"html"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ananyev/adkchat/internal/chart"
	"github.com/ananyev/adkchat/internal/domain"
	"github.com/ananyev/adkchat/internal/interpret"
	"github.com/ananyev/adkchat/internal/store"
)

// noAnswerNotice is shown when the backend replies without any root agent
// text parts.
const noAnswerNotice = "<i>No response from the agent</i>"

// Backend issues one query against the analytics agent.
type Backend interface {
	Query(ctx context.Context, sessionID, text string) (string, error)
}

// Sessions supplies a backend-accepted session id.
type Sessions interface {
	GetOrCreate(ctx context.Context) (string, error)
}

// Service runs the full query cycle: session -> backend query -> response
// interpretation -> chart rendering -> history append. Every failure along
// the way becomes a visible chat turn; none aborts the process.
type Service struct {
	sessions   Sessions
	backend    Backend
	history    *History
	charts     *chart.ArtifactCache
	repo       store.Repository
	transcript *TranscriptLogger
	events     chan<- domain.ChatTurn
	logger     *slog.Logger
}

// NewService wires the query cycle. transcript and events may be nil.
func NewService(sessions Sessions, backend Backend, history *History, charts *chart.ArtifactCache, repo store.Repository, transcript *TranscriptLogger, events chan<- domain.ChatTurn, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:   sessions,
		backend:    backend,
		history:    history,
		charts:     charts,
		repo:       repo,
		transcript: transcript,
		events:     events,
		logger:     logger,
	}
}

// History returns the underlying chat history.
func (s *Service) History() *History {
	return s.history
}

// Submit runs one query cycle for the user's message and returns the turns
// appended to the history: the user turn and the reply turn.
func (s *Service) Submit(ctx context.Context, message string) []domain.ChatTurn {
	userTurn := s.newTurn(domain.SpeakerUser, html.EscapeString(message))
	s.record(ctx, userTurn)

	reply := s.runCycle(ctx, message)
	s.record(ctx, reply)

	return []domain.ChatTurn{userTurn, reply}
}

func (s *Service) runCycle(ctx context.Context, message string) domain.ChatTurn {
	sessionID, err := s.sessions.GetOrCreate(ctx)
	if err != nil {
		s.logger.Error("session bootstrap failed", "error", err)
		turn := s.newTurn(domain.SpeakerSystem, "Error: "+html.EscapeString(err.Error()))
		turn.Error = true
		return turn
	}

	raw, err := s.backend.Query(ctx, sessionID, message)
	if err != nil {
		s.logger.Error("backend query failed", "session_id", sessionID, "error", err)
		turn := s.newTurn(domain.SpeakerAgent, "Error: "+html.EscapeString(err.Error()))
		turn.Error = true
		return turn
	}

	result := interpret.Interpret(raw)

	display := result.DisplayHTML
	if display == "" {
		display = noAnswerNotice
	}
	turn := s.newTurn(domain.SpeakerAgent, display)

	if result.Graph != nil {
		png, err := chart.Render(*result.Graph)
		if err != nil {
			// Chart panel stays hidden; the text still renders.
			s.logger.Warn("chart render failed", "error", err)
		} else {
			turn.ChartID = s.charts.Put(png)
		}
	}

	return turn
}

func (s *Service) newTurn(speaker domain.Speaker, content string) domain.ChatTurn {
	return domain.ChatTurn{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// record appends the turn everywhere it belongs: the in-memory history, the
// durable transcript, the NDJSON log, and the live events channel. Only the
// in-memory append is load-bearing; the rest are best-effort.
func (s *Service) record(ctx context.Context, turn domain.ChatTurn) {
	s.history.Append(turn)

	if s.repo != nil {
		if err := s.repo.AppendTranscript(ctx, &turn); err != nil {
			s.logger.Warn("failed to persist transcript turn", "turn_id", turn.ID, "error", err)
		}
	}
	if s.transcript != nil {
		s.transcript.Log(turn)
	}
	if s.events != nil {
		select {
		case s.events <- turn:
		default:
			s.logger.Debug("events channel full, dropping turn broadcast", "turn_id", turn.ID)
		}
	}
}
