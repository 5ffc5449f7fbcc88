package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ananyev/adkchat/internal/config"
	"github.com/ananyev/adkchat/internal/domain"
)

// transcriptRecord is one NDJSON line in the transcript log.
type transcriptRecord struct {
	Timestamp string `json:"ts"`
	TurnID    string `json:"turn_id"`
	Speaker   string `json:"speaker"`
	Content   string `json:"content"`
	ChartID   string `json:"chart_id,omitempty"`
	Error     bool   `json:"error,omitempty"`
}

// TranscriptLogger appends chat turns to an NDJSON file through a bounded
// async queue so logging never blocks a query cycle. When over capacity,
// records are dropped, not queued.
type TranscriptLogger struct {
	enabled bool
	queue   chan transcriptRecord
	done    chan struct{}
	file    *os.File
	logger  *slog.Logger
}

// NewTranscriptLogger opens the log file and starts the writer goroutine.
// A disabled config returns a logger whose Log is a no-op.
func NewTranscriptLogger(cfg config.TranscriptLogConfig, logger *slog.Logger) (*TranscriptLogger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return &TranscriptLogger{logger: logger}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("create transcript log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open transcript log: %w", err)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	l := &TranscriptLogger{
		enabled: true,
		queue:   make(chan transcriptRecord, queueSize),
		done:    make(chan struct{}),
		file:    file,
		logger:  logger,
	}
	go l.writeLoop()
	return l, nil
}

// Log enqueues one turn for writing.
func (l *TranscriptLogger) Log(turn domain.ChatTurn) {
	if !l.enabled {
		return
	}
	record := transcriptRecord{
		Timestamp: turn.CreatedAt.UTC().Format(time.RFC3339),
		TurnID:    turn.ID,
		Speaker:   string(turn.Speaker),
		Content:   turn.Content,
		ChartID:   turn.ChartID,
		Error:     turn.Error,
	}
	select {
	case l.queue <- record:
	default:
		l.logger.Warn("transcript log queue full, dropping record", "turn_id", turn.ID)
	}
}

func (l *TranscriptLogger) writeLoop() {
	defer close(l.done)
	enc := json.NewEncoder(l.file)
	for record := range l.queue {
		if err := enc.Encode(record); err != nil {
			l.logger.Error("failed to write transcript record", "turn_id", record.TurnID, "error", err)
		}
	}
}

// Close drains the queue and closes the log file.
func (l *TranscriptLogger) Close() error {
	if !l.enabled {
		return nil
	}
	close(l.queue)
	<-l.done
	return l.file.Close()
}
