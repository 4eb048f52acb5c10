// Package events publishes annotation lifecycle events to NATS. The bus is
// optional infrastructure: a deployment without NATS runs fine, and a publish
// failure never fails the request that triggered it.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectRecorded carries one event per persisted annotation record.
	SubjectRecorded = "gloss.annotation.recorded"
	// SubjectJudged carries one event per correctness judgment.
	SubjectJudged = "gloss.annotation.judged"
)

// Recorded is emitted after an annotation record is durably created.
type Recorded struct {
	EventID          string `json:"event_id"`
	RecordID         int64  `json:"record_id"`
	Domain           string `json:"domain"`
	Origin           string `json:"origin"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	RecordedAt       string `json:"recorded_at"`
}

// Judged is emitted after a record's correctness result is set.
type Judged struct {
	EventID  string `json:"event_id"`
	RecordID int64  `json:"record_id"`
	Result   bool   `json:"result"`
	JudgedAt string `json:"judged_at"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

func (p *Publisher) Close() {
	p.conn.Close()
}

// Timestamp formats event times the way every subject expects them.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
