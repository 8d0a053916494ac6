package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// Subjects.
const (
	SubjectReportCreated = "barangay.reports.created"
	SubjectReportStatus  = "barangay.reports.status"
	SubjectFixPrefix     = "barangay.fix"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      "BARANGAY_REPORTS",
			Subjects:  []string{"barangay.reports.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; update it instead.
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

func (p *Publisher) PublishReportCreated(ctx context.Context, r *domain.Report) error {
	return p.publish(ctx, SubjectReportCreated, r)
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, r *domain.Report) error {
	return p.publish(ctx, SubjectReportStatus, r)
}

func (p *Publisher) publish(ctx context.Context, subject string, r *domain.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	// Dedup on the JetStream side if the same event is retried.
	_, err = p.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(subject+":"+r.ID+":"+string(r.Status)))
	return err
}

// Conn exposes the underlying connection for core NATS subscriptions.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection with reconnects enabled.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
