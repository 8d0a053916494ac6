package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// Subscriber consumes report events from JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and makes sure the report stream exists.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeReportsCreated delivers every new report to handler. Messages
// are redelivered up to three times when handler fails.
func (s *Subscriber) SubscribeReportsCreated(ctx context.Context, handler func(ctx context.Context, r *domain.Report) error) error {
	sub, err := s.js.Subscribe(SubjectReportCreated, func(msg *nats.Msg) {
		var r domain.Report
		if err := json.Unmarshal(msg.Data, &r); err != nil {
			// Poison message; redelivery will not help.
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &r); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("report-triage"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
