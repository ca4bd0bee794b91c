// Package natsadapter publishes and consumes calendar lifecycle events over
// NATS JetStream, so API instances reload their in-memory index when the
// refresher worker rewrites the cache file.
package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectCalendarRefreshed carries RefreshedEvent payloads.
const SubjectCalendarRefreshed = "calendar.refresh.years"

// RefreshedEvent is the payload announcing freshly fetched calendar years.
type RefreshedEvent struct {
	Years       []int     `json:"years"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream, and ensures the
// calendar event stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "CALENDAR_EVENTS",
		Subjects:  []string{"calendar.refresh.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishCalendarRefreshed announces that the given years were fetched and
// persisted to the cache file.
func (p *Publisher) PublishCalendarRefreshed(_ context.Context, years []int) error {
	data, err := json.Marshal(RefreshedEvent{Years: years, RefreshedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal refresh event: %w", err)
	}
	if _, err := p.js.Publish(SubjectCalendarRefreshed, data); err != nil {
		return fmt.Errorf("publish refresh event: %w", err)
	}
	return nil
}

// Conn exposes the raw connection, for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
