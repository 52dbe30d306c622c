package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/nats-io/nats.go"
)

// Subjects. Map views are ephemeral broadcasts on the core connection;
// search events go through JetStream so late consumers still see them.
const (
	ViewSubjectPrefix  = "trip.view."
	searchEventSubject = "trip.events.search"
)

// Publisher implements ports.ViewPublisher over NATS.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// searchEvent is the JetStream payload for a committed search.
type searchEvent struct {
	SessionID string    `json:"session_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	At        time.Time `json:"at"`
}

// NewPublisher connects to NATS and ensures the trip-events stream exists.
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
		Name:      "TRIP_EVENTS",
		Subjects:  []string{"trip.events.>"},
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

// PublishMapView broadcasts a rendered map frame for one session.
func (p *Publisher) PublishMapView(ctx context.Context, sessionID string, view domain.MapView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return p.conn.Publish(ViewSubjectPrefix+sessionID, data)
}

// PublishSearch records a committed search on the events stream.
func (p *Publisher) PublishSearch(ctx context.Context, sessionID, fromLabel, toLabel string) error {
	data, err := json.Marshal(searchEvent{
		SessionID: sessionID,
		From:      fromLabel,
		To:        toLabel,
		At:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(searchEventSubject, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
