package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

const (
	// RouteEventsStream holds confirmed, exported and saved route events.
	RouteEventsStream = "ROUTE_EVENTS"
	routeSubjectRoot  = "laufrunde.route."
	planSubjectRoot   = "laufrunde.plan."

	// RouteEventsWildcard matches every route event subject.
	RouteEventsWildcard = routeSubjectRoot + ">"
)

// RouteEventSubject returns the subject a route event is published on.
func RouteEventSubject(t domain.RouteEventType) string {
	return routeSubjectRoot + strings.TrimPrefix(string(t), "route.")
}

// ProgressSubject returns the core NATS subject for a session's attempt reports.
func ProgressSubject(sessionID string) string {
	return planSubjectRoot + sessionID + ".progress"
}

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
			Name:      RouteEventsStream,
			Subjects:  []string{RouteEventsWildcard},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishRouteEvent persists a route event in JetStream.
func (p *Publisher) PublishRouteEvent(ctx context.Context, event *domain.RouteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(RouteEventSubject(event.Type), data, nats.Context(ctx))
	return err
}

// PublishProgress broadcasts an attempt report on core NATS. Progress is
// ephemeral, so it bypasses JetStream.
func (p *Publisher) PublishProgress(ctx context.Context, sessionID string, report domain.AttemptReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return p.conn.Publish(ProgressSubject(sessionID), data)
}

// IsConnected reports the connection state.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
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
