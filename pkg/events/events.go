package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/booknest/booknest-server/pkg/logger"
	"github.com/nats-io/nats.go"
)

// Subjects published by the auth flow. Downstream consumers (mail digests,
// seller onboarding) subscribe to these; publishing is fire-and-forget.
const (
	SubjectUserRegistered   = "booknest.user.registered"
	SubjectUserLoggedIn     = "booknest.user.logged_in"
	SubjectUserGoogleLinked = "booknest.user.google_linked"
)

type UserEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject)

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher is used when NATS is not configured (tests, local dev).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
