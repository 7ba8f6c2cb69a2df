package natsadapter

import (
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Subscriber relays favorites events to live sessions over core NATS.
// JetStream publishes are delivered to plain subscribers as well.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber opens a dedicated connection for relaying.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Subscriber{conn: conn}, nil
}

// SubscribeVisitor calls fn with every favorites event of one visitor until the
// returned function is called.
func (s *Subscriber) SubscribeVisitor(visitorID string, fn func(data []byte)) (func(), error) {
	if visitorID == "" || strings.ContainsAny(visitorID, ".*> ") {
		return nil, fmt.Errorf("invalid visitor id %q", visitorID)
	}
	sub, err := s.conn.Subscribe(FavoritesSubjectPrefix+visitorID, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe favorites %s: %w", visitorID, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Connected reports whether the connection is up.
func (s *Subscriber) Connected() bool {
	return s.conn.IsConnected()
}

// Close drains and closes the connection.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
