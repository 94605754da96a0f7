package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Sink receives the events of one subscriber, typically a websocket connection.
type Sink interface {
	Send(ev Event) error
}

// Session is one subscriber's view of a branch channel. It owns its Redis
// subscription and releases it when Run returns.
type Session struct {
	sub     *redis.PubSub
	channel string
}

// Subscribe opens the subscription and waits for Redis to confirm it, so
// events published after Subscribe returns are delivered.
func Subscribe(ctx context.Context, rdb *redis.Client, channel string) (*Session, error) {
	sub := rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return &Session{sub: sub, channel: channel}, nil
}

// Run forwards events to sink until ctx is done, the sink fails, or the
// subscription is closed. Malformed messages are skipped.
func (s *Session) Run(ctx context.Context, sink Sink) error {
	defer s.Close()
	ch := s.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("notify: drop malformed message on %s: %v", s.channel, err)
				continue
			}
			if err := sink.Send(ev); err != nil {
				return err
			}
		}
	}
}

func (s *Session) Close() error { return s.sub.Close() }
