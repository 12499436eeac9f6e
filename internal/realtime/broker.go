// Package realtime fans chat messages out to connected clients through Redis
// pub/sub, one channel per project.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/model"
)

// Broker publishes and subscribes to per-project message streams.
type Broker interface {
	Publish(ctx context.Context, projectID string, msg *model.Message) error
	Subscribe(ctx context.Context, projectID string) (Subscription, error)
}

// Subscription delivers messages until Close is called or its context ends.
type Subscription interface {
	Messages() <-chan *model.Message
	Close() error
}

// ChannelName is the Redis channel for a project's chat.
func ChannelName(projectID string) string {
	return "project:" + projectID + ":messages"
}

// RedisBroker implements Broker on Redis pub/sub.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, projectID string, msg *model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("realtime: encode: %w", err)
	}
	return b.rdb.Publish(ctx, ChannelName(projectID), data).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so anything
// published after it returns is delivered.
func (b *RedisBroker) Subscribe(ctx context.Context, projectID string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, ChannelName(projectID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("realtime: subscribe: %w", err)
	}

	s := &redisSubscription{
		ps:   ps,
		out:  make(chan *model.Message, 16),
		done: make(chan struct{}),
	}
	go s.run(ctx)
	return s, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	out  chan *model.Message
	done chan struct{}
	once sync.Once
}

func (s *redisSubscription) Messages() <-chan *model.Message { return s.out }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *redisSubscription) run(ctx context.Context) {
	defer close(s.out)
	in := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		case raw, ok := <-in:
			if !ok {
				return
			}
			var msg model.Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				slog.Warn("realtime: dropping malformed payload", "channel", raw.Channel, "error", err)
				continue
			}
			select {
			case s.out <- &msg:
			case <-ctx.Done():
				_ = s.Close()
				return
			case <-s.done:
				return
			}
		}
	}
}
