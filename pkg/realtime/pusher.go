package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Event is the payload pushed to a live connection.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Pusher delivers an event to a live-connection address. Delivery is
// fire-and-forget: callers must not depend on it succeeding.
type Pusher interface {
	Push(ctx context.Context, address, eventType string, data any) error
}

type redisPusher struct {
	client *redis.Client
}

// NewRedisPusher returns a Pusher that publishes to the Redis channel named
// by the address. The websocket handler for that address subscribes to the
// same channel and forwards payloads to the socket.
func NewRedisPusher(client *redis.Client) Pusher {
	return &redisPusher{client: client}
}

func (p *redisPusher) Push(ctx context.Context, address, eventType string, data any) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, address, payload).Err()
}
