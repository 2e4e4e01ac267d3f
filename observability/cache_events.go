package observability

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisEventSink publishes query:executed/query:stats events to a Redis
// pub/sub channel. The adapter itself never caches (caching is delegated,
// spec.md §1's Non-goals) — this gives the teacher's Redis dependency a
// home as an event sink instead of a query target.
type RedisEventSink struct {
	client  *redis.Client
	channel string
	ctx     context.Context
}

// NewRedisEventSink wires client to publish on channel. Pass a background
// context; Handle is best-effort and never blocks the caller on a failed
// publish.
func NewRedisEventSink(ctx context.Context, client *redis.Client, channel string) *RedisEventSink {
	return &RedisEventSink{client: client, channel: channel, ctx: ctx}
}

func (s *RedisEventSink) Handle(ev Event) {
	if ev.Name != EventQueryExecuted && ev.Name != EventQueryStats {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":  ev.Name,
		"at":     ev.At,
		"fields": ev.Fields,
	})
	if err != nil {
		return
	}
	// Best-effort: a dropped observability event must never fail the
	// triggering database operation.
	_ = s.client.Publish(s.ctx, s.channel, payload).Err()
}
