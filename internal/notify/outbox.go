package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const outboxKey = "notifications:outbox"

// NewRedis dials a Redis client for the outbox. The addr may omit the
// port.
func NewRedis(addr, user, password string) (*redis.Client, func() error) {
	if !strings.Contains(addr, ":") {
		addr = addr + ":6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: user,
		Password: password,
	})
	return client, client.Close
}

// Outbox queues notifications on a Redis list. LPUSH on enqueue, BRPOP in
// the worker, so messages survive a worker restart.
type Outbox struct {
	client *redis.Client
}

func NewOutbox(client *redis.Client) *Outbox {
	return &Outbox{client: client}
}

func (o *Outbox) Enqueue(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := o.client.LPush(ctx, outboxKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// Pop blocks up to timeout waiting for the next queued notification.
// It returns nil without error when the wait times out.
func (o *Outbox) Pop(ctx context.Context, timeout time.Duration) (*Notification, error) {
	res, err := o.client.BRPop(ctx, timeout, outboxKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("pop notification: %w", err)
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("pop notification: unexpected reply of %d elements", len(res))
	}

	var n Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return &n, nil
}
