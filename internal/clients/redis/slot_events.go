package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/shiftcheck-backend/internal/logger"
	"github.com/yungbote/shiftcheck-backend/internal/services"
)

// SlotEventBus publishes slot lock/submit events so other app instances and
// open UIs hear about slot ownership changes without polling.
type SlotEventBus interface {
	services.SlotEventPublisher
	Close() error
}

type slotEventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewSlotEventBus(log *logger.Logger) (SlotEventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "slot_events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &slotEventBus{
		log:     log.With("service", "RedisSlotEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *slotEventBus) PublishSlotEvent(ctx context.Context, evt services.SlotEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("slot event bus not initialized")
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *slotEventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
