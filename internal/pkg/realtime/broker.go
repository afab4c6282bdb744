package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"wellness_shop/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker 通过 Redis pub/sub 在多实例间扇出事件
type RedisBroker struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBroker(rdb *redis.Client, channel string, hub *Hub) *RedisBroker {
	return &RedisBroker{rdb: rdb, channel: channel, hub: hub}
}

func (b *RedisBroker) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s.%s: %w", evt.Table, evt.Action, err)
	}
	return nil
}

// Run 订阅频道并转发到本地 Hub，阻塞直到 ctx 结束
func (b *RedisBroker) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				logger.Log.Warn("drop malformed realtime event", zap.Error(err))
				continue
			}
			b.hub.Broadcast(evt)
		}
	}
}

var _ Publisher = (*RedisBroker)(nil)
var _ Publisher = (*Hub)(nil)
