// Package redisbus relays status events between server instances over Redis
// pub/sub, so observers connected to any instance see every transition.
package redisbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultChannel = "shipment-status"

var ErrSubscriptionClosed = errors.New("redis subscription closed")

type Config struct {
	Addr        string
	Channel     string
	DialTimeout time.Duration
}

// Relay implements ports.StatusRelay.
type Relay struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// New connects to cfg.Addr and verifies the connection with a PING.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Relay, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewWithClient(rdb, cfg.Channel, log), nil
}

// NewWithClient wraps an existing client. An empty channel means DefaultChannel.
func NewWithClient(rdb *goredis.Client, channel string, log *logger.Logger) *Relay {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{
		log:     log.Named("redis-relay").With("channel", channel),
		rdb:     rdb,
		channel: channel,
	}
}

func (r *Relay) Publish(ctx context.Context, msg ports.RelayMessage) error {
	raw, err := encode(msg)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, raw).Err()
}

// Subscribe blocks, calling handle for each valid message, until ctx is done
// (returning nil) or the subscription is closed underneath it.
func (r *Relay) Subscribe(ctx context.Context, handle func(ports.RelayMessage)) error {
	if handle == nil {
		return fmt.Errorf("handle callback required")
	}

	sub := r.rdb.Subscribe(ctx, r.channel)
	defer func() {
		_ = sub.Close()
	}()

	// make sure the subscription is live before reporting readiness
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis subscribe: %w", err)
	}
	r.log.Info("relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok || m == nil {
				return ErrSubscriptionClosed
			}
			msg, err := decode([]byte(m.Payload))
			if err != nil {
				r.log.Warn("bad relay payload", "error", err)
				continue
			}
			handle(msg)
		}
	}
}

func (r *Relay) Close() error {
	return r.rdb.Close()
}
