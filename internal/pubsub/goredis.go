package pubsub

import (
	"context"
	"time"

	"github.com/mediasfu/recordctl/internal/config"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var _ PubSub = (*GoRedis)(nil)

// GoRedis is the go-redis backed adapter. Unlike the redigo adapter it keeps
// a connection pool for publishing.
type GoRedis struct {
	client *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func NewGoRedis(cfg config.Redis) *GoRedis {
	network := cfg.Network
	if network == "" {
		network = "tcp"
	}
	r := &GoRedis{
		client: redis.NewClient(&redis.Options{
			Network:      network,
			Addr:         cfg.Address,
			Password:     cfg.Password,
			DB:           cfg.DB,
			WriteTimeout: 10 * time.Second,
		}),
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	return r
}

func (r *GoRedis) Subscribe(channel string, handler PubSubHandler, onStart func() error) error {
	sub := r.client.Subscribe(r.ctx, channel)
	defer sub.Close()

	// wait for the subscription confirmation
	if _, err := sub.Receive(r.ctx); err != nil {
		if r.ctx.Err() != nil {
			return nil
		}
		return err
	}
	if onStart != nil {
		if err := onStart(); err != nil {
			return err
		}
	}

	ch := sub.Channel()
	for {
		select {
		case <-r.ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			log.WithField("channel", msg.Channel).Tracef("pubsub message: %s", msg.Payload)
			handler(r.ctx, []byte(msg.Payload))
		}
	}
}

func (r *GoRedis) Publish(channel string, message []byte) error {
	return r.client.Publish(r.ctx, channel, message).Err()
}

func (r *GoRedis) Check() error {
	ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *GoRedis) Close() error {
	r.cancel()
	return r.client.Close()
}
