package pubsub

import (
	"context"

	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/pubsub/redis"
	log "github.com/sirupsen/logrus"
)

var _ PubSub = (*Redis)(nil)

// Redis is the redigo backed adapter.
type Redis struct {
	config config.Redis
	pubsub *redis.PubSub
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedis(cfg config.Redis) (*Redis, error) {
	p, err := redis.NewPubSub(cfg.Network, cfg.Address, cfg.Password, cfg.DB)
	if err != nil {
		return nil, err
	}
	r := &Redis{config: cfg, pubsub: p}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	return r, nil
}

func (r *Redis) Subscribe(channel string, handler PubSubHandler, onStart func() error) error {
	if onStart == nil {
		onStart = func() error { return nil }
	}
	err := r.pubsub.ListenChannels(r.ctx, onStart,
		func(channel string, message []byte) error {
			log.WithField("channel", channel).Tracef("pubsub message: %s", message)
			handler(r.ctx, message)
			return nil
		},
		channel)
	if r.ctx.Err() != nil {
		return nil
	}
	return err
}

func (r *Redis) Publish(channel string, message []byte) error {
	return r.pubsub.Publish(channel, message)
}

func (r *Redis) Check() error {
	return r.pubsub.Check()
}

func (r *Redis) Close() error {
	r.cancel()
	return nil
}
