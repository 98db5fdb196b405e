package pubsub

import (
	"context"
	"fmt"

	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

type PubSub interface {
	// Subscribe blocks delivering messages to handler until Close is called
	// or the subscription fails. onStart runs once the channel is
	// subscribed.
	Subscribe(channel string, handler PubSubHandler, onStart func() error) error
	Publish(channel string, message []byte) error
	Check() error
	Close() error
}

type PubSubHandler func(ctx context.Context, message []byte)

func NewPubSub(cfg config.PubSub) (PubSub, error) {
	c := config.Redis{}
	switch cfg.Adapter {
	case "redis", "goredis":
		if err := mapstructure.Decode(cfg.Adapters[cfg.Adapter], &c); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s pubsub configuration", cfg.Adapter)
		}
	default:
		return nil, fmt.Errorf("unknown pubsub adapter '%s'", cfg.Adapter)
	}

	if cfg.Adapter == "goredis" {
		return NewGoRedis(c), nil
	}
	return NewRedis(c)
}
