package redis

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
)

// A ping is set to the server with this period to test for the health of
// the connection and server.
const healthCheckPeriod = time.Minute

type PubSub struct {
	network  string
	address  string
	password string
	db       int
}

// NewPubSub checks the server is reachable and returns a client that dials a
// connection per operation.
func NewPubSub(network, address, password string, db int) (*PubSub, error) {
	p := &PubSub{
		network:  network,
		address:  address,
		password: password,
		db:       db,
	}
	conn, err := p.dial()
	if err != nil {
		return nil, err
	}
	return p, conn.Close()
}

func (p *PubSub) dial() (redis.Conn, error) {
	return redis.Dial(p.network, p.address,
		// Read timeout on server should be greater than ping period.
		redis.DialReadTimeout(healthCheckPeriod+10*time.Second),
		redis.DialWriteTimeout(10*time.Second),
		redis.DialPassword(p.password),
		redis.DialDatabase(p.db))
}

func (p *PubSub) ListenChannels(ctx context.Context,
	onStart func() error,
	onMessage func(channel string, data []byte) error,
	channels ...string) error {

	c, err := p.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	psc := redis.PubSubConn{Conn: c}
	if err := psc.Subscribe(redis.Args{}.AddFlat(channels)...); err != nil {
		return err
	}

	done := make(chan error, 1)

	go func() {
		for {
			switch n := psc.Receive().(type) {
			case error:
				done <- n
				return
			case redis.Message:
				if err := onMessage(n.Channel, n.Data); err != nil {
					done <- err
					return
				}
			case redis.Subscription:
				switch n.Count {
				case len(channels):
					// all channels subscribed
					if err := onStart(); err != nil {
						done <- err
						return
					}
				case 0:
					done <- nil
					return
				}
			}
		}
	}()

	ticker := time.NewTicker(healthCheckPeriod)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ticker.C:
			// A missing pong makes Receive time out and ends the goroutine.
			if err = psc.Ping(""); err != nil {
				break loop
			}
		case <-ctx.Done():
			break loop
		case err := <-done:
			return err
		}
	}

	if err := psc.Unsubscribe(); err != nil {
		return err
	}
	return <-done
}

func (p *PubSub) Check() error {
	c, err := p.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.Do("PING")
	return err
}

func (p *PubSub) Publish(channel string, message []byte) error {
	c, err := p.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.Do("PUBLISH", channel, message)
	return err
}
