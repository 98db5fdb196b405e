package recording

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Handle controls a scheduled job. Cancel may be called any number of times.
type Handle interface {
	Cancel()
	Alive() bool
}

// Scheduler runs background jobs. A periodic body returning false ends its
// job as if the handle had been cancelled.
type Scheduler interface {
	Every(interval time.Duration, body func() bool) Handle
	After(delay time.Duration, fn func()) Handle
}

type tickerScheduler struct{}

// NewScheduler returns a scheduler backed by goroutines and tickers.
func NewScheduler() Scheduler { return tickerScheduler{} }

type ctxHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
	timer  *time.Timer
}

func (h *ctxHandle) Cancel() {
	h.cancel()
	if h.timer != nil {
		h.timer.Stop()
	}
}

func (h *ctxHandle) Alive() bool {
	return h.ctx.Err() == nil
}

func (tickerScheduler) Every(interval time.Duration, body func() bool) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &ctxHandle{ctx: ctx, cancel: cancel}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				if !body() {
					cancel()
					return
				}
			}
		}
	}()

	return h
}

func (tickerScheduler) After(delay time.Duration, fn func()) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &ctxHandle{ctx: ctx, cancel: cancel}
	h.timer = time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		cancel()
		fn()
	})
	return h
}
