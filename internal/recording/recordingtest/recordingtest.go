// Package recordingtest provides deterministic doubles for the recording
// package: a manual clock, a manually driven scheduler, a scripted
// acknowledgement channel and recorders for alerts and side effects.
package recordingtest

import (
	"context"
	"sync"
	"time"

	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/recording"
)

var (
	_ recording.Clock          = (*Clock)(nil)
	_ recording.Scheduler      = (*Scheduler)(nil)
	_ recording.Channel        = (*Channel)(nil)
	_ recording.AlertSink      = (*Alerts)(nil)
	_ recording.LayoutReporter = (*Reporter)(nil)
	_ recording.CanvasCapturer = (*Canvas)(nil)
	_ recording.SummaryWriter  = (*Summaries)(nil)
)

type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type job struct {
	periodic  bool
	body      func() bool
	fn        func()
	cancelled bool
}

type handle struct {
	s *Scheduler
	j *job
}

func (h *handle) Cancel() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.j.cancelled = true
}

func (h *handle) Alive() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return !h.j.cancelled
}

// Scheduler runs nothing on its own. Tests drive periodic jobs with Tick and
// delayed jobs with FireDelayed.
type Scheduler struct {
	mu   sync.Mutex
	jobs []*job
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Every(_ time.Duration, body func() bool) recording.Handle {
	return s.add(&job{periodic: true, body: body})
}

func (s *Scheduler) After(_ time.Duration, fn func()) recording.Handle {
	return s.add(&job{fn: fn})
}

func (s *Scheduler) add(j *job) recording.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, j)
	return &handle{s: s, j: j}
}

func (s *Scheduler) live(periodic bool) []*job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var r []*job
	for _, j := range s.jobs {
		if j.periodic == periodic && !j.cancelled {
			r = append(r, j)
		}
	}
	return r
}

// Tick runs every live periodic job once and returns how many ran.
func (s *Scheduler) Tick() int {
	jobs := s.live(true)
	for _, j := range jobs {
		if !j.body() {
			s.mu.Lock()
			j.cancelled = true
			s.mu.Unlock()
		}
	}
	return len(jobs)
}

// FireDelayed runs every pending delayed job and returns how many ran.
func (s *Scheduler) FireDelayed() int {
	jobs := s.live(false)
	for _, j := range jobs {
		s.mu.Lock()
		j.cancelled = true
		s.mu.Unlock()
		j.fn()
	}
	return len(jobs)
}

// Periodic returns the number of live periodic jobs.
func (s *Scheduler) Periodic() int {
	return len(s.live(true))
}

// Pending returns the number of delayed jobs that have not fired.
func (s *Scheduler) Pending() int {
	return len(s.live(false))
}

type Reply struct {
	Ack *events.Ack
	Err error
}

func Succeed() Reply {
	return Reply{Ack: &events.Ack{Id: events.RecordAckKey, Success: true}}
}

func SucceedWithPauses(n int) Reply {
	r := Succeed()
	r.Ack.PauseCount = &n
	return r
}

func Fail(reason, recordState string) Reply {
	return Reply{Ack: &events.Ack{Id: events.RecordAckKey, Success: false, Reason: reason, RecordState: recordState}}
}

func Unreachable(err error) Reply {
	return Reply{Err: err}
}

// Channel answers requests from per-action reply queues and acknowledges
// successfully when a queue is empty.
type Channel struct {
	mu       sync.Mutex
	requests []*events.RecordRequest
	replies  map[string][]Reply

	// OnEmit runs before the reply is returned.
	OnEmit func(req *events.RecordRequest)
}

func NewChannel() *Channel {
	return &Channel{replies: make(map[string][]Reply)}
}

func (c *Channel) On(action string, r Reply) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[action] = append(c.replies[action], r)
	return c
}

func (c *Channel) EmitWithAck(_ context.Context, req *events.RecordRequest) (*events.Ack, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	r := Succeed()
	if q := c.replies[req.Id]; len(q) > 0 {
		r = q[0]
		c.replies[req.Id] = q[1:]
	}
	onEmit := c.OnEmit
	c.mu.Unlock()

	if onEmit != nil {
		onEmit(req)
	}
	if r.Ack != nil {
		ack := *r.Ack
		ack.Action = req.Id
		ack.RequestId = req.RequestId
		return &ack, r.Err
	}
	return nil, r.Err
}

func (c *Channel) Requests() []*events.RecordRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*events.RecordRequest(nil), c.requests...)
}

func (c *Channel) Actions() []string {
	var r []string
	for _, req := range c.Requests() {
		r = append(r, req.Id)
	}
	return r
}

type Alert struct {
	Message  string
	Severity recording.Severity
	Duration time.Duration
}

type Alerts struct {
	mu    sync.Mutex
	items []Alert
}

func (a *Alerts) Alert(message string, severity recording.Severity, duration time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, Alert{Message: message, Severity: severity, Duration: duration})
}

func (a *Alerts) All() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Alert(nil), a.items...)
}

func (a *Alerts) Messages() []string {
	var r []string
	for _, i := range a.All() {
		r = append(r, i.Message)
	}
	return r
}

// Last returns the most recent alert or the zero Alert.
func (a *Alerts) Last() Alert {
	all := a.All()
	if len(all) == 0 {
		return Alert{}
	}
	return all[len(all)-1]
}

func (a *Alerts) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = nil
}

type Reporter struct {
	mu       sync.Mutex
	Restarts []bool
	Err      error
}

func (r *Reporter) Report(_ context.Context, _ string, restart bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Restarts = append(r.Restarts, restart)
	return r.Err
}

type Canvas struct {
	mu     sync.Mutex
	Starts int
	Stops  int
	Err    error
}

func (c *Canvas) StartCapture(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Starts++
	return c.Err
}

func (c *Canvas) StopCapture(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Stops++
	return c.Err
}

type Summaries struct {
	mu      sync.Mutex
	Written []*events.RecordingSummary
	Err     error
}

func (s *Summaries) WriteSummary(summary *events.RecordingSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Written = append(s.Written, summary)
	return s.Err
}
