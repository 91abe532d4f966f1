package arbor

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// maxFlushRounds bounds Flush so a handler that re-propagates to itself
// cannot spin forever.
const maxFlushRounds = 1024

// Scheduler is a cooperative FIFO task queue. Tasks run one at a time on
// whichever goroutine calls RunPending, Flush or Run. Post is the only
// method safe to call from other goroutines.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{wake: make(chan struct{}, 1)}
}

// Post queues fn for a later turn.
func (s *Scheduler) Post(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// RunPending runs the tasks queued before the call. Tasks posted while it
// runs wait for the next turn. Returns the number of tasks run.
func (s *Scheduler) RunPending() int {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, fn := range batch {
		runTask(fn)
	}
	return len(batch)
}

// Flush runs turns until the queue is empty. Returns the number of tasks
// run.
func (s *Scheduler) Flush() int {
	total := 0
	for round := 0; round < maxFlushRounds; round++ {
		n := s.RunPending()
		if n == 0 {
			return total
		}
		total += n
	}
	logger.Warn("flush: queue did not drain", zap.Int("rounds", maxFlushRounds), zap.Int("pending", s.Pending()))
	return total
}

// Run runs turns as tasks arrive until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		s.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}

func runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled task panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

// scheduler delivers every propagation in the process.
var scheduler = NewScheduler()

// SetScheduler replaces the scheduler used for delivery. Tasks already
// queued on the previous one stay there.
func SetScheduler(s *Scheduler) {
	if s == nil {
		s = NewScheduler()
	}
	scheduler = s
}

// DefaultScheduler returns the scheduler used for delivery.
func DefaultScheduler() *Scheduler {
	return scheduler
}

// Flush drains the delivery scheduler.
func Flush() int {
	return scheduler.Flush()
}

// EventSink observes every event handed to the dispatcher. Set one with
// SetEventSink to mirror events into another system (see package ecs).
type EventSink interface {
	EmitEvent(ev *Event)
}

var eventSink EventSink

// SetEventSink installs (or, with nil, removes) the event sink.
func SetEventSink(sink EventSink) {
	eventSink = sink
}

// dispatch schedules one delivery per binding, in binding order.
func (es *EventSource) dispatch(ev *Event) {
	if eventSink != nil {
		eventSink.EmitEvent(ev)
	}
	for _, b := range slices.Clone(es.handlers[ev.Type]) {
		scheduler.Post(func() { es.deliver(ev.Type, b, ev) })
	}
}

// deliver runs one binding. Membership is checked again at fire time so an
// Unbind or Destroy between Propagate and delivery cancels the call.
func (es *EventSource) deliver(eventName string, b *Binding, ev *Event) {
	if !es.holds(eventName, b) {
		return
	}
	if sub := b.Subscriber.AsEventSource(); sub.destroyed {
		es.removeBinding(eventName, b)
		logger.Debug("deliver: dropped binding of destroyed subscriber",
			zap.String("event", eventName), idField(b.Subscriber))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panicked",
				zap.String("event", eventName),
				zap.String("callback", b.Callback.name),
				zap.Any("panic", r),
				idField(b.Subscriber))
		}
	}()
	b.invoke(ev)
}
