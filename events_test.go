package arbor

import (
	"context"
	"strings"
	"testing"
	"time"
)

// --- Bind ---

func TestBindDefaultCallbackIsNotify(t *testing.T) {
	useScheduler(t)
	src := NewEventSource(nil)
	relay := NewEventSource(nil)
	sink := newWidget(nil)

	b := src.Bind("changed", relay, nil)
	if b == nil || b.Callback.Name() != DefaultCallback {
		t.Fatalf("binding = %+v, want notify callback", b)
	}
	relay.Bind("changed", sink, Method("ping"))

	src.Propagate("changed", 5)
	Flush()

	if len(sink.pings) != 1 {
		t.Fatalf("pings = %d, want 1", len(sink.pings))
	}
	ev := sink.pings[0]
	if ev.Data != 5 || ev.Source != Object(relay) || ev.SourceTarget != Object(relay) {
		t.Errorf("event = %+v", ev)
	}
}

func TestBindInvalidInput(t *testing.T) {
	logs := observeLogs(t)
	src := NewEventSource(nil)
	w := newWidget(nil)

	if src.Bind("", w, nil) != nil {
		t.Error("empty event name should not bind")
	}
	if src.Bind("x", nil, nil) != nil {
		t.Error("nil subscriber should not bind")
	}
	var nilWidget *widget
	if src.Bind("x", nilWidget, nil) != nil {
		t.Error("typed nil subscriber should not bind")
	}
	if src.Bind("x", w, Method("missing")) != nil {
		t.Error("unknown method should not bind")
	}
	if src.Bind("x", w, Method("label")) != nil {
		t.Error("non-method name should not bind")
	}
	if src.HasBindings("x") {
		t.Error("nothing should be bound")
	}
	if logs.Len() != 5 {
		t.Errorf("warnings = %d, want 5", logs.Len())
	}
}

func TestBindFuncWithoutArgs(t *testing.T) {
	useScheduler(t)
	src := NewEventSource(nil)
	w := newWidget(nil)
	src.Bind("tick", w, Method("tick"))
	src.Propagate("tick", nil)
	Flush()
	if w.ticks != 1 {
		t.Errorf("ticks = %d, want 1", w.ticks)
	}
}

// --- Delivery ---

func TestPropagateIsAsynchronous(t *testing.T) {
	s := useScheduler(t)
	src := NewEventSource(nil)
	w := newWidget(nil)
	src.Bind("x", w, Method("ping"))

	src.Propagate("x", nil)
	if len(w.pings) != 0 {
		t.Fatal("handler ran synchronously")
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}
	Flush()
	if len(w.pings) != 1 {
		t.Errorf("pings = %d, want 1", len(w.pings))
	}
}

func TestDeliveryOrder(t *testing.T) {
	useScheduler(t)
	src := NewEventSource(nil)
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		sub := NewEventSource(nil)
		src.Bind("x", sub, Func(func(*Event) { order = append(order, name) }))
	}
	src.Propagate("x", nil)
	src.Propagate("x", nil)
	Flush()
	if got := strings.Join(order, ""); got != "abcabc" {
		t.Errorf("order = %q, want abcabc", got)
	}
}

func TestUnbindBeforeDelivery(t *testing.T) {
	useScheduler(t)
	src := NewEventSource(nil)
	w := newWidget(nil)
	src.Bind("x", w, Method("ping"))

	src.Propagate("x", nil)
	src.Unbind("x", w, nil)
	Flush()
	if len(w.pings) != 0 {
		t.Error("unbound handler should not run")
	}
}

func TestUnbindDuringDelivery(t *testing.T) {
	useScheduler(t)
	src := NewEventSource(nil)
	a := NewEventSource(nil)
	b := newWidget(nil)
	c := newWidget(nil)
	calls := 0
	src.Bind("x", a, Func(func(*Event) {
		calls++
		src.Unbind("x", b, nil)
	}))
	src.Bind("x", b, Method("ping"))
	src.Bind("x", c, Method("ping"))

	src.Propagate("x", nil)
	Flush()
	if calls != 1 || len(b.pings) != 0 || len(c.pings) != 1 {
		t.Fatalf("a=%d b=%d c=%d, want 1 0 1", calls, len(b.pings), len(c.pings))
	}

	src.Propagate("x", nil)
	Flush()
	if calls != 2 || len(b.pings) != 0 || len(c.pings) != 2 {
		t.Errorf("second round a=%d b=%d c=%d, want 2 0 2", calls, len(b.pings), len(c.pings))
	}
}

func TestDestroyedSubscriberDropped(t *testing.T) {
	useScheduler(t)
	src := NewEventSource(nil)
	w := newWidget(nil)
	w.Init()
	src.Bind("x", w, Method("ping"))

	src.Propagate("x", nil)
	w.Destroy()
	Flush()
	if len(w.pings) != 0 {
		t.Error("destroyed subscriber should not be called")
	}
	if src.HasBindings("x") {
		t.Error("binding of a destroyed subscriber should be dropped")
	}
}

func TestDestroyedSourceDeliversNothing(t *testing.T) {
	useScheduler(t)
	src := NewEventSource(nil)
	src.Init()
	w := newWidget(nil)
	src.Bind("x", w, Method("ping"))
	src.Propagate("x", nil)
	src.Destroy()
	Flush()
	if len(w.pings) != 0 {
		t.Error("Destroy should cancel queued deliveries")
	}
}

func TestHandlerPanicIsolated(t *testing.T) {
	useScheduler(t)
	logs := observeLogs(t)
	src := NewEventSource(nil)
	bad := newWidget(nil)
	good := newWidget(nil)
	src.Bind("x", bad, Method("boom"))
	src.Bind("x", good, Method("ping"))

	src.Propagate("x", nil)
	Flush()
	if len(good.pings) != 1 {
		t.Error("a panicking handler must not stop the next one")
	}
	if logs.FilterMessage("handler panicked").Len() != 1 {
		t.Errorf("logs = %v", logs.All())
	}
}

func TestPropagateEmptyNameWarns(t *testing.T) {
	logs := observeLogs(t)
	NewEventSource(nil).Propagate("", nil)
	if logs.FilterMessage("propagate: missing event name").Len() != 1 {
		t.Error("expected a warning")
	}
}

// --- Unbind ---

func TestUnbindWithoutCallbackRemovesAll(t *testing.T) {
	src := NewEventSource(nil)
	w := newWidget(nil)
	other := newWidget(nil)
	src.Bind("x", w, Method("ping"))
	src.Bind("x", other, Method("ping"))
	src.Bind("x", w, Method("tick"))

	if n := src.Unbind("x", w, nil); n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	got := src.Bindings("x")
	if len(got) != 1 || got[0].Subscriber != Object(other) {
		t.Errorf("remaining = %v", got)
	}
}

func TestUnbindWithCallbackExactMatch(t *testing.T) {
	src := NewEventSource(nil)
	w := newWidget(nil)
	src.Bind("x", w, Method("ping"))
	src.Bind("x", w, Method("tick"))

	if n := src.Unbind("x", w, Method("tick")); n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	if got := src.Bindings("x"); len(got) != 1 || got[0].Callback.Name() != "ping" {
		t.Errorf("remaining = %v", got)
	}
}

func TestUnbindAdjacentDuplicates(t *testing.T) {
	src := NewEventSource(nil)
	w := newWidget(nil)
	for i := 0; i < 3; i++ {
		src.Bind("x", w, Method("ping"))
	}
	if n := src.Unbind("x", w, Method("ping")); n != 3 {
		t.Errorf("removed = %d, want 3", n)
	}
	if _, ok := src.handlers["x"]; ok {
		t.Error("empty list should be deleted")
	}
}

func TestUnbindFuncIdentity(t *testing.T) {
	src := NewEventSource(nil)
	w := newWidget(nil)
	fn := func(*Event) {}
	cb := Func(fn)
	src.Bind("x", w, cb)

	observeLogs(t)
	if n := src.Unbind("x", w, Func(fn)); n != 0 {
		t.Error("a different Func callback must not match")
	}
	if n := src.Unbind("x", w, cb); n != 1 {
		t.Error("the same Func callback should match")
	}
}

func TestUnbindNoMatchWarns(t *testing.T) {
	logs := observeLogs(t)
	src := NewEventSource(nil)
	if n := src.Unbind("x", newWidget(nil), nil); n != 0 {
		t.Errorf("removed = %d", n)
	}
	if logs.FilterMessage("unbind: no matching binding").Len() != 1 {
		t.Error("expected a warning")
	}
}

func TestBindUnbindCycle(t *testing.T) {
	src := NewEventSource(nil)
	w := newWidget(nil)
	for i := 0; i < 3; i++ {
		if src.HasBindings("x") {
			t.Fatal("should start empty")
		}
		src.Bind("x", w, nil)
		if !src.HasBindings("x") {
			t.Fatal("should have a binding")
		}
		src.Unbind("x", w, nil)
	}
}

func TestBindingRemove(t *testing.T) {
	src := NewEventSource(nil)
	w := newWidget(nil)
	b1 := src.Bind("x", w, Method("ping"))
	src.Bind("x", w, Method("ping"))

	if !b1.Remove() {
		t.Error("first Remove should succeed")
	}
	if b1.Remove() {
		t.Error("second Remove should report false")
	}
	if len(src.Bindings("x")) != 1 {
		t.Error("only b1 should be removed")
	}
	var nilBinding *Binding
	if nilBinding.Remove() {
		t.Error("nil binding Remove should be false")
	}
}

// --- Fallback ---

func TestFallbackToParent(t *testing.T) {
	useScheduler(t)
	parent := newPanel(nil, nil)
	parent.Init()
	defer parent.Destroy()
	child := NewView(nil, nil)
	child.Init()
	parent.Add(child, "", nil)

	listener := newWidget(nil)
	parent.Bind("changed", listener, Method("ping"))

	child.Propagate("changed", "payload")
	Flush()

	if len(listener.pings) != 1 {
		t.Fatalf("pings = %d, want 1", len(listener.pings))
	}
	ev := listener.pings[0]
	if ev.Source != Object(parent) {
		t.Errorf("Source = %v, want the parent's outer object", ev.Source)
	}
	if ev.SourceTarget != Object(child) {
		t.Errorf("SourceTarget = %v, want child", ev.SourceTarget)
	}
	if ev.Data != "payload" {
		t.Errorf("Data = %v", ev.Data)
	}
}

func TestFallbackAcrossLevels(t *testing.T) {
	useScheduler(t)
	root := newPanel(nil, nil)
	root.Init()
	defer root.Destroy()
	mid := NewView(nil, nil)
	mid.Init()
	leaf := NewView(nil, nil)
	leaf.Init()
	root.Add(mid, "", nil)
	mid.Add(leaf, "", nil)

	listener := newWidget(nil)
	root.Bind("changed", listener, Method("ping"))

	leaf.Propagate("changed", 7)
	Flush()

	if len(listener.pings) != 1 {
		t.Fatalf("pings = %d, want 1", len(listener.pings))
	}
	ev := listener.pings[0]
	if ev.Source != Object(root) {
		t.Errorf("Source = %v, want root", ev.Source)
	}
	if ev.SourceTarget != Object(leaf) {
		t.Errorf("SourceTarget = %v, want the leaf, not the intermediate view", ev.SourceTarget)
	}
	if ev.Data != 7 {
		t.Errorf("Data = %v", ev.Data)
	}
}

func TestFallbackStopsAtRoot(t *testing.T) {
	s := useScheduler(t)
	v := NewView(nil, nil)
	v.Propagate("nobody", nil)
	if s.Pending() != 0 {
		t.Error("nothing should be scheduled")
	}
}

// --- Event sink ---

type sinkRecorder struct {
	types []string
}

func (r *sinkRecorder) EmitEvent(ev *Event) { r.types = append(r.types, ev.Type) }

func TestEventSinkSeesDispatches(t *testing.T) {
	useScheduler(t)
	rec := &sinkRecorder{}
	SetEventSink(rec)
	defer SetEventSink(nil)

	src := NewEventSource(nil)
	src.Bind("x", newWidget(nil), Method("ping"))
	src.Propagate("x", nil)
	src.Propagate("unbound", nil)
	if strings.Join(rec.types, ",") != "x" {
		t.Errorf("sink saw %v, want [x]", rec.types)
	}
}

// --- Scheduler ---

func TestRunPendingSnapshot(t *testing.T) {
	s := NewScheduler()
	var order []int
	s.Post(func() {
		order = append(order, 1)
		s.Post(func() { order = append(order, 2) })
	})
	if n := s.RunPending(); n != 1 || len(order) != 1 {
		t.Fatalf("first turn ran %d tasks, order %v", n, order)
	}
	if n := s.RunPending(); n != 1 || len(order) != 2 {
		t.Fatalf("second turn ran %d tasks, order %v", n, order)
	}
	s.Post(nil)
	if s.Pending() != 0 {
		t.Error("nil tasks should be ignored")
	}
}

func TestFlushBounded(t *testing.T) {
	s := useScheduler(t)
	logs := observeLogs(t)
	src := NewEventSource(nil)
	// Notify re-propagates on the subscriber itself: an endless loop.
	src.Bind("loop", src, nil)
	src.Propagate("loop", nil)

	if n := Flush(); n != maxFlushRounds {
		t.Errorf("Flush ran %d tasks, want %d", n, maxFlushRounds)
	}
	if logs.FilterMessage("flush: queue did not drain").Len() != 1 {
		t.Error("expected a warning")
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}
}

func TestSchedulerRun(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	ran := make(chan struct{})
	go s.Post(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("posted task did not run")
	}
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestTaskPanicRecovered(t *testing.T) {
	logs := observeLogs(t)
	s := NewScheduler()
	ran := false
	s.Post(func() { panic("x") })
	s.Post(func() { ran = true })
	s.RunPending()
	if !ran {
		t.Error("second task should run")
	}
	if logs.FilterMessage("scheduled task panicked").Len() != 1 {
		t.Error("expected an error log")
	}
}
