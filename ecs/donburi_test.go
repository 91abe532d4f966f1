package ecs

import (
	"testing"

	"github.com/phanxgames/arbor"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

type listener struct {
	*arbor.EventSource
	seen int
}

func newListener() *listener {
	l := &listener{EventSource: &arbor.EventSource{}}
	l.Construct(l, nil)
	return l
}

func (l *listener) OnPing() { l.seen++ }

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
	var _ arbor.EventSink = sink
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []Event
	EventType.Subscribe(world, func(w donburi.World, e Event) {
		received = append(received, e)
	})

	src := arbor.NewEventSource("src")
	origin := arbor.NewEventSource("origin")
	sink.EmitEvent(&arbor.Event{Source: src, Type: "changed", Data: 7, SourceTarget: origin})
	sink.EmitEvent(&arbor.Event{
		Source: src,
		Type:   arbor.PointerStart,
		Data:   &arbor.NativeEvent{X: 100, Y: 200, Button: arbor.MouseButtonRight, Modifiers: arbor.ModShift},
	})

	// Events are queued; process them.
	EventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != "changed" || e0.SourceID != "src" || e0.SourceTargetID != "origin" || e0.Data != 7 {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.Entity != donburi.Null {
		t.Errorf("untracked source should carry Null entity, got %v", e0.Entity)
	}
	e1 := received[1]
	if e1.X != 100 || e1.Y != 200 || e1.Button != arbor.MouseButtonRight || e1.Modifiers != arbor.ModShift {
		t.Errorf("event 1 pointer fields: %+v", e1)
	}
}

func TestDonburiSink_Track(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	src := arbor.NewEventSource("tracked")

	e := sink.Track(src)
	if sink.Track(src) != e {
		t.Error("tracking twice should return the same entity")
	}
	ref := ObjectRefComponent.Get(world.Entry(e))
	if ref.ID != "tracked" {
		t.Errorf("ObjectRef.ID = %q, want tracked", ref.ID)
	}

	var got Event
	EventType.Subscribe(world, func(w donburi.World, ev Event) { got = ev })
	sink.EmitEvent(&arbor.Event{Source: src, Type: "x"})
	EventType.ProcessEvents(world)
	if got.Entity != e {
		t.Errorf("Entity = %v, want %v", got.Entity, e)
	}

	sink.Untrack(src)
	if world.Valid(e) {
		t.Error("Untrack should remove the entity")
	}
}

func TestDonburiSink_InstalledOnDispatcher(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	arbor.SetEventSink(sink)
	defer arbor.SetEventSink(nil)

	var count1, count2 int
	EventType.Subscribe(world, func(w donburi.World, e Event) { count1++ })
	EventType.Subscribe(world, func(w donburi.World, e Event) { count2++ })

	src := arbor.NewEventSource(nil)
	src.Init()
	defer src.Destroy()
	l := newListener()
	src.Bind("ping", l, arbor.Method("on_ping"))

	src.Propagate("ping", nil)
	arbor.Flush()
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
	if l.seen != 1 {
		t.Errorf("listener seen = %d, want 1", l.seen)
	}
}
