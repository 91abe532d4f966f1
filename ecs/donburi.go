package ecs

import (
	"github.com/phanxgames/arbor"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Event is the snapshot of an arbor event published into a Donburi world.
// Objects are referenced by id so systems never hold on to them.
type Event struct {
	Type           string
	SourceID       string
	SourceTargetID string
	// Entity is the entity tracking the source, or donburi.Null.
	Entity donburi.Entity
	Data   any

	// Pointer fields, filled for bridged native events.
	X, Y      float64
	Button    arbor.MouseButton
	Modifiers arbor.KeyModifiers
}

// EventType is the Donburi event type for arbor events. Subscribe to it in
// your ECS systems and consume with ProcessEvents.
var EventType = events.NewEventType[Event]()

// ObjectRef links an entity to an arbor object id.
type ObjectRef struct {
	ID string
}

// ObjectRefComponent is attached to entities created by Track.
var ObjectRefComponent = donburi.NewComponentType[ObjectRef]()

// Sink publishes every dispatched arbor event to a Donburi world.
type Sink struct {
	world   donburi.World
	tracked map[string]donburi.Entity
}

var _ arbor.EventSink = (*Sink)(nil)

// NewDonburiSink creates an EventSink backed by a Donburi world. Install it
// with arbor.SetEventSink.
func NewDonburiSink(world donburi.World) *Sink {
	return &Sink{world: world, tracked: make(map[string]donburi.Entity)}
}

// Track creates an entity referencing o. Events whose source is o carry
// that entity. Tracking the same object twice returns the same entity.
func (s *Sink) Track(o arbor.Object) donburi.Entity {
	id := o.AsEventSource().ID()
	if e, ok := s.tracked[id]; ok && s.world.Valid(e) {
		return e
	}
	e := s.world.Create(ObjectRefComponent)
	ObjectRefComponent.SetValue(s.world.Entry(e), ObjectRef{ID: id})
	s.tracked[id] = e
	return e
}

// Untrack removes the entity created for o.
func (s *Sink) Untrack(o arbor.Object) {
	id := o.AsEventSource().ID()
	e, ok := s.tracked[id]
	if !ok {
		return
	}
	delete(s.tracked, id)
	if s.world.Valid(e) {
		s.world.Remove(e)
	}
}

// EmitEvent implements arbor.EventSink.
func (s *Sink) EmitEvent(ev *arbor.Event) {
	out := Event{
		Type:   ev.Type,
		Data:   ev.Data,
		Entity: donburi.Null,
	}
	if ev.Source != nil {
		out.SourceID = ev.Source.AsEventSource().ID()
		if e, ok := s.tracked[out.SourceID]; ok {
			out.Entity = e
		}
	}
	if ev.SourceTarget != nil {
		out.SourceTargetID = ev.SourceTarget.AsEventSource().ID()
	}
	if nev, ok := ev.Data.(*arbor.NativeEvent); ok {
		out.X, out.Y = nev.X, nev.Y
		out.Button = nev.Button
		out.Modifiers = nev.Modifiers
	}
	EventType.Publish(s.world, out)
}
