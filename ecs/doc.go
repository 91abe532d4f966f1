// Package ecs provides ECS adapters for arbor's event system.
//
// The primary adapter is [NewDonburiSink], which mirrors every dispatched
// arbor event into a [Donburi] world as a typed [Event]. Subscribe to
// [EventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	sink.Track(view) // optional: give the view an entity
//	arbor.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
