// Package ecs provides ECS adapters for tether's drag notifications.
//
// The primary adapter is [NewDonburiSink], which bridges tether drag events
// (drag-start, drag, drag-end) into a [Donburi] world as typed events.
// Subscribe to [DragEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	mgr.SetSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
