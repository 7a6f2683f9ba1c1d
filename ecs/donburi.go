package ecs

import (
	"github.com/phanxgames/tether"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// DragEventType is the Donburi event type for tether drag events. Subscribe
// to this in your ECS systems to receive drag-start, drag, and drag-end
// notifications from every managed node.
var DragEventType = events.NewEventType[tether.DragEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Drag
// events are published to DragEventType and can be consumed with
// events.Subscribe and ProcessAllEvents. Bind it with Manager.SetSink.
func NewDonburiSink(world donburi.World) tether.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event tether.DragEvent) {
	DragEventType.Publish(s.world, event)
}
