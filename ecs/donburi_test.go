package ecs

import (
	"testing"

	"github.com/phanxgames/tether"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []tether.DragEvent
	DragEventType.Subscribe(world, func(w donburi.World, e tether.DragEvent) {
		received = append(received, e)
	})

	node := tether.NewNode("card", 50, 50)
	sink.EmitEvent(tether.DragEvent{
		Kind:        tether.EventDragStart,
		RootNode:    node,
		CurrentNode: node,
	})
	sink.EmitEvent(tether.DragEvent{
		Kind:        tether.EventDrag,
		OffsetX:     30,
		OffsetY:     -10,
		RootNode:    node,
		CurrentNode: node,
	})

	// Events are queued — process them.
	DragEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}

	e0 := received[0]
	if e0.Kind != tether.EventDragStart || e0.RootNode != node {
		t.Errorf("event 0: %+v", e0)
	}

	e1 := received[1]
	if e1.Kind != tether.EventDrag || e1.OffsetX != 30 || e1.OffsetY != -10 {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestDonburiSink_ImplementsEventSink(t *testing.T) {
	world := donburi.NewWorld()
	var sink tether.EventSink = NewDonburiSink(world)
	_ = sink // compile-time interface check
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	DragEventType.Subscribe(world, func(w donburi.World, e tether.DragEvent) {
		count1++
	})
	DragEventType.Subscribe(world, func(w donburi.World, e tether.DragEvent) {
		count2++
	})

	sink.EmitEvent(tether.DragEvent{Kind: tether.EventDragEnd})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
