package tether

import (
	"fmt"
	"sort"
)

// --- Plugin ---

// Plugin is a capability record: a named bundle of optional lifecycle hooks
// the engine dispatches in priority order. Every hook field may be nil —
// a plugin implements only the phases it cares about and pays nothing for
// the rest.
//
// Plugin values are plain descriptors, safe to share across instances.
// Per-instance state lives in whatever Setup returns; the engine stores it
// and hands it back to every later hook of the same plugin on the same
// instance. The same *Plugin can therefore drive many nodes at once.
//
// Pointer identity matters for live updates: passing the same *Plugin again
// leaves its state untouched, while a different *Plugin with the same Name
// replaces it (cleanup then fresh setup).
type Plugin struct {
	// Name identifies the plugin within an instance. Registering two
	// plugins with the same name keeps the one with higher priority.
	// Must be non-empty.
	Name string

	// Priority orders hook dispatch: higher runs earlier. Plugins with
	// equal priority run in registration order.
	Priority int

	// LiveUpdate marks the plugin as safe to swap in the middle of an
	// interaction. Plugins without the flag are deferred until the
	// pointer is released.
	LiveUpdate bool

	// NonCancelable exempts the plugin's hooks from Cancel: when another
	// plugin aborts the interaction, non-cancelable hooks in the same
	// phase still run. The zero value (cancelable) is what almost every
	// plugin wants.
	NonCancelable bool

	// Setup runs once when the plugin is attached. Its return value is
	// the plugin's per-instance state, passed to every later hook.
	Setup func(ctx *Context) any

	// ShouldDrag gates interaction start. Returning false vetoes the
	// press; remaining plugins are not consulted. A nil hook consents.
	ShouldDrag func(ctx *Context, state any) bool

	// DragStart runs when the movement thresholds are met and the drag
	// becomes real.
	DragStart func(ctx *Context, state any)

	// Drag runs for every pointer move while dragging. Position plugins
	// read and rewrite the proposal here.
	Drag func(ctx *Context, state any)

	// DragEnd runs when the interaction ends, dragged or not.
	DragEnd func(ctx *Context, state any)

	// Cleanup runs when the plugin is detached or the instance is
	// destroyed. It must undo whatever Setup did to the node.
	Cleanup func(ctx *Context, state any)
}

// --- Resolution ---

// resolvePlugins deduplicates a registration list by name and sorts it into
// dispatch order. On a name collision the later registration wins only when
// its priority is at least the incumbent's; otherwise it is ignored. The
// sort is stable, so equal priorities keep registration order.
//
// Panics on a nil plugin or an empty name — both are programmer errors.
func resolvePlugins(plugins []*Plugin) []*Plugin {
	ordered := make([]*Plugin, 0, len(plugins))
	byName := make(map[string]int, len(plugins))
	for _, p := range plugins {
		if p == nil {
			panic("tether: nil plugin")
		}
		if p.Name == "" {
			panic("tether: plugin has empty name")
		}
		if i, ok := byName[p.Name]; ok {
			if p.Priority >= ordered[i].Priority {
				ordered[i] = p
			}
			continue
		}
		byName[p.Name] = len(ordered)
		ordered = append(ordered, p)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})
	return ordered
}

// --- Hook errors ---

// HookError describes a panic raised inside a plugin hook. The engine
// recovers it, reports it through the instance's error callback, and treats
// the phase as vetoed. Plugin is empty for failures the engine detects
// itself, such as a poisoned capture redirect.
type HookError struct {
	Phase  Phase
	Plugin string
	Node   *Node
	Err    error
}

func (e HookError) Error() string {
	if e.Plugin == "" {
		return fmt.Sprintf("tether: %s failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("tether: plugin %q failed during %s: %v", e.Plugin, e.Phase, e.Err)
}

func (e HookError) Unwrap() error {
	return e.Err
}

// invokeHook runs fn and converts a panic into a *HookError carrying the
// phase, plugin name, and node for the error callback. A clean run returns
// nil.
func invokeHook(phase Phase, plugin string, node *Node, fn func()) (herr *HookError) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			herr = &HookError{Phase: phase, Plugin: plugin, Node: node, Err: err}
		}
	}()
	fn()
	return nil
}
