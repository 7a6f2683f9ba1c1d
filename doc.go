// Package tether is a plugin-orchestrated drag-interaction engine for 2D
// node trees, built for [Ebitengine].
//
// Tether manages dragging for a whole tree of nodes through one delegated
// [Manager]: pointer events are hit-tested once, routed to the nearest
// managed node, and run through an ordered chain of plugins that may
// reshape, constrain, veto, or cancel every move. Grid snapping, bounds
// clamping, axis locking, drag handles, and the visual transform are all
// plugins over the same protocol, and custom plugins compose with them.
//
// # Quick start
//
// Build a node tree, create a manager, attach the nodes you want
// draggable, and pump the manager from your game loop:
//
//	root := tether.NewNode("root", 640, 480)
//	card := tether.NewNode("card", 120, 80)
//	card.X, card.Y = 40, 40
//	root.AddChild(card)
//
//	mgr := tether.NewManager(root)
//	mgr.SetSource(tether.NewEbitenSource())
//	mgr.Attach(card, tether.Config{})
//
//	type Game struct{ mgr *tether.Manager }
//
//	func (g *Game) Update() error              { g.mgr.Update(); return nil }
//	func (g *Game) Draw(screen *ebiten.Image)  { /* draw from the tree */ }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// Dragging writes the committed offset into [Node.TranslateX] and
// [Node.TranslateY]; renderers read node geometry through [Node.WorldRect].
//
// # Plugins
//
// Behavior is composed from [Plugin] records passed to [Manager.Attach]:
//
//	mgr.Attach(card, tether.Config{},
//		tether.Axis(tether.AxisX),
//		tether.Grid(16, 16),
//		tether.Bounds(tether.ParentBounds(), tether.RecomputeFlags{OnStart: true}),
//	)
//
// Built-ins: [IgnoreMultitouch], [Classes], [Axis], [CursorGuard], [Grid],
// [Bounds], [Transform], [Disabled], [StateMarker], and [Controls]. A
// default set (multitouch protection, state attributes, cursor guard,
// transform) installs automatically; suppress it with [Config].NoDefaults
// or override individual entries by name.
//
// Plugins swap at runtime with [Instance.Update]. Plugins marked LiveUpdate
// apply mid-drag and the engine replays the latest pointer position, so a
// new grid or bounds takes hold without waiting for the pointer to move.
//
// # Notifications
//
// Drag-start, drag, and drag-end notifications carry the committed offset
// and fire through per-node callback fields ([Node.OnDrag] and friends),
// [Config] callbacks, manager-level handlers ([Manager.OnDrag]), and an
// optional [EventSink] (a [Donburi] adapter lives in tether/ecs).
//
// Programmatic movement goes through [Instance.SetOffset], or [TweenOffset]
// for eased animation (via [gween]).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package tether
