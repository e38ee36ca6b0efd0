// Package cartograph is an interactive map editor engine built on
// [Ebitengine]: a tile-based rasterizer, spatial hit-testing, a
// brush/action/undo state machine, and a hierarchical spatial data model
// for hand-drawn cartography.
//
// # Quick start
//
// A map starts with a pkg/store.MapStore wrapped in a pkg/mapper.Mapper,
// and a [RenderContext] that owns the viewport:
//
//	m := mapper.New(store.NewMemStore())
//	rc := cartograph.NewRenderContext(m, 1280, 720)
//
// Drive it from an ebiten.Game:
//
//	type Game struct {
//		rc    *cartograph.RenderContext
//		input *cartograph.Input
//	}
//
//	func (g *Game) Update() error {
//		if err := g.input.Update(context.Background()); err != nil {
//			return err
//		}
//		return g.rc.Recalc(context.Background())
//	}
//
//	func (g *Game) Draw(screen *ebiten.Image) { g.rc.Redraw(screen) }
//
// # Data model
//
// Nodes live in a typed graph (pkg/store, pkg/entity, pkg/mapper): object
// nodes own point/path descendants, edges connect point and path nodes,
// and pkg/registry resolves node-type and layer metadata. See
// pkg/mapper.Mapper for the mutation API (InsertNode, TranslateNode,
// RemoveNodes) and pkg/hooks for the event bus that fires on every
// mutation.
//
// # Rendering
//
// [BuildNodeRender] rasterizes one object node's subtree into filled
// disks, terrain blends, or border arcs depending on its node type and
// layer. [MegaTileCache] composites those renders into screen-aligned
// tiles backed by a pooled render-texture allocator, so panning and
// zooming reuse canvases instead of reallocating them every frame.
//
// # Interaction
//
// [Brush] implementations ([AddBrush], [DeleteBrush], [SelectBrush],
// [DistancePegBrush]) decide what a press does; some start a [DragEvent]
// for multi-frame interactions like panning or translating a node.
// [Input] drives the whole press/drag/release state machine from mouse
// and keyboard state once per frame. [Action] implementations wrap a
// mutation with a matching inverse, which is what a host builds an undo
// stack on top of.
//
// [Ebitengine]: https://ebitengine.org
package cartograph
