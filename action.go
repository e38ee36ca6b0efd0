package cartograph

import (
	"context"

	"github.com/worldforge/cartograph/pkg/geometry"
	"github.com/worldforge/cartograph/pkg/mapper"
	"github.com/worldforge/cartograph/pkg/store"
)

// Action is one undoable unit of mutation. Perform applies the action and
// returns its inverse (itself perform-able to undo); Empty reports
// whether the action would be a no-op, so the undo stack can skip it
// (spec §4.K).
type Action interface {
	Perform(ctx context.Context) (Action, error)
	Empty() bool
}

// BulkAction performs a group of actions as a single undo step: its
// inverse is the reversed list of each child's inverse (spec §4.K).
type BulkAction struct {
	Actions []Action
}

func (a *BulkAction) Empty() bool {
	for _, child := range a.Actions {
		if !child.Empty() {
			return false
		}
	}
	return true
}

func (a *BulkAction) Perform(ctx context.Context) (Action, error) {
	inverses := make([]Action, 0, len(a.Actions))
	for _, child := range a.Actions {
		inv, err := child.Perform(ctx)
		if err != nil {
			return &BulkAction{Actions: reverseActions(inverses)}, err
		}
		inverses = append(inverses, inv)
	}
	return &BulkAction{Actions: reverseActions(inverses)}, nil
}

func reverseActions(in []Action) []Action {
	out := make([]Action, len(in))
	for i, a := range in {
		out[len(in)-1-i] = a
	}
	return out
}

// ChangeNameAction sets a node's name, inverting to the name it had
// before (spec §4.K).
type ChangeNameAction struct {
	Mapper  *mapper.Mapper
	Target  store.EntityID
	NewName string
}

func (a *ChangeNameAction) Empty() bool { return false }

func (a *ChangeNameAction) Perform(ctx context.Context) (Action, error) {
	n := a.Mapper.Node(a.Target)
	old, err := n.Name(ctx)
	if err != nil {
		return nil, err
	}
	if err := n.SetName(ctx, a.NewName); err != nil {
		return nil, err
	}
	return &ChangeNameAction{Mapper: a.Mapper, Target: a.Target, NewName: old}, nil
}

// RemoveAction soft-deletes refs (and their cascade), inverting to an
// UnremoveAction over the full affected set (spec §4.F, §4.K).
type RemoveAction struct {
	Mapper *mapper.Mapper
	Refs   []store.EntityID
}

func (a *RemoveAction) Empty() bool { return len(a.Refs) == 0 }

func (a *RemoveAction) Perform(ctx context.Context) (Action, error) {
	affected, err := a.Mapper.RemoveNodes(ctx, a.Refs)
	if err != nil {
		return nil, err
	}
	return &UnremoveAction{Mapper: a.Mapper, Refs: affected}, nil
}

// UnremoveAction revalidates refs, inverting to a RemoveAction (spec
// §4.K).
type UnremoveAction struct {
	Mapper *mapper.Mapper
	Refs   []store.EntityID
}

func (a *UnremoveAction) Empty() bool { return len(a.Refs) == 0 }

func (a *UnremoveAction) Perform(ctx context.Context) (Action, error) {
	if err := a.Mapper.UnremoveNodes(ctx, a.Refs); err != nil {
		return nil, err
	}
	return &RemoveAction{Mapper: a.Mapper, Refs: a.Refs}, nil
}

// RemoveEdgeAction hard-removes edges, inverting to an UnremoveEdgeAction
// over the endpoint pairs it captured before removal (spec §3, §4.K:
// edges have no soft-delete flag, so undo recreates an equivalent edge).
type RemoveEdgeAction struct {
	Mapper *mapper.Mapper
	Refs   []store.EntityID
}

func (a *RemoveEdgeAction) Empty() bool { return len(a.Refs) == 0 }

func (a *RemoveEdgeAction) Perform(ctx context.Context) (Action, error) {
	pairs := make([][2]store.EntityID, 0, len(a.Refs))
	for _, id := range a.Refs {
		x, y, err := a.Mapper.Store().GetEdgeNodes(ctx, id)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]store.EntityID{x, y})
	}
	if err := a.Mapper.RemoveEdges(ctx, a.Refs); err != nil {
		return nil, err
	}
	return &UnremoveEdgeAction{Mapper: a.Mapper, Pairs: pairs}, nil
}

// UnremoveEdgeAction recreates edges between Pairs, inverting to a
// RemoveEdgeAction over the new edge IDs (spec §4.K).
type UnremoveEdgeAction struct {
	Mapper *mapper.Mapper
	Pairs  [][2]store.EntityID
}

func (a *UnremoveEdgeAction) Empty() bool { return len(a.Pairs) == 0 }

func (a *UnremoveEdgeAction) Perform(ctx context.Context) (Action, error) {
	ids, err := a.Mapper.UnremoveEdges(ctx, a.Pairs)
	if err != nil {
		return nil, err
	}
	return &RemoveEdgeAction{Mapper: a.Mapper, Refs: ids}, nil
}

// TranslateAction moves Target (and descendants) by Offset, inverting to
// the negated offset (spec §4.F, §4.K).
type TranslateAction struct {
	Mapper *mapper.Mapper
	Target store.EntityID
	Offset geometry.Vector3
}

func (a *TranslateAction) Empty() bool {
	return a.Offset == (geometry.Vector3{})
}

func (a *TranslateAction) Perform(ctx context.Context) (Action, error) {
	if err := a.Mapper.TranslateNode(ctx, a.Target, a.Offset); err != nil {
		return nil, err
	}
	return &TranslateAction{Mapper: a.Mapper, Target: a.Target, Offset: a.Offset.Scale(-1)}, nil
}

// SetNodeSpaceAction changes a node's effective center independently of
// its structural center — used to nudge a node's rendered position
// without moving its role in the graph (spec §4.F "eCenter"). Inverts to
// the eCenter it had before.
type SetNodeSpaceAction struct {
	Mapper    *mapper.Mapper
	Target    store.EntityID
	NewECenter geometry.Vector3
}

func (a *SetNodeSpaceAction) Empty() bool { return false }

func (a *SetNodeSpaceAction) Perform(ctx context.Context) (Action, error) {
	n := a.Mapper.Node(a.Target)
	old, err := n.EffectiveCenter(ctx)
	if err != nil {
		return nil, err
	}
	if err := n.SetEffectiveCenter(ctx, a.NewECenter); err != nil {
		return nil, err
	}
	return &SetNodeSpaceAction{Mapper: a.Mapper, Target: a.Target, NewECenter: old}, nil
}

// nodeSpaceAction overwrites a node's center, effective center, and radius
// together, inverting to a snapshot of whatever was there immediately
// before. Shared by DrawPathAction's per-node/parent recompute steps and
// NodeCleanupAction's parent recentering (spec §4.K), so a radius-only or
// eCenter-only caller just passes the field's current value through
// unchanged in the other two.
type nodeSpaceAction struct {
	Mapper  *mapper.Mapper
	Target  store.EntityID
	Center  geometry.Vector3
	ECenter geometry.Vector3
	Radius  float64
}

func (a *nodeSpaceAction) Empty() bool { return false }

func (a *nodeSpaceAction) Perform(ctx context.Context) (Action, error) {
	n := a.Mapper.Node(a.Target)
	oldCenter, err := n.Center(ctx)
	if err != nil {
		return nil, err
	}
	oldECenter, err := n.EffectiveCenter(ctx)
	if err != nil {
		return nil, err
	}
	oldRadius, err := n.Radius(ctx)
	if err != nil {
		return nil, err
	}

	if err := n.SetCenter(ctx, a.Center); err != nil {
		return nil, err
	}
	if err := n.SetEffectiveCenter(ctx, a.ECenter); err != nil {
		return nil, err
	}
	if err := n.SetRadius(ctx, a.Radius); err != nil {
		return nil, err
	}

	return &nodeSpaceAction{Mapper: a.Mapper, Target: a.Target, Center: oldCenter, ECenter: oldECenter, Radius: oldRadius}, nil
}

// NodeCleanupAction collapses near-duplicate "point" descendants of Parent
// left behind by a draw stroke: pairs closer than (r1+r2)/4 are merged by
// keeping the first and rewiring the second's edges onto it, then Parent's
// center/eCenter/radius are recomputed from the survivors (spec §4.K).
// AddBrush's drag trigger runs this as a trailing step when a stroke ends;
// it is not a separate user-visible undo entry.
type NodeCleanupAction struct {
	Mapper *mapper.Mapper
	Parent store.EntityID
}

func (a *NodeCleanupAction) Empty() bool { return a.Parent == store.NoEntity }

func (a *NodeCleanupAction) Perform(ctx context.Context) (Action, error) {
	if a.Parent == store.NoEntity {
		return &BulkAction{}, nil
	}

	parent := a.Mapper.Node(a.Parent)
	descendants, err := parent.GetAllDescendants(ctx)
	if err != nil {
		return nil, err
	}

	var points []store.EntityID
	for _, id := range descendants {
		role, err := a.Mapper.Node(id).Role(ctx)
		if err != nil {
			return nil, err
		}
		if role == store.RolePoint {
			points = append(points, id)
		}
	}

	type snapshot struct {
		center geometry.Vector3
		radius float64
	}
	snap := make(map[store.EntityID]snapshot, len(points))
	alive := make(map[store.EntityID]bool, len(points))
	for _, id := range points {
		n := a.Mapper.Node(id)
		c, err := n.Center(ctx)
		if err != nil {
			return nil, err
		}
		r, err := n.Radius(ctx)
		if err != nil {
			return nil, err
		}
		snap[id] = snapshot{c, r}
		alive[id] = true
	}

	var inverses []Action
	for i := 0; i < len(points); i++ {
		keep := points[i]
		if !alive[keep] {
			continue
		}
		ks := snap[keep]
		for j := i + 1; j < len(points); j++ {
			drop := points[j]
			if !alive[drop] {
				continue
			}
			ds := snap[drop]
			if ks.center.Distance(ds.center) >= (ks.radius+ds.radius)/4 {
				continue
			}
			inv, err := a.collapse(ctx, keep, drop)
			if err != nil {
				return nil, err
			}
			inverses = append(inverses, inv)
			alive[drop] = false
		}
	}

	var survivors []store.EntityID
	for _, id := range points {
		if alive[id] {
			survivors = append(survivors, id)
		}
	}
	if spaceInv, err := a.recenterParent(ctx, survivors); err != nil {
		return nil, err
	} else if spaceInv != nil {
		inverses = append(inverses, spaceInv)
	}

	return &BulkAction{Actions: reverseActions(inverses)}, nil
}

// collapse rewires drop's edges onto keep (an edge straight to keep is
// simply dropped rather than turned into a self-loop) and removes drop,
// returning the single inverse that undoes all of it in one step.
func (a *NodeCleanupAction) collapse(ctx context.Context, keep, drop store.EntityID) (Action, error) {
	edges, err := a.Mapper.Node(drop).GetEdges(ctx)
	if err != nil {
		return nil, err
	}

	var steps []Action
	for _, de := range edges {
		other, err := a.Mapper.Store().GetEdgeOtherNode(ctx, de.Edge, drop)
		if err != nil {
			return nil, err
		}
		if other == keep {
			inv, err := (&RemoveEdgeAction{Mapper: a.Mapper, Refs: []store.EntityID{de.Edge}}).Perform(ctx)
			if err != nil {
				return nil, err
			}
			steps = append(steps, inv)
			continue
		}
		createInv, err := (&UnremoveEdgeAction{Mapper: a.Mapper, Pairs: [][2]store.EntityID{{keep, other}}}).Perform(ctx)
		if err != nil {
			return nil, err
		}
		steps = append(steps, createInv)

		removeInv, err := (&RemoveEdgeAction{Mapper: a.Mapper, Refs: []store.EntityID{de.Edge}}).Perform(ctx)
		if err != nil {
			return nil, err
		}
		steps = append(steps, removeInv)
	}

	removeDropInv, err := (&RemoveAction{Mapper: a.Mapper, Refs: []store.EntityID{drop}}).Perform(ctx)
	if err != nil {
		return nil, err
	}
	steps = append(steps, removeDropInv)

	return &BulkAction{Actions: reverseActions(steps)}, nil
}

// recenterParent recomputes Parent's center/eCenter as the survivors'
// centroid and radius as the max distance to the farthest survivor.
func (a *NodeCleanupAction) recenterParent(ctx context.Context, survivors []store.EntityID) (Action, error) {
	if len(survivors) == 0 {
		return nil, nil
	}

	var sum geometry.Vector3
	centers := make([]geometry.Vector3, 0, len(survivors))
	for _, id := range survivors {
		c, err := a.Mapper.Node(id).Center(ctx)
		if err != nil {
			return nil, err
		}
		centers = append(centers, c)
		sum = sum.Add(c)
	}
	centroid := sum.Scale(1 / float64(len(survivors)))

	var radius float64
	for _, c := range centers {
		if d := centroid.Distance(c); d > radius {
			radius = d
		}
	}

	parent := a.Mapper.Node(a.Parent)
	oldCenter, err := parent.Center(ctx)
	if err != nil {
		return nil, err
	}
	oldECenter, err := parent.EffectiveCenter(ctx)
	if err != nil {
		return nil, err
	}
	oldRadius, err := parent.Radius(ctx)
	if err != nil {
		return nil, err
	}

	if err := parent.SetCenter(ctx, centroid); err != nil {
		return nil, err
	}
	if err := parent.SetEffectiveCenter(ctx, centroid); err != nil {
		return nil, err
	}
	if err := parent.SetRadius(ctx, radius); err != nil {
		return nil, err
	}

	return &nodeSpaceAction{Mapper: a.Mapper, Target: a.Parent, Center: oldCenter, ECenter: oldECenter, Radius: oldRadius}, nil
}

// DrawPathAction stamps point-node pairs along one bisected stretch of a
// drawn path (spec §4.K). AddBrush builds one of these per stroke and
// performs it once per frame with Points set to that frame's bisected
// path segment; PrevPoint/HasPrev/DistanceCarry/LastPathNode/LastPairNodes
// stay on the action between calls, so the placement spacing and the
// point/path node chains stay continuous across the whole stroke.
type DrawPathAction struct {
	Mapper      *mapper.Mapper
	RC          *RenderContext
	Parent      store.EntityID
	Layer       string
	Type        string
	RadiusUnits float64
	Points      []geometry.Vector3
	// First marks the stroke's very first call, forcing a stamp at
	// Points[0] regardless of the distance-since-last-placement gate.
	First bool
	// Last marks the stroke's final call, forcing a stamp at the last
	// point (the drag's terminal vertex).
	Last bool

	// Carried state, read at the start of Perform and written back by
	// Perform for the next call on the same action.
	PrevPoint     geometry.Vector3
	HasPrev       bool
	DistanceCarry float64
	LastPathNode  store.EntityID
	LastPairNodes []store.EntityID

	createdNodes []store.EntityID
	createdEdges []store.EntityID
}

func (a *DrawPathAction) Empty() bool { return len(a.Points) == 0 }

func (a *DrawPathAction) Perform(ctx context.Context) (Action, error) {
	if a.Empty() {
		return &BulkAction{}, nil
	}
	a.createdNodes, a.createdEdges = nil, nil

	var inverses []Action
	prev, hasPrev, carry := a.PrevPoint, a.HasPrev, a.DistanceCarry

	for i, v := range a.Points {
		var dist float64
		if hasPrev {
			dist = v.Distance(prev)
		}
		carry += dist
		isTerminal := a.Last && i == len(a.Points)-1
		forcePlace := a.First && i == 0
		if !forcePlace && !isTerminal && carry <= a.RadiusUnits/2 {
			prev, hasPrev = v, true
			continue
		}

		travel := geometry.Vector3{X: 1}
		if hasPrev {
			if d := v.Sub(prev).Normalize(); d != (geometry.Vector3{}) {
				travel = d
			}
		} else if i+1 < len(a.Points) {
			if d := a.Points[i+1].Sub(v).Normalize(); d != (geometry.Vector3{}) {
				travel = d
			}
		}
		perp := geometry.Vector3{X: -travel.Y, Y: travel.X}

		stampInv, err := a.stamp(ctx, v, perp, forcePlace || isTerminal)
		if err != nil {
			return nil, err
		}
		inverses = append(inverses, stampInv...)

		carry = 0
		prev, hasPrev = v, true
	}
	a.PrevPoint, a.HasPrev, a.DistanceCarry = prev, hasPrev, carry

	recomputeInv, err := a.recomputeCreatedNodeSpace(ctx)
	if err != nil {
		return nil, err
	}
	inverses = append(inverses, recomputeInv...)

	growInv, err := a.growParent(ctx)
	if err != nil {
		return nil, err
	}
	if growInv != nil {
		inverses = append(inverses, growInv)
	}

	return &BulkAction{Actions: reverseActions(inverses)}, nil
}

// stamp places one perpendicular point pair at center (two, if allSides,
// for the "all four sides" stroke endpoints), plus a path-type vertex if
// Type is registered as a path (spec §4.K).
func (a *DrawPathAction) stamp(ctx context.Context, center, perp geometry.Vector3, allSides bool) ([]Action, error) {
	var inverses []Action

	inv, err := a.placePointPair(ctx, center, perp)
	if err != nil {
		return nil, err
	}
	inverses = append(inverses, inv...)

	if allSides {
		travel := geometry.Vector3{X: perp.Y, Y: -perp.X}
		inv, err := a.placePointPair(ctx, center, travel)
		if err != nil {
			return nil, err
		}
		inverses = append(inverses, inv...)
	}

	if nt, ok := a.Mapper.NodeTypes.Get(a.Type); ok && nt.IsPath {
		inv, err := a.placePathVertex(ctx, center)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			inverses = append(inverses, inv)
		}
	}

	return inverses, nil
}

// placePointPair inserts two point children spaced 2*RadiusUnits apart
// along axis, connects them to each other and to the previous placement's
// pair (within- and across-placement edges), and Z-bumps both above
// whatever is drawn at center already (spec §4.K).
func (a *DrawPathAction) placePointPair(ctx context.Context, center, axis geometry.Vector3) ([]Action, error) {
	offset := axis.Scale(a.RadiusUnits)
	p1, p2 := center.Add(offset), center.Sub(offset)

	z, err := a.zBumpAt(ctx, center)
	if err != nil {
		return nil, err
	}
	p1.Z, p2.Z = z, z

	id1, err := a.Mapper.InsertNode(ctx, p1, store.RolePoint, mapper.InsertOptions{Parent: a.Parent, Layer: a.Layer})
	if err != nil {
		return nil, err
	}
	id2, err := a.Mapper.InsertNode(ctx, p2, store.RolePoint, mapper.InsertOptions{Parent: a.Parent, Layer: a.Layer})
	if err != nil {
		return nil, err
	}
	a.createdNodes = append(a.createdNodes, id1, id2)

	edgeID, err := a.Mapper.Store().CreateEdge(ctx, id1, id2)
	if err != nil {
		return nil, err
	}
	newEdges := []store.EntityID{edgeID}

	if len(a.LastPairNodes) == 2 {
		e1, err := a.Mapper.Store().CreateEdge(ctx, a.LastPairNodes[0], id1)
		if err != nil {
			return nil, err
		}
		e2, err := a.Mapper.Store().CreateEdge(ctx, a.LastPairNodes[1], id2)
		if err != nil {
			return nil, err
		}
		newEdges = append(newEdges, e1, e2)
	}
	a.createdEdges = append(a.createdEdges, newEdges...)
	a.LastPairNodes = []store.EntityID{id1, id2}

	return []Action{
		&RemoveEdgeAction{Mapper: a.Mapper, Refs: newEdges},
		&RemoveAction{Mapper: a.Mapper, Refs: []store.EntityID{id1, id2}},
	}, nil
}

// placePathVertex inserts a full-radius path-type node at center and
// chains it to the previous path vertex, when Parent's type is a path
// type (spec §4.K).
func (a *DrawPathAction) placePathVertex(ctx context.Context, center geometry.Vector3) (Action, error) {
	id, err := a.Mapper.InsertNode(ctx, center, store.RolePath, mapper.InsertOptions{
		Parent: a.Parent, Layer: a.Layer, Radius: a.RadiusUnits,
	})
	if err != nil {
		return nil, err
	}
	a.createdNodes = append(a.createdNodes, id)
	removeNode := &RemoveAction{Mapper: a.Mapper, Refs: []store.EntityID{id}}

	if a.LastPathNode == store.NoEntity {
		a.LastPathNode = id
		return removeNode, nil
	}

	edgeID, err := a.Mapper.Store().CreateEdge(ctx, a.LastPathNode, id)
	if err != nil {
		return nil, err
	}
	a.createdEdges = append(a.createdEdges, edgeID)
	a.LastPathNode = id

	return &BulkAction{Actions: []Action{
		&RemoveEdgeAction{Mapper: a.Mapper, Refs: []store.EntityID{edgeID}},
		removeNode,
	}}, nil
}

// zBumpAt looks up whatever is already drawn at center in the current
// layer and returns one altitude-increment above it, or 0 if nothing is
// drawn there yet (spec §4.K).
func (a *DrawPathAction) zBumpAt(ctx context.Context, center geometry.Vector3) (float64, error) {
	if a.RC == nil {
		return 0, nil
	}
	px, py := a.RC.mapPointToCanvas(center)
	part, ok := a.RC.GetDrawnNodePartAtCanvasPoint(px, py)
	if !ok || part.Layer != a.Layer {
		return 0, nil
	}
	under, err := a.Mapper.Node(part.NodeRef).EffectiveCenter(ctx)
	if err != nil {
		return 0, err
	}
	return under.Z + mapper.MetersToUnits(5), nil
}

// recomputeCreatedNodeSpace recomputes eCenter/radius for every node this
// call placed, from the node and its neighbors (spec §4.K).
func (a *DrawPathAction) recomputeCreatedNodeSpace(ctx context.Context) ([]Action, error) {
	var inverses []Action
	for _, id := range a.createdNodes {
		inv, err := a.recomputeNodeSpace(ctx, id)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			inverses = append(inverses, inv)
		}
	}
	return inverses, nil
}

func (a *DrawPathAction) recomputeNodeSpace(ctx context.Context, id store.EntityID) (Action, error) {
	n := a.Mapper.Node(id)
	group, err := n.GetSelfAndNeighbors(ctx)
	if err != nil {
		return nil, err
	}
	if len(group) == 0 {
		return nil, nil
	}

	var sum geometry.Vector3
	centers := make([]geometry.Vector3, 0, len(group))
	for _, gid := range group {
		c, err := a.Mapper.Node(gid).Center(ctx)
		if err != nil {
			return nil, err
		}
		centers = append(centers, c)
		sum = sum.Add(c)
	}
	mean := sum.Scale(1 / float64(len(group)))
	var radius float64
	for _, c := range centers {
		if d := mean.Distance(c); d > radius {
			radius = d
		}
	}

	center, err := n.Center(ctx)
	if err != nil {
		return nil, err
	}
	oldECenter, err := n.EffectiveCenter(ctx)
	if err != nil {
		return nil, err
	}
	oldRadius, err := n.Radius(ctx)
	if err != nil {
		return nil, err
	}
	if err := n.SetEffectiveCenter(ctx, mean); err != nil {
		return nil, err
	}
	if err := n.SetRadius(ctx, radius); err != nil {
		return nil, err
	}

	return &nodeSpaceAction{Mapper: a.Mapper, Target: id, Center: center, ECenter: oldECenter, Radius: oldRadius}, nil
}

// growParent grows Parent's radius to cover whatever this call placed
// farthest from its center (spec §4.K).
func (a *DrawPathAction) growParent(ctx context.Context) (Action, error) {
	if len(a.createdNodes) == 0 {
		return nil, nil
	}
	parent := a.Mapper.Node(a.Parent)
	center, err := parent.Center(ctx)
	if err != nil {
		return nil, err
	}
	eCenter, err := parent.EffectiveCenter(ctx)
	if err != nil {
		return nil, err
	}
	radius, err := parent.Radius(ctx)
	if err != nil {
		return nil, err
	}

	grown := radius
	for _, id := range a.createdNodes {
		c, err := a.Mapper.Node(id).Center(ctx)
		if err != nil {
			return nil, err
		}
		if d := center.Distance(c); d > grown {
			grown = d
		}
	}
	if grown <= radius {
		return nil, nil
	}

	if err := parent.SetRadius(ctx, grown); err != nil {
		return nil, err
	}
	return &nodeSpaceAction{Mapper: a.Mapper, Target: a.Parent, Center: center, ECenter: eCenter, Radius: radius}, nil
}
