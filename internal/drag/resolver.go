package drag

import "mirador/internal/model"

// Env bundles the external lookups one resolution call reads through. All
// calls are synchronous and assumed snapshot-consistent for the duration of
// the call.
type Env struct {
	Spatial Provider
	Tree    TreeReader
	Pane    func(paneID string) (PaneRegistration, bool)
}

// ResolveDropPlan maps a pointer position to the structural edit it
// implies, or nil when no valid drop exists there. It is a pure function of
// the pointer, the intent, and the live geometry: no side effects, so every
// pointer move can call it and every failure degrades to "no indicator this
// frame".
//
// Zone classification by pointer X, in priority order: at or right of the
// text cell's left edge the drop becomes a child of the hovered row; between
// the bullet and the text cell it becomes a sibling after the hovered row;
// left of the bullet the span down to the row's left edge is divided into
// equal slices, one per ancestor, and the slice under the pointer retargets
// the insertion to that ancestor's level.
func ResolveDropPlan(x, y float64, intent *Intent, env Env) *DropPlan {
	if intent == nil || env.Spatial == nil || env.Tree == nil || env.Pane == nil {
		return nil
	}
	hit, ok := env.Spatial.ElementFromPoint(x, y)
	if !ok || hit.EdgeID == "" {
		return nil
	}
	reg, ok := env.Pane(hit.PaneID)
	if !ok || reg.Row == nil {
		return nil
	}
	row, ok := reg.Row(hit.EdgeID)
	if !ok {
		return nil
	}

	// A row cannot be dropped on itself or its own mirror: the hovered
	// row's canonical edge colliding with the dragged set rejects both.
	canonical := canonicalOf(row, env.Tree)
	if canonical == "" || intent.Bundle.CanonicalIDSet[canonical] {
		return nil
	}

	geom, ok := env.Spatial.RowGeometry(hit.PaneID, hit.EdgeID)
	if !ok {
		return nil
	}
	container, ok := env.Spatial.ContainerBounds(hit.PaneID)
	if !ok {
		return nil
	}

	switch {
	case x >= geom.Text.Left:
		return resolveChild(hit.PaneID, row.EdgeID, row.NodeID, geom, container, intent, env)
	case x >= geom.Bullet.Left:
		return resolveSibling(hit.PaneID, sourceOf(row), row.EdgeID, geom, geom.Bullet.Left, intent, env, container)
	default:
		if len(row.AncestorEdgeIDs) == 0 {
			// Root rows have no shallower level to retarget to.
			return resolveSibling(hit.PaneID, sourceOf(row), row.EdgeID, geom, geom.Bullet.Left, intent, env, container)
		}
		return resolveAncestor(x, hit.PaneID, row, reg, geom, intent, env, container)
	}
}

func resolveChild(paneID, targetEdgeID, targetNodeID string, geom RowGeometry, container Rect, intent *Intent, env Env) *DropPlan {
	if wouldCycle(env.Tree, targetNodeID, intent.Bundle.NodeIDSet) {
		return nil
	}
	parent := targetNodeID
	return &DropPlan{
		PaneID:             paneID,
		Type:               DropChild,
		TargetEdgeID:       targetEdgeID,
		TargetParentNodeID: &parent,
		InsertIndex:        0,
		Indicator: DropIndicator{
			EdgeID: targetEdgeID,
			Left:   geom.Text.Left - geom.Row.Left,
			Width:  container.Right() - geom.Text.Left,
			Type:   DropChild,
		},
	}
}

// resolveSibling plans an insertion after anchorEdgeID, a document edge id,
// within the anchor's current parent. indicatorEdgeID/indicatorGeom describe
// the hovered row the indicator is drawn relative to, which for ancestor
// retargets and mirror-projected rows differs from the anchor edge.
func resolveSibling(paneID, anchorEdgeID, indicatorEdgeID string, indicatorGeom RowGeometry, indicatorLeft float64, intent *Intent, env Env, container Rect) *DropPlan {
	anchorSnap, ok := env.Tree.EdgeSnapshot(anchorEdgeID)
	if !ok {
		return nil
	}
	targetParent := anchorSnap.ParentNodeID
	if targetParent != nil && wouldCycle(env.Tree, *targetParent, intent.Bundle.NodeIDSet) {
		return nil
	}

	siblings := childList(env.Tree, targetParent)
	anchorIdx := indexOf(siblings, anchorEdgeID)
	if anchorIdx < 0 {
		return nil
	}

	// Insertion index in canonical child order, then one decrement per
	// dragged canonical edge that will vacate a slot at or before the
	// anchor; this keeps the landing position stable for a contiguous
	// N-item drag regardless of direction.
	insert := anchorIdx + 1
	for _, ce := range intent.Bundle.CanonicalEdgeIDs {
		if j := indexOf(siblings, ce); j >= 0 && j <= anchorIdx {
			insert--
		}
	}

	return &DropPlan{
		PaneID:             paneID,
		Type:               DropSibling,
		TargetEdgeID:       anchorEdgeID,
		TargetParentNodeID: copyNodeID(targetParent),
		InsertIndex:        insert,
		Indicator: DropIndicator{
			EdgeID: indicatorEdgeID,
			Left:   indicatorLeft - indicatorGeom.Row.Left,
			Width:  container.Right() - indicatorLeft,
			Type:   DropSibling,
		},
	}
}

func resolveAncestor(x float64, paneID string, row model.OutlineRow, reg PaneRegistration, geom RowGeometry, intent *Intent, env Env, container Rect) *DropPlan {
	zone := geom.Bullet.Left - geom.Row.Left
	if zone <= 0 {
		return nil
	}
	n := len(row.AncestorEdgeIDs)
	sliceWidth := zone / float64(n)
	slice := int((x - geom.Row.Left) / sliceWidth)
	if slice < 0 {
		slice = 0
	}
	if slice > n-1 {
		slice = n - 1
	}
	anchorRowID := row.AncestorEdgeIDs[slice]
	anchorRow, ok := reg.Row(anchorRowID)
	if !ok {
		return nil
	}

	// Indent the indicator to the selected ancestor's level; use its real
	// bullet position when the ancestor row is on screen, the slice
	// boundary otherwise.
	indicatorLeft := geom.Row.Left + sliceWidth*float64(slice)
	if ancestorGeom, ok := env.Spatial.RowGeometry(paneID, anchorRowID); ok {
		indicatorLeft = ancestorGeom.Bullet.Left
	}
	return resolveSibling(paneID, sourceOf(anchorRow), row.EdgeID, geom, indicatorLeft, intent, env, container)
}

// wouldCycle walks parent edges upward from the candidate target parent.
// Finding a dragged node means the drop would make a dragged subtree its
// own ancestor. A failed or missing lookup terminates the walk as "no
// cycle found" rather than failing.
func wouldCycle(tree TreeReader, candidateParentNodeID string, draggedNodes map[string]bool) bool {
	seen := map[string]bool{}
	cur := candidateParentNodeID
	for {
		if draggedNodes[cur] {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		edgeID, ok := tree.ParentEdgeID(cur)
		if !ok {
			return false
		}
		snap, ok := tree.EdgeSnapshot(edgeID)
		if !ok || snap.ParentNodeID == nil {
			return false
		}
		cur = *snap.ParentNodeID
	}
}

func copyNodeID(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
