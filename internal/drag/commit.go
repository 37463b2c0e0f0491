package drag

// Committer applies a resolved drop plan to the outline document. The
// resolver already rejected cyclic targets, so commit never re-checks;
// individual mutation failures surface as errors (moves) or are skipped
// (mirrors) per the interaction contract.
type Committer struct {
	Tree   TreeReader
	Writer TreeWriter
	// Origin tags the mutations for the document's history ("drag" when
	// empty).
	Origin string
}

func (c *Committer) origin() string {
	if c.Origin == "" {
		return "drag"
	}
	return c.Origin
}

// Commit applies the plan with move semantics, or mirror semantics when
// mirror is true.
func (c *Committer) Commit(intent *Intent, plan *DropPlan, mirror bool) error {
	if intent == nil || plan == nil || c.Writer == nil {
		return nil
	}
	if mirror {
		return c.commitMirrors(intent, plan)
	}
	return c.commitMoves(intent, plan)
}

// commitMoves moves the bundle's canonical edges to the drop site one at a
// time, in document order, so the bundle lands contiguously in its original
// relative order.
//
// Each move splices the live sibling list, so the per-edge index starts at
// the plan's insert position plus the edge's rank in the bundle, adjusted
// for bundle edges that still sit at or before the target slot: those have
// not vacated their original positions yet and inflate the index until
// their own move runs.
func (c *Committer) commitMoves(intent *Intent, plan *DropPlan) error {
	canonicals := intent.Bundle.CanonicalEdgeIDs
	siblings := childList(c.Tree, plan.TargetParentNodeID)

	targetIdx := -1
	if plan.Type == DropSibling {
		targetIdx = indexOf(siblings, plan.TargetEdgeID)
	}
	origIdx := make(map[string]int, len(canonicals))
	for _, ce := range canonicals {
		origIdx[ce] = indexOf(siblings, ce)
	}

	for i, ce := range canonicals {
		idx := plan.InsertIndex + i
		if targetIdx >= 0 {
			for _, later := range canonicals[i+1:] {
				if j := origIdx[later]; j >= 0 && j <= targetIdx {
					idx++
				}
			}
		}
		if err := c.Writer.MoveEdge(ce, plan.TargetParentNodeID, idx, c.origin()); err != nil {
			return err
		}
	}
	return nil
}

// commitMirrors creates one mirror edge per dragged canonical edge inside a
// single transaction. Originals never vacate their slots, so the insertion
// point is recomputed from the live child order rather than taken from the
// move-adjusted plan index. A creation the document rejects is skipped; the
// rest of the batch proceeds and nothing already created rolls back.
func (c *Committer) commitMirrors(intent *Intent, plan *DropPlan) error {
	base := plan.InsertIndex
	if plan.Type == DropSibling {
		siblings := childList(c.Tree, plan.TargetParentNodeID)
		if j := indexOf(siblings, plan.TargetEdgeID); j >= 0 {
			base = j + 1
		}
	}
	return c.Writer.WithTransaction(func() error {
		offset := 0
		for _, ce := range intent.Bundle.CanonicalEdgeIDs {
			snap, ok := c.Tree.EdgeSnapshot(ce)
			if !ok {
				continue
			}
			if _, err := c.Writer.CreateMirrorEdge(snap.ChildNodeID, plan.TargetParentNodeID, base+offset, c.origin()); err != nil {
				continue
			}
			offset++
		}
		return nil
	}, c.origin())
}
