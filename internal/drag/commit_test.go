package drag

import (
	"testing"
)

func (f *fixture) committer() *Committer {
	return &Committer{Tree: f.doc, Writer: f.doc}
}

// bundleIntent builds an intent whose bundle is computed from the given
// selection, anchored at the first named row.
func (f *fixture) bundleIntent(t *testing.T, names ...string) *Intent {
	t.Helper()
	intent := f.intentFor(t, names[0])
	intent.Bundle = BuildBundle(f.edges[names[0]], f.selection(names...), f.provider.panes["p1"].lookup, f.doc)
	if len(intent.Bundle.CanonicalEdgeIDs) != len(names) {
		t.Fatalf("bundle collapsed to %v", intent.Bundle.EdgeIDs)
	}
	return intent
}

func (f *fixture) resolveAt(t *testing.T, intent *Intent, x, y float64) *DropPlan {
	t.Helper()
	plan := ResolveDropPlan(x, y, intent, f.env())
	if plan == nil {
		t.Fatalf("no plan at (%v, %v)", x, y)
	}
	return plan
}

func TestCommit_ForwardBundleMoveKeepsOrder(t *testing.T) {
	f := seedFixture(t, nil, []string{"X", "A", "B", "Y", "Z"})
	intent := f.bundleIntent(t, "A", "B")
	plan := f.resolveAt(t, intent, 1, f.rowY(t, "Y"))

	if plan.InsertIndex != 2 {
		t.Fatalf("insert index = %d, want 2", plan.InsertIndex)
	}
	if err := f.committer().Commit(intent, plan, false); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := f.rootTexts(); !sameStrings(got, []string{"X", "Y", "A", "B", "Z"}) {
		t.Fatalf("root order = %v, want [X Y A B Z]", got)
	}
}

func TestCommit_BackwardBundleMoveKeepsOrder(t *testing.T) {
	f := seedFixture(t, nil, []string{"X", "Y", "A", "B", "Z"})
	intent := f.bundleIntent(t, "A", "B")
	plan := f.resolveAt(t, intent, 1, f.rowY(t, "X"))

	if err := f.committer().Commit(intent, plan, false); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := f.rootTexts(); !sameStrings(got, []string{"X", "A", "B", "Y", "Z"}) {
		t.Fatalf("root order = %v, want [X A B Y Z]", got)
	}
}

func TestCommit_ChildDropReparents(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B"})
	intent := f.intentFor(t, "B")
	g, _ := f.provider.RowGeometry("p1", f.edges["A"])
	plan := f.resolveAt(t, intent, g.Text.Left+2, f.rowY(t, "A"))

	if plan.Type != DropChild {
		t.Fatalf("plan type = %q, want child", plan.Type)
	}
	if err := f.committer().Commit(intent, plan, false); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := f.rootTexts(); !sameStrings(got, []string{"A"}) {
		t.Fatalf("roots = %v, want [A]", got)
	}
	kids := f.doc.ChildEdgeIDs(f.nodes["A"])
	if len(kids) != 1 || kids[0] != f.edges["B"] {
		t.Fatalf("children of A = %v, want [%s]", kids, f.edges["B"])
	}
}

func TestCommit_MoveFailureSurfacesError(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B"})
	intent := f.intentFor(t, "A")
	intent.Bundle.CanonicalEdgeIDs = []string{"edge-gone"}
	plan := f.resolveAt(t, intent, 1, f.rowY(t, "B"))

	if err := f.committer().Commit(intent, plan, false); err == nil {
		t.Fatalf("missing edge committed without error")
	}
	if got := f.rootTexts(); !sameStrings(got, []string{"A", "B"}) {
		t.Fatalf("failed commit mutated the document: %v", got)
	}
}

func TestCommit_MirrorBatchSkipsStaleEdges(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	intent := f.bundleIntent(t, "B", "C")
	intent.Bundle.CanonicalEdgeIDs = []string{f.edges["B"], "edge-gone", f.edges["C"]}
	plan := f.resolveAt(t, intent, 1, f.rowY(t, "A"))

	if err := f.committer().Commit(intent, plan, true); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	roots := f.doc.RootEdgeIDs()
	if len(roots) != 5 {
		t.Fatalf("root count = %d, want 5 (stale edge skipped, two mirrors added)", len(roots))
	}
	for i, want := range []string{"B", "C"} {
		snap, _ := f.doc.EdgeSnapshot(roots[1+i])
		if snap.MirrorOfNodeID == nil || *snap.MirrorOfNodeID != f.nodes[want] {
			t.Fatalf("root[%d] is not a mirror of %s: %+v", 1+i, want, snap)
		}
	}
}

func TestCommit_MirrorRejectionSkipsJustThatEdge(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B"})
	intent := f.bundleIntent(t, "A", "B")
	// A child drop on A's own row: mirroring A under itself is rejected by
	// the document, mirroring B there is fine.
	parent := f.nodes["A"]
	plan := &DropPlan{
		PaneID:             "p1",
		Type:               DropChild,
		TargetEdgeID:       f.edges["A"],
		TargetParentNodeID: &parent,
		InsertIndex:        0,
	}

	if err := f.committer().Commit(intent, plan, true); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	kids := f.doc.ChildEdgeIDs(f.nodes["A"])
	if len(kids) != 1 {
		t.Fatalf("children of A = %v, want exactly the mirror of B", kids)
	}
	snap, _ := f.doc.EdgeSnapshot(kids[0])
	if snap.MirrorOfNodeID == nil || *snap.MirrorOfNodeID != f.nodes["B"] {
		t.Fatalf("child of A is not a mirror of B: %+v", snap)
	}
	// Originals stay at the root.
	if got := f.rootTexts(); !sameStrings(got, []string{"A", "B"}) {
		t.Fatalf("mirror commit moved originals: %v", got)
	}
}

func TestCommit_NilPlanAndNilWriterAreNoOps(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B"})
	intent := f.intentFor(t, "A")
	if err := f.committer().Commit(intent, nil, false); err != nil {
		t.Fatalf("nil plan: %v", err)
	}
	c := &Committer{Tree: f.doc}
	plan := f.resolveAt(t, intent, 1, f.rowY(t, "B"))
	if err := c.Commit(intent, plan, false); err != nil {
		t.Fatalf("nil writer: %v", err)
	}
	if got := f.rootTexts(); !sameStrings(got, []string{"A", "B"}) {
		t.Fatalf("no-op commit mutated the document: %v", got)
	}
}
