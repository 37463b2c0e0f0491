package drag

import (
	"testing"
)

func (f *fixture) newController(t *testing.T, tuning Tuning, frames FrameScheduler, regions func() []ScrollRegion) (*Controller, *Coordinator) {
	t.Helper()
	coord := NewCoordinator(f.provider, f.doc)
	ctrl, err := NewController(ControllerConfig{
		PaneID:        "p1",
		Coordinator:   coord,
		Committer:     &Committer{Tree: f.doc, Writer: f.doc},
		Rows:          f.provider.panes["p1"].lookup,
		ScrollRegions: regions,
		Frames:        frames,
		Tuning:        tuning,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ctrl.Start()
	return ctrl, coord
}

func TestController_BelowThresholdKeepsIntent(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	ctrl, coord := f.newController(t, Tuning{}, nil, nil)

	if !ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{}) {
		t.Fatalf("PointerDown not captured")
	}
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: 4, Y: 0.5, Alt: true})

	st := coord.State()
	if st.Active != nil {
		t.Fatalf("3-unit move promoted to active drag")
	}
	if st.Intent == nil || !st.Intent.Alt {
		t.Fatalf("intent not kept alive with refreshed Alt: %+v", st.Intent)
	}

	// Releasing below the threshold dissolves the intent without a commit.
	if err := ctrl.PointerUp(PointerEvent{PointerID: 1, X: 4, Y: 0.5}); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}
	if st := coord.State(); st.Dragging() || st.OwnerPaneID != "" {
		t.Fatalf("state not cleared after sub-threshold release: %+v", st)
	}
}

func TestController_ThresholdPromotesToActiveDrag(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	ctrl, coord := f.newController(t, Tuning{}, nil, nil)

	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{})
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: 5.5, Y: 0.5})

	st := coord.State()
	if st.Intent != nil {
		t.Fatalf("intent survived promotion")
	}
	if st.Active == nil {
		t.Fatalf("4.5-unit move did not promote")
	}
}

func TestController_ForeignPointerIgnored(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B"})
	ctrl, coord := f.newController(t, Tuning{}, nil, nil)

	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{})
	ctrl.PointerMove(PointerEvent{PointerID: 2, X: 40, Y: 1.5})
	if st := coord.State(); st.Active != nil {
		t.Fatalf("foreign pointer promoted the drag")
	}
	ctrl.PointerUp(PointerEvent{PointerID: 2, X: 40, Y: 1.5})
	if st := coord.State(); st.Intent == nil {
		t.Fatalf("foreign pointer release consumed the intent")
	}
}

func TestController_DragCommitReorders(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	ctrl, coord := f.newController(t, Tuning{ActivateThreshold: 1}, nil, nil)

	g, _ := f.provider.RowGeometry("p1", f.edges["C"])
	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{})
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: g.Bullet.Left + 1, Y: f.rowY(t, "C")})
	if err := ctrl.PointerUp(PointerEvent{PointerID: 1, X: g.Bullet.Left + 1, Y: f.rowY(t, "C")}); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if got := f.rootTexts(); !sameStrings(got, []string{"B", "C", "A"}) {
		t.Fatalf("root order = %v, want [B C A]", got)
	}
	if st := coord.State(); st.Dragging() {
		t.Fatalf("drag state survived the commit")
	}
}

func TestController_DragFromMirrorProjectedRowMovesCanonicalEdge(t *testing.T) {
	f := seedFixture(t, map[string][]string{"A": {"C"}}, []string{"A", "B"})
	if _, err := f.doc.CreateMirrorEdge(f.nodes["A"], nil, 2, "test"); err != nil {
		t.Fatalf("CreateMirrorEdge: %v", err)
	}
	f.relayout()
	ctrl, coord := f.newController(t, Tuning{ActivateThreshold: 1}, nil, nil)

	all := f.doc.BuildRows("", nil)
	projected := all[len(all)-1]
	if projected.SourceEdgeID != f.edges["C"] || projected.EdgeID == f.edges["C"] {
		t.Fatalf("last row = %+v, want a projected C occurrence", projected)
	}
	start, _ := f.provider.RowGeometry("p1", projected.EdgeID)
	target, _ := f.provider.RowGeometry("p1", f.edges["B"])

	// Grab C through the mirror's subtree and drop it after B at the root.
	ctrl.PointerDown(PointerEvent{PointerID: 1, X: start.Bullet.Left + 1, Y: start.Row.Top + 0.5}, projected.EdgeID, Selection{})
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: target.Bullet.Left + 1, Y: target.Row.Top + 0.5})
	if err := ctrl.PointerUp(PointerEvent{PointerID: 1, X: target.Bullet.Left + 1, Y: target.Row.Top + 0.5}); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if got := f.rootTexts(); !sameStrings(got, []string{"A", "B", "C", "A"}) {
		t.Fatalf("root order = %v, want [A B C A]", got)
	}
	if kids := f.doc.ChildEdgeIDs(f.nodes["A"]); len(kids) != 0 {
		t.Fatalf("A still has children %v after the move", kids)
	}
	if st := coord.State(); st.Dragging() {
		t.Fatalf("drag state survived the commit")
	}
}

func TestController_AltDragCreatesMirrors(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	ctrl, _ := f.newController(t, Tuning{ActivateThreshold: 1}, nil, nil)

	sel := f.selection("B", "C")
	g, _ := f.provider.RowGeometry("p1", f.edges["A"])
	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 5, Y: 1.5}, f.edges["B"], sel)
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: g.Bullet.Left + 1, Y: f.rowY(t, "A")})
	if err := ctrl.PointerUp(PointerEvent{PointerID: 1, X: g.Bullet.Left + 1, Y: f.rowY(t, "A"), Alt: true}); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	roots := f.doc.RootEdgeIDs()
	if len(roots) != 5 {
		t.Fatalf("root count = %d, want 5 (two new mirrors)", len(roots))
	}
	// Mirrors of B then C land right after A, in that order.
	for i, wantNode := range []string{f.nodes["B"], f.nodes["C"]} {
		snap, ok := f.doc.EdgeSnapshot(roots[1+i])
		if !ok {
			t.Fatalf("mirror edge missing")
		}
		if snap.MirrorOfNodeID == nil || *snap.MirrorOfNodeID != wantNode {
			t.Fatalf("root[%d] mirrorOf = %v, want %q", 1+i, snap.MirrorOfNodeID, wantNode)
		}
	}
	// Originals stay where they were.
	for i, name := range []string{"B", "C"} {
		snap, _ := f.doc.EdgeSnapshot(roots[3+i])
		if snap.ParentNodeID != nil || snap.ChildNodeID != f.nodes[name] {
			t.Fatalf("original %s moved: %+v", name, snap)
		}
	}
}

func TestController_CancelAbortsWithoutCommit(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	ctrl, coord := f.newController(t, Tuning{ActivateThreshold: 1}, nil, nil)

	g, _ := f.provider.RowGeometry("p1", f.edges["C"])
	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{})
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: g.Bullet.Left + 1, Y: f.rowY(t, "C")})
	ctrl.PointerCancel(PointerEvent{PointerID: 1})

	if got := f.rootTexts(); !sameStrings(got, []string{"A", "B", "C"}) {
		t.Fatalf("cancel committed anyway: %v", got)
	}
	if st := coord.State(); st.Dragging() || st.OwnerPaneID != "" {
		t.Fatalf("cancel left drag state behind: %+v", st)
	}
}

func TestController_StopMidDragAborts(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	ctrl, coord := f.newController(t, Tuning{ActivateThreshold: 1}, nil, nil)

	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{})
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: 3, Y: 2.5})
	ctrl.Stop()

	if st := coord.State(); st.Dragging() || st.OwnerPaneID != "" {
		t.Fatalf("Stop left drag state behind: %+v", st)
	}
	if _, ok := coord.Pane("p1"); ok {
		t.Fatalf("Stop left the pane registered")
	}
	if got := f.rootTexts(); !sameStrings(got, []string{"A", "B", "C"}) {
		t.Fatalf("Stop committed anyway: %v", got)
	}
}

func TestController_CrossPaneResolution(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B", "C"})
	ctrl, coord := f.newController(t, Tuning{ActivateThreshold: 1}, nil, nil)

	// A second pane over the same document, shifted right.
	rows := f.doc.BuildRows("", nil)
	pane2 := layoutPane(Rect{Left: 100, Top: 0, Width: testRowWidth, Height: 20}, rows)
	f.provider.panes["p2"] = pane2
	coord.RegisterPane("p2", PaneRegistration{Row: pane2.lookup})

	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{})
	g, _ := f.provider.RowGeometry("p2", f.edges["C"])
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: g.Bullet.Left + 1, Y: g.Row.Top + 0.5})

	st := coord.State()
	if st.Active == nil || st.Active.Plan == nil {
		t.Fatalf("no plan across panes: %+v", st.Active)
	}
	if st.Active.Plan.PaneID != "p2" {
		t.Fatalf("plan pane = %q, want p2", st.Active.Plan.PaneID)
	}
	if st.OwnerPaneID != "p1" {
		t.Fatalf("owner = %q, want p1 (origin pane keeps ownership)", st.OwnerPaneID)
	}
}

func TestController_SecondPaneCannotStealDrag(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B"})
	_, coord := f.newController(t, Tuning{}, nil, nil)

	ctrl2, err := NewController(ControllerConfig{
		PaneID:      "p2",
		Coordinator: coord,
		Rows:        f.provider.panes["p1"].lookup,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ctrl2.Start()

	if !coordBegin(t, coord, f, "p1") {
		t.Fatalf("first claim failed")
	}
	if ctrl2.PointerDown(PointerEvent{PointerID: 7, X: 1, Y: 0.5}, f.edges["B"], Selection{}) {
		t.Fatalf("second pane claimed an owned drag")
	}
}

func coordBegin(t *testing.T, coord *Coordinator, f *fixture, paneID string) bool {
	t.Helper()
	return coord.BeginIntent(paneID, &Intent{
		PaneID:       paneID,
		PointerID:    1,
		AnchorEdgeID: f.edges["A"],
		Bundle:       singleBundle(f.edges["A"], f.provider.panes[paneID].lookup, f.doc),
	})
}

func TestCoordinator_SubscribersSeeTransitions(t *testing.T) {
	f := seedFixture(t, nil, []string{"A", "B"})
	ctrl, coord := f.newController(t, Tuning{ActivateThreshold: 1}, nil, nil)

	var states []State
	unsub := coord.Subscribe(func(s State) { states = append(states, s) })
	defer unsub()

	ctrl.PointerDown(PointerEvent{PointerID: 1, X: 1, Y: 0.5}, f.edges["A"], Selection{})
	ctrl.PointerMove(PointerEvent{PointerID: 1, X: 3, Y: 1.5})
	ctrl.PointerUp(PointerEvent{PointerID: 1, X: 3, Y: 1.5})

	if len(states) < 3 {
		t.Fatalf("subscriber saw %d transitions, want at least 3", len(states))
	}
	sawIntent, sawActive, sawClear := false, false, false
	for _, s := range states {
		if s.Intent != nil {
			sawIntent = true
		}
		if s.Active != nil {
			sawActive = true
		}
		if !s.Dragging() {
			sawClear = true
		}
	}
	if !sawIntent || !sawActive || !sawClear {
		t.Fatalf("transitions missed: intent=%v active=%v clear=%v", sawIntent, sawActive, sawClear)
	}
}
