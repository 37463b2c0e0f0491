package drag

import (
	"testing"

	"mirador/internal/model"
	"mirador/internal/outline"
)

// Test fixtures: a deterministic spatial provider over a hand-laid-out
// pane, plus helpers to seed documents by node text.

const (
	testRowWidth    = 80.0
	testIndentWidth = 4.0
	testBulletWidth = 2.0
)

type fakePane struct {
	container Rect
	order     []string // visible edge ids, top to bottom
	geometry  map[string]RowGeometry
	rows      map[string]model.OutlineRow
}

type fakeProvider struct {
	panes map[string]*fakePane
}

func (p *fakeProvider) ElementFromPoint(x, y float64) (PointHit, bool) {
	for id, pane := range p.panes {
		if !pane.container.Contains(x, y) {
			continue
		}
		for _, edgeID := range pane.order {
			if pane.geometry[edgeID].Row.Contains(x, y) {
				return PointHit{PaneID: id, EdgeID: edgeID}, true
			}
		}
		return PointHit{PaneID: id}, true
	}
	return PointHit{}, false
}

func (p *fakeProvider) RowGeometry(paneID, edgeID string) (RowGeometry, bool) {
	pane, ok := p.panes[paneID]
	if !ok {
		return RowGeometry{}, false
	}
	g, ok := pane.geometry[edgeID]
	return g, ok
}

func (p *fakeProvider) ContainerBounds(paneID string) (Rect, bool) {
	pane, ok := p.panes[paneID]
	if !ok {
		return Rect{}, false
	}
	return pane.container, true
}

// layoutPane lays the pane's visible rows out one per unit of height, with
// indent-proportional bullet and text cells, mirroring how the TUI host
// measures its render.
func layoutPane(container Rect, rows []model.OutlineRow) *fakePane {
	pane := &fakePane{
		container: container,
		geometry:  map[string]RowGeometry{},
		rows:      map[string]model.OutlineRow{},
	}
	for i, row := range rows {
		y := container.Top + float64(i)
		bulletLeft := container.Left + float64(row.Depth)*testIndentWidth
		textLeft := bulletLeft + testIndentWidth
		pane.order = append(pane.order, row.EdgeID)
		pane.geometry[row.EdgeID] = RowGeometry{
			Row:    Rect{Left: container.Left, Top: y, Width: testRowWidth, Height: 1},
			Bullet: Rect{Left: bulletLeft, Top: y, Width: testBulletWidth, Height: 1},
			Text:   Rect{Left: textLeft, Top: y, Width: container.Left + testRowWidth - textLeft, Height: 1},
		}
		pane.rows[row.EdgeID] = row
	}
	return pane
}

func (p *fakePane) lookup(edgeID string) (model.OutlineRow, bool) {
	r, ok := p.rows[edgeID]
	return r, ok
}

type fixture struct {
	doc      *outline.Doc
	provider *fakeProvider
	nodes    map[string]string // text -> node id
	edges    map[string]string // text -> canonical edge id
}

// seedFixture builds a document from shape (text -> child texts, roots in
// rootOrder) and lays its rows out in pane "p1".
func seedFixture(t *testing.T, shape map[string][]string, rootOrder []string) *fixture {
	t.Helper()
	doc := outline.NewDoc()
	nodes := map[string]string{}
	edges := map[string]string{}
	var add func(name string, parent *string)
	add = func(name string, parent *string) {
		nodeID, edgeID, err := doc.AddNode(parent, name)
		if err != nil {
			t.Fatalf("AddNode(%q): %v", name, err)
		}
		nodes[name] = nodeID
		edges[name] = edgeID
		for _, child := range shape[name] {
			p := nodeID
			add(child, &p)
		}
	}
	for _, name := range rootOrder {
		add(name, nil)
	}
	f := &fixture{
		doc:      doc,
		provider: &fakeProvider{panes: map[string]*fakePane{}},
		nodes:    nodes,
		edges:    edges,
	}
	f.relayout()
	return f
}

// relayout rebuilds pane "p1" from the document's current rows.
func (f *fixture) relayout() {
	rows := f.doc.BuildRows("", nil)
	f.provider.panes["p1"] = layoutPane(Rect{Left: 0, Top: 0, Width: testRowWidth, Height: 20}, rows)
}

func (f *fixture) env() Env {
	return Env{
		Spatial: f.provider,
		Tree:    f.doc,
		Pane: func(paneID string) (PaneRegistration, bool) {
			pane, ok := f.provider.panes[paneID]
			if !ok {
				return PaneRegistration{}, false
			}
			return PaneRegistration{Row: pane.lookup}, true
		},
	}
}

// intentFor builds a single-row drag intent anchored at the named row.
func (f *fixture) intentFor(t *testing.T, name string) *Intent {
	t.Helper()
	edgeID, ok := f.edges[name]
	if !ok {
		t.Fatalf("unknown row %q", name)
	}
	return &Intent{
		PaneID:       "p1",
		PointerID:    1,
		AnchorEdgeID: edgeID,
		Bundle:       singleBundle(edgeID, f.provider.panes["p1"].lookup, f.doc),
	}
}

// rowY returns the vertical center of the named row in pane "p1".
func (f *fixture) rowY(t *testing.T, name string) float64 {
	t.Helper()
	g, ok := f.provider.RowGeometry("p1", f.edges[name])
	if !ok {
		t.Fatalf("row %q not laid out", name)
	}
	return g.Row.Top + 0.5
}

func (f *fixture) rootTexts() []string {
	var out []string
	for _, id := range f.doc.RootEdgeIDs() {
		snap, ok := f.doc.EdgeSnapshot(id)
		if !ok {
			out = append(out, id)
			continue
		}
		out = append(out, f.doc.NodeText(snap.ChildNodeID))
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type manualFrames struct {
	pending func()
}

func (m *manualFrames) Request(fn func()) { m.pending = fn }
func (m *manualFrames) Cancel()           { m.pending = nil }

// Step runs the pending frame, if any.
func (m *manualFrames) Step() {
	fn := m.pending
	m.pending = nil
	if fn != nil {
		fn()
	}
}

type fakeRegion struct {
	vp     Rect
	offset float64
	max    float64
	steps  []float64
}

func (r *fakeRegion) Viewport() Rect { return r.vp }

func (r *fakeRegion) CanScroll(down bool) bool {
	if down {
		return r.offset < r.max
	}
	return r.offset > 0
}

func (r *fakeRegion) ScrollBy(delta float64) {
	r.steps = append(r.steps, delta)
	r.offset += delta
	if r.offset < 0 {
		r.offset = 0
	}
	if r.offset > r.max {
		r.offset = r.max
	}
}
