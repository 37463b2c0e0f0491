package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	xansi "github.com/charmbracelet/x/ansi"

	"mirador/internal/drag"
	"mirador/internal/model"
	"mirador/internal/outline"
)

// Column layout of one outline row, in cells:
//
//	[indent: depth*indentWidth][twisty: 2][bullet: 2][title ...]
//
// The bullet cell doubles as the drag handle; the span between the bullet's
// left edge and the title is the sibling drop zone, everything left of the
// bullet belongs to ancestor retargeting.
const (
	indentWidth = 2
	twistyWidth = 2
	bulletWidth = 2
)

// Pane is one visible outline view: a viewport over the document's
// flattened rows plus the selection and collapse state local to the pane.
type Pane struct {
	ID    string
	Title string

	doc   *outline.Doc
	theme theme

	left, top     int
	width, height int // height includes the one-line header

	collapsed map[string]bool
	rows      []model.OutlineRow
	rowIndex  map[string]int

	vp         viewport.Model
	scrollFrac float64

	selectedSet   map[string]bool
	selectedOrder []string
}

func NewPane(id, title string, doc *outline.Doc) *Pane {
	p := &Pane{
		ID:          id,
		Title:       title,
		doc:         doc,
		theme:       newTheme(),
		collapsed:   map[string]bool{},
		rowIndex:    map[string]int{},
		selectedSet: map[string]bool{},
		vp:          viewport.New(0, 0),
	}
	p.Reload()
	return p
}

// SetBounds places the pane on screen. The first line is the header; the
// viewport gets the rest.
func (p *Pane) SetBounds(left, top, width, height int) {
	p.left, p.top, p.width, p.height = left, top, width, height
	p.vp.Width = width
	p.vp.Height = height - 1
	if p.vp.Height < 0 {
		p.vp.Height = 0
	}
	p.clampOffset()
}

// Reload re-flattens the document into visible rows. Call after any
// document mutation or collapse toggle.
func (p *Pane) Reload() {
	p.rows = p.doc.BuildRows("", p.collapsed)
	p.rowIndex = make(map[string]int, len(p.rows))
	for i, r := range p.rows {
		// Row ids are per-occurrence: rows under an expanded mirror carry
		// projected ids, so the index is unambiguous.
		p.rowIndex[r.EdgeID] = i
	}
	// Drop selection entries for rows that no longer exist.
	kept := p.selectedOrder[:0]
	for _, id := range p.selectedOrder {
		if _, ok := p.rowIndex[id]; ok {
			kept = append(kept, id)
		} else {
			delete(p.selectedSet, id)
		}
	}
	p.selectedOrder = kept
	p.clampOffset()
}

func (p *Pane) clampOffset() {
	if p.vp.YOffset > p.maxOffset() {
		p.vp.SetYOffset(p.maxOffset())
	}
}

func (p *Pane) maxOffset() int {
	max := len(p.rows) - p.vp.Height
	if max < 0 {
		return 0
	}
	return max
}

func (p *Pane) contentTop() int { return p.top + 1 }

// Row implements the engine's row lookup for this pane.
func (p *Pane) Row(edgeID string) (model.OutlineRow, bool) {
	i, ok := p.rowIndex[edgeID]
	if !ok {
		return model.OutlineRow{}, false
	}
	return p.rows[i], true
}

// Selection returns the pane's selection in the engine's shape.
func (p *Pane) Selection() drag.Selection {
	set := make(map[string]bool, len(p.selectedSet))
	for id := range p.selectedSet {
		set[id] = true
	}
	return drag.Selection{
		OrderedEdgeIDs: append([]string(nil), p.selectedOrder...),
		EdgeIDSet:      set,
	}
}

// Select replaces the selection with the single row.
func (p *Pane) Select(edgeID string) {
	p.selectedSet = map[string]bool{edgeID: true}
	p.selectedOrder = []string{edgeID}
}

// ExtendSelect grows the selection to the contiguous visible range between
// the last selected row and the given row.
func (p *Pane) ExtendSelect(edgeID string) {
	if len(p.selectedOrder) == 0 {
		p.Select(edgeID)
		return
	}
	from, ok := p.rowIndex[p.selectedOrder[len(p.selectedOrder)-1]]
	if !ok {
		p.Select(edgeID)
		return
	}
	to, ok := p.rowIndex[edgeID]
	if !ok {
		return
	}
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		id := p.rows[i].EdgeID
		if !p.selectedSet[id] {
			p.selectedSet[id] = true
			p.selectedOrder = append(p.selectedOrder, id)
		}
	}
}

// ToggleCollapse flips the collapse state of a row with children.
func (p *Pane) ToggleCollapse(edgeID string) {
	row, ok := p.Row(edgeID)
	if !ok || !row.HasChildren {
		return
	}
	if p.collapsed[edgeID] {
		delete(p.collapsed, edgeID)
	} else {
		p.collapsed[edgeID] = true
	}
	p.Reload()
}

// Contains reports whether the screen cell (x, y) falls inside the pane.
func (p *Pane) Contains(x, y int) bool {
	return x >= p.left && x < p.left+p.width && y >= p.top && y < p.top+p.height
}

// RowAt maps a screen line to the visible row on it.
func (p *Pane) RowAt(y int) (model.OutlineRow, bool) {
	i := p.vp.YOffset + (y - p.contentTop())
	if y < p.contentTop() || i < 0 || i >= len(p.rows) {
		return model.OutlineRow{}, false
	}
	return p.rows[i], true
}

// Geometry computes the screen rects of a visible row. Rows scrolled out of
// the viewport have no geometry.
func (p *Pane) Geometry(edgeID string) (drag.RowGeometry, bool) {
	i, ok := p.rowIndex[edgeID]
	if !ok || i < p.vp.YOffset || i >= p.vp.YOffset+p.vp.Height {
		return drag.RowGeometry{}, false
	}
	row := p.rows[i]
	y := float64(p.contentTop() + i - p.vp.YOffset)
	bulletLeft := float64(p.left + row.Depth*indentWidth + twistyWidth)
	textLeft := bulletLeft + bulletWidth
	return drag.RowGeometry{
		Row:    drag.Rect{Left: float64(p.left), Top: y, Width: float64(p.width), Height: 1},
		Bullet: drag.Rect{Left: bulletLeft, Top: y, Width: bulletWidth, Height: 1},
		Text:   drag.Rect{Left: textLeft, Top: y, Width: float64(p.left+p.width) - textLeft, Height: 1},
	}, true
}

// Bounds returns the pane's screen rect.
func (p *Pane) Bounds() drag.Rect {
	return drag.Rect{Left: float64(p.left), Top: float64(p.top), Width: float64(p.width), Height: float64(p.height)}
}

// Region exposes the pane's viewport as an auto-scroll region.
func (p *Pane) Region() drag.ScrollRegion { return (*paneRegion)(p) }

// paneRegion adapts the pane's viewport to the engine's scroll interface.
// Scroll deltas are fractional cells; the remainder carries over between
// frames so slow edge scrolling still makes progress.
type paneRegion Pane

func (r *paneRegion) Viewport() drag.Rect {
	return drag.Rect{
		Left:   float64(r.left),
		Top:    float64(r.top + 1),
		Width:  float64(r.width),
		Height: float64(r.vp.Height),
	}
}

func (r *paneRegion) CanScroll(down bool) bool {
	if down {
		return r.vp.YOffset < (*Pane)(r).maxOffset()
	}
	return r.vp.YOffset > 0
}

func (r *paneRegion) ScrollBy(delta float64) {
	r.scrollFrac += delta
	steps := int(r.scrollFrac)
	if steps == 0 {
		return
	}
	r.scrollFrac -= float64(steps)
	offset := r.vp.YOffset + steps
	if offset < 0 {
		offset = 0
	}
	if max := (*Pane)(r).maxOffset(); offset > max {
		offset = max
	}
	r.vp.SetYOffset(offset)
}

// View renders the pane, overlaying drag feedback from the broadcast state.
func (p *Pane) View(st drag.State) string {
	var b strings.Builder
	for i, row := range p.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.renderRow(row, st))
	}
	p.vp.SetContent(b.String())
	header := p.theme.header.Render(xansi.Truncate(p.Title, p.width, ""))
	return header + "\n" + p.vp.View()
}

func (p *Pane) renderRow(row model.OutlineRow, st drag.State) string {
	indent := strings.Repeat(" ", row.Depth*indentWidth)

	twisty := glyphTwistyLeaf()
	if row.HasChildren {
		if row.Collapsed {
			twisty = glyphTwistyClosed()
		} else {
			twisty = glyphTwistyOpen()
		}
	}

	bulletStyle := p.theme.bullet
	bullet := glyphBullet()
	if row.SourceEdgeID != row.CanonicalEdgeID {
		bullet = glyphBulletMirror()
		bulletStyle = p.theme.mirror
	}

	titleStyle := p.theme.title
	switch {
	case st.Active != nil && st.Active.Intent.Bundle.EdgeIDSet[row.EdgeID]:
		titleStyle = p.theme.dragging
	case p.selectedSet[row.EdgeID]:
		titleStyle = p.theme.selected
	}

	line := indent + p.theme.twisty.Render(twisty) + bulletStyle.Render(bullet) + titleStyle.Render(row.Text)

	if ind, ok := p.indicatorFor(row, st); ok {
		line = p.renderIndicator(line, indent, row, ind)
	}
	return xansi.Truncate(line, p.width, "")
}

func (p *Pane) indicatorFor(row model.OutlineRow, st drag.State) (drag.DropIndicator, bool) {
	if st.Active == nil || st.Active.Plan == nil {
		return drag.DropIndicator{}, false
	}
	plan := st.Active.Plan
	if plan.PaneID != p.ID || plan.Indicator.EdgeID != row.EdgeID {
		return drag.DropIndicator{}, false
	}
	return plan.Indicator, true
}

// renderIndicator overlays drop feedback on the target row: a child drop
// marks the title, a sibling drop draws a rule out to the right edge at the
// insertion indent.
func (p *Pane) renderIndicator(line, indent string, row model.OutlineRow, ind drag.DropIndicator) string {
	if ind.Type == drag.DropChild {
		marker := p.theme.dropChild.Render(glyphDropChild() + " ")
		return indent + p.theme.twisty.Render(glyphTwistyLeaf()) + marker + p.theme.dropChild.Render(row.Text)
	}
	used := xansi.StringWidth(line)
	rule := p.width - used - 1
	if rule <= 0 {
		return line
	}
	return line + " " + p.theme.dropLine.Render(strings.Repeat(glyphDropRule(), rule))
}
