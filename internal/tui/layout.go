package tui

import (
	"math"

	"mirador/internal/drag"
)

// Layout is the screen-space registry of mounted panes, re-derived from
// pane bounds on every lookup so drag resolution always sees the geometry
// of the latest render. It is the TUI's implementation of the engine's
// spatial provider.
type Layout struct {
	panes []*Pane
}

func NewLayout(panes ...*Pane) *Layout {
	return &Layout{panes: panes}
}

func (l *Layout) Add(p *Pane) { l.panes = append(l.panes, p) }

func (l *Layout) Remove(paneID string) {
	for i, p := range l.panes {
		if p.ID == paneID {
			l.panes = append(l.panes[:i], l.panes[i+1:]...)
			return
		}
	}
}

func (l *Layout) Pane(paneID string) (*Pane, bool) {
	for _, p := range l.panes {
		if p.ID == paneID {
			return p, true
		}
	}
	return nil, false
}

// PaneAt returns the pane under a screen cell.
func (l *Layout) PaneAt(x, y int) (*Pane, bool) {
	for _, p := range l.panes {
		if p.Contains(x, y) {
			return p, true
		}
	}
	return nil, false
}

func (l *Layout) ElementFromPoint(x, y float64) (drag.PointHit, bool) {
	p, ok := l.PaneAt(int(math.Floor(x)), int(math.Floor(y)))
	if !ok {
		return drag.PointHit{}, false
	}
	hit := drag.PointHit{PaneID: p.ID}
	if row, ok := p.RowAt(int(math.Floor(y))); ok {
		hit.EdgeID = row.EdgeID
	}
	return hit, true
}

func (l *Layout) RowGeometry(paneID, edgeID string) (drag.RowGeometry, bool) {
	p, ok := l.Pane(paneID)
	if !ok {
		return drag.RowGeometry{}, false
	}
	return p.Geometry(edgeID)
}

func (l *Layout) ContainerBounds(paneID string) (drag.Rect, bool) {
	p, ok := l.Pane(paneID)
	if !ok {
		return drag.Rect{}, false
	}
	return p.Bounds(), true
}
