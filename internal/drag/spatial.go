package drag

// PointHit identifies what sits under a pointer position: the pane it
// landed in and the row, if any. An empty EdgeID means the point is inside
// the pane but not on a row.
type PointHit struct {
	PaneID string
	EdgeID string
}

// RowGeometry is the measured geometry of one rendered row: the full row
// box, the bullet (drag handle / indent marker) box, and the text cell.
type RowGeometry struct {
	Row    Rect
	Bullet Rect
	Text   Rect
}

// Provider is the spatial query surface the engine resolves geometry
// through. The host supplies the real implementation (hit-testing its
// rendered layout); tests use a deterministic fake, which is the whole
// reason this is an interface.
//
// All methods report ok=false rather than failing when the queried thing
// is not (or no longer) on screen; a false lookup degrades the current
// resolution to "no plan", never breaks the drag session.
type Provider interface {
	// ElementFromPoint hit-tests the rendered layout at (x, y).
	ElementFromPoint(x, y float64) (PointHit, bool)
	// RowGeometry measures the row for edgeID inside the given pane.
	RowGeometry(paneID, edgeID string) (RowGeometry, bool)
	// ContainerBounds returns the pane's content box.
	ContainerBounds(paneID string) (Rect, bool)
}
