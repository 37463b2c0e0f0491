package drag

// DropType distinguishes the two structural edits a drop can imply.
type DropType string

const (
	// DropSibling inserts after the target edge, under the target's parent.
	DropSibling DropType = "sibling"
	// DropChild inserts as the first child of the target row's node.
	DropChild DropType = "child"
)

// DropIndicator is pure presentation data: where a pane should draw the
// drop indicator. Left and Width are relative to the anchor row's own
// bounding box, so rendering never re-measures.
type DropIndicator struct {
	EdgeID string
	Left   float64
	Width  float64
	Type   DropType
}

// DropPlan is the structural edit implied by the current pointer position.
// It is recomputed on every pointer move and never persisted.
//
// TargetParentNodeID is nil for the document root. InsertIndex is the
// canonical insertion position after accounting for dragged edges that will
// vacate earlier slots in the same sibling list.
type DropPlan struct {
	PaneID             string
	Type               DropType
	TargetEdgeID       string
	TargetParentNodeID *string
	InsertIndex        int
	Indicator          DropIndicator
}

// Intent is the pre-threshold phase of a drag: pointer-down happened on a
// drag handle, but the pointer has not yet traveled far enough to count as
// dragging. Alt records the modifier at capture time; it is refreshed while
// the intent stays below the threshold.
type Intent struct {
	PaneID       string
	PointerID    int
	OriginX      float64
	OriginY      float64
	AnchorEdgeID string
	Bundle       Bundle
	Alt          bool
}

// ActiveDrag is the post-threshold phase: the intent plus the current
// pointer position, the modifier state of the latest sample, and the
// latest resolved plan (nil when the pointer is over nothing droppable).
type ActiveDrag struct {
	Intent Intent
	X      float64
	Y      float64
	Alt    bool
	Plan   *DropPlan
}

// PointerEvent is one pointer sample delivered by the host. Hosts that
// cannot distinguish pointers (a terminal has a single mouse) pass a
// constant PointerID.
type PointerEvent struct {
	PointerID int
	X         float64
	Y         float64
	Alt       bool
}
