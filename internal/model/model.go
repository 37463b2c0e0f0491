package model

// Node is an outline node: an identity plus its text content.
// Structure lives entirely on edges; a node may appear in several tree
// locations when mirror edges reference it.
type Node struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Edge is an ordered parent→child relationship between two nodes.
//
// A nil ParentNodeID marks a root edge. A non-nil MirrorOfNodeID marks a
// mirror edge: the child node is shared with another, canonical, edge, and
// the same content appears in both tree locations.
type Edge struct {
	ID             string  `json:"id"`
	ParentNodeID   *string `json:"parentNodeId,omitempty"`
	ChildNodeID    string  `json:"childNodeId"`
	Position       int     `json:"position"`
	MirrorOfNodeID *string `json:"mirrorOfNodeId,omitempty"`
}

// Mirror reports whether the edge is a mirror edge.
func (e Edge) Mirror() bool { return e.MirrorOfNodeID != nil }

// EdgeSnapshot is the read-only projection of one edge handed out by the
// outline document during drag resolution.
type EdgeSnapshot struct {
	ParentNodeID    *string
	ChildNodeID     string
	MirrorOfNodeID  *string
	CanonicalEdgeID string
}

// OutlineSnapshot is an immutable projection of a whole document.
// Callers must not mutate the contained maps and slices.
type OutlineSnapshot struct {
	Nodes                   map[string]Node
	Edges                   map[string]Edge
	RootEdgeIDs             []string
	ChildrenByParent        map[string][]string // parent node id -> ordered child edge ids
	CanonicalEdgeIDByEdgeID map[string]string
}

// OutlineRow is one visible line of a pane's flattened outline.
//
// EdgeID identifies the row within its pane. Rows projected under an
// expanded mirror get a path-shaped id, so an edge shown through two tree
// locations yields two distinct rows; SourceEdgeID is the underlying
// document edge in every case, equal to EdgeID for ordinary rows.
//
// Depth is the visual indent within the pane; TreeDepth is the absolute
// depth from the document root (the two differ when a pane is rooted at a
// subtree). AncestorEdgeIDs is the path of row ids from the pane's visual
// root to this row, exclusive of the row itself, shallowest first.
type OutlineRow struct {
	EdgeID          string
	SourceEdgeID    string
	CanonicalEdgeID string
	NodeID          string
	ParentNodeID    *string
	Text            string
	Depth           int
	TreeDepth       int
	AncestorEdgeIDs []string
	HasChildren     bool
	Collapsed       bool
}
