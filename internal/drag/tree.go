package drag

import "mirador/internal/model"

// TreeReader is the read surface of the outline document the engine uses
// during resolution. Lookups report ok=false for ids that no longer exist
// (a concurrent edit removed them mid-drag); the engine treats that as
// "no plan this frame", never as a failure.
type TreeReader interface {
	EdgeSnapshot(edgeID string) (model.EdgeSnapshot, bool)
	// ChildEdgeIDs returns the canonical-order child edge ids of a node.
	ChildEdgeIDs(parentNodeID string) []string
	// RootEdgeIDs returns the ordered root edge ids.
	RootEdgeIDs() []string
	// ParentEdgeID returns the canonical edge attaching nodeID to the tree.
	ParentEdgeID(nodeID string) (string, bool)
}

// TreeWriter is the mutation surface used at commit time.
type TreeWriter interface {
	MoveEdge(canonicalEdgeID string, newParentNodeID *string, index int, origin string) error
	CreateMirrorEdge(mirrorNodeID string, parentNodeID *string, index int, origin string) (string, error)
	WithTransaction(fn func() error, origin string) error
}

// childList returns the sibling list under parent (document roots when
// parent is nil).
func childList(tree TreeReader, parent *string) []string {
	if parent == nil {
		return tree.RootEdgeIDs()
	}
	return tree.ChildEdgeIDs(*parent)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
