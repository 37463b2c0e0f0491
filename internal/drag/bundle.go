package drag

import "mirador/internal/model"

// Selection is the pane's current selection state as the bundler consumes
// it: the selected edge ids in click order plus the same ids as a set.
type Selection struct {
	OrderedEdgeIDs []string
	EdgeIDSet      map[string]bool
}

// RowLookup resolves a pane's visible row state for an edge id.
type RowLookup func(edgeID string) (model.OutlineRow, bool)

// Bundle is the set of edges traveling together in one drag, held both as
// order-preserving sequences (document order) and as sets.
type Bundle struct {
	EdgeIDs          []string
	CanonicalEdgeIDs []string
	NodeIDs          []string
	EdgeIDSet        map[string]bool
	CanonicalIDSet   map[string]bool
	NodeIDSet        map[string]bool
}

// BuildBundle decides which edges travel together when the anchor row is
// dragged.
//
// A multi-row bundle is accepted only when the selected rows share the
// anchor's parent and tree depth, de-duplicate to distinct canonical edges
// (a mirror and its original never both travel), and occupy one contiguous
// run of positions in the parent's child order. Anything else falls back to
// dragging the anchor alone; a non-contiguous multi-select drag is
// rejected, not partially honored. Accepted bundles come back re-sorted
// into document order regardless of selection click order.
func BuildBundle(anchorEdgeID string, sel Selection, rows RowLookup, tree TreeReader) Bundle {
	if !sel.EdgeIDSet[anchorEdgeID] || len(sel.OrderedEdgeIDs) <= 1 {
		return singleBundle(anchorEdgeID, rows, tree)
	}
	anchorRow, ok := rows(anchorEdgeID)
	if !ok {
		return singleBundle(anchorEdgeID, rows, tree)
	}

	siblings := childList(tree, anchorRow.ParentNodeID)

	type candidate struct {
		row   model.OutlineRow
		index int
	}
	var candidates []candidate
	seenCanonical := map[string]bool{}
	for _, edgeID := range sel.OrderedEdgeIDs {
		row, ok := rows(edgeID)
		if !ok {
			continue
		}
		if !sameParent(row.ParentNodeID, anchorRow.ParentNodeID) || row.TreeDepth != anchorRow.TreeDepth {
			continue
		}
		canonical := canonicalOf(row, tree)
		if canonical == "" || seenCanonical[canonical] {
			continue
		}
		idx := indexOf(siblings, sourceOf(row))
		if idx < 0 {
			return singleBundle(anchorEdgeID, rows, tree)
		}
		seenCanonical[canonical] = true
		candidates = append(candidates, candidate{row: row, index: idx})
	}
	if len(candidates) <= 1 {
		return singleBundle(anchorEdgeID, rows, tree)
	}

	// Document order, then the contiguity check: any gap in the index run
	// rejects the whole bundle.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j-1].index > candidates[j].index; j-- {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
		}
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].index != candidates[i-1].index+1 {
			return singleBundle(anchorEdgeID, rows, tree)
		}
	}

	b := emptyBundle(len(candidates))
	for _, c := range candidates {
		b.add(c.row.EdgeID, canonicalOf(c.row, tree), c.row.NodeID)
	}
	return b
}

// singleBundle wraps the anchor alone. The anchor is a row id; its row
// resolves it to the document edge (a mirror-projected row drags its
// canonical edge), with a direct snapshot lookup as the headless fallback.
func singleBundle(anchorEdgeID string, rows RowLookup, tree TreeReader) Bundle {
	b := emptyBundle(1)
	if rows != nil {
		if row, ok := rows(anchorEdgeID); ok {
			b.add(row.EdgeID, canonicalOf(row, tree), row.NodeID)
			return b
		}
	}
	canonical := anchorEdgeID
	nodeID := ""
	if snap, ok := tree.EdgeSnapshot(anchorEdgeID); ok {
		canonical = snap.CanonicalEdgeID
		nodeID = snap.ChildNodeID
	}
	b.add(anchorEdgeID, canonical, nodeID)
	return b
}

func emptyBundle(capacity int) Bundle {
	return Bundle{
		EdgeIDs:          make([]string, 0, capacity),
		CanonicalEdgeIDs: make([]string, 0, capacity),
		NodeIDs:          make([]string, 0, capacity),
		EdgeIDSet:        map[string]bool{},
		CanonicalIDSet:   map[string]bool{},
		NodeIDSet:        map[string]bool{},
	}
}

func (b *Bundle) add(edgeID, canonicalID, nodeID string) {
	b.EdgeIDs = append(b.EdgeIDs, edgeID)
	b.EdgeIDSet[edgeID] = true
	if canonicalID != "" {
		b.CanonicalEdgeIDs = append(b.CanonicalEdgeIDs, canonicalID)
		b.CanonicalIDSet[canonicalID] = true
	}
	if nodeID != "" {
		b.NodeIDs = append(b.NodeIDs, nodeID)
		b.NodeIDSet[nodeID] = true
	}
}

func canonicalOf(row model.OutlineRow, tree TreeReader) string {
	if row.CanonicalEdgeID != "" {
		return row.CanonicalEdgeID
	}
	if snap, ok := tree.EdgeSnapshot(sourceOf(row)); ok {
		return snap.CanonicalEdgeID
	}
	return ""
}

// sourceOf returns the document edge behind a row, falling back to the row
// id for rows built without source tracking.
func sourceOf(row model.OutlineRow) string {
	if row.SourceEdgeID != "" {
		return row.SourceEdgeID
	}
	return row.EdgeID
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
