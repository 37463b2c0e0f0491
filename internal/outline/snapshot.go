package outline

import (
	"mirador/internal/model"
)

// Snapshot returns an immutable projection of the whole document.
func (d *Doc) Snapshot() *model.OutlineSnapshot {
	s := &model.OutlineSnapshot{
		Nodes:                   make(map[string]model.Node, len(d.nodes)),
		Edges:                   make(map[string]model.Edge, len(d.edges)),
		RootEdgeIDs:             append([]string(nil), d.roots...),
		ChildrenByParent:        make(map[string][]string, len(d.children)),
		CanonicalEdgeIDByEdgeID: make(map[string]string, len(d.edges)),
	}
	for k, v := range d.nodes {
		s.Nodes[k] = v
	}
	for k, v := range d.edges {
		s.Edges[k] = v
		if canonical, ok := d.CanonicalEdgeID(k); ok {
			s.CanonicalEdgeIDByEdgeID[k] = canonical
		}
	}
	for k, v := range d.children {
		s.ChildrenByParent[k] = append([]string(nil), v...)
	}
	return s
}

// BuildRows flattens the outline into visible rows for one pane.
//
// paneRootEdgeID selects the pane's visual root edge; "" shows the document
// roots. collapsed is keyed by row id; children of a collapsed row are not
// emitted. Mirrored subtrees are walked through their node's canonical
// children, so a mirror row shows the same descendants as its original; a
// node already on the current branch is not descended into again. Rows
// under an expanded mirror get projected, path-shaped ids so each visible
// occurrence of an edge keeps its own identity within the pane.
func (d *Doc) BuildRows(paneRootEdgeID string, collapsed map[string]bool) []model.OutlineRow {
	var rows []model.OutlineRow
	onBranch := map[string]bool{}

	var walk func(edgeID, rowID string, depth int, ancestors []string)
	walk = func(edgeID, rowID string, depth int, ancestors []string) {
		e, ok := d.edges[edgeID]
		if !ok {
			return
		}
		canonical, _ := d.CanonicalEdgeID(edgeID)
		childEdges := d.children[e.ChildNodeID]
		isCollapsed := collapsed[rowID]
		rows = append(rows, model.OutlineRow{
			EdgeID:          rowID,
			SourceEdgeID:    edgeID,
			CanonicalEdgeID: canonical,
			NodeID:          e.ChildNodeID,
			ParentNodeID:    copyID(e.ParentNodeID),
			Text:            d.nodes[e.ChildNodeID].Text,
			Depth:           depth,
			TreeDepth:       d.NodeDepth(e.ChildNodeID),
			AncestorEdgeIDs: append([]string(nil), ancestors...),
			HasChildren:     len(childEdges) > 0,
			Collapsed:       isCollapsed,
		})
		if isCollapsed || onBranch[e.ChildNodeID] {
			return
		}
		onBranch[e.ChildNodeID] = true
		next := append(append([]string(nil), ancestors...), rowID)
		projected := rowID != edgeID || e.Mirror()
		for _, childID := range childEdges {
			childRowID := childID
			if projected {
				childRowID = rowID + "/" + childID
			}
			walk(childID, childRowID, depth+1, next)
		}
		delete(onBranch, e.ChildNodeID)
	}

	if paneRootEdgeID == "" {
		for _, id := range d.roots {
			walk(id, id, 0, nil)
		}
		return rows
	}
	walk(paneRootEdgeID, paneRootEdgeID, 0, nil)
	return rows
}
