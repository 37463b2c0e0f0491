package outline

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	"mirador/internal/model"
)

// NotFoundError reports a lookup against an id that no longer exists
// (typically a concurrent edit removed it mid-interaction).
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Doc is the reference outline document: nodes plus ordered, possibly
// mirrored edges, with canonical-edge bookkeeping.
//
// All structural mutations go through MoveEdge / CreateMirrorEdge /
// WithTransaction. Doc is not safe for concurrent use; callers drive it
// from a single event loop.
type Doc struct {
	nodes           map[string]model.Node
	edges           map[string]model.Edge
	children        map[string][]string // parent node id -> ordered child edge ids
	roots           []string            // ordered root edge ids
	canonicalByNode map[string]string   // node id -> its canonical (non-mirror) edge id

	// Rev increments on every applied mutation; LastOrigin records the
	// origin tag of the most recent one.
	Rev        int
	LastOrigin string
}

func NewDoc() *Doc {
	return &Doc{
		nodes:           map[string]model.Node{},
		edges:           map[string]model.Edge{},
		children:        map[string][]string{},
		canonicalByNode: map[string]string{},
	}
}

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// AddNode creates a new node with a canonical edge appended to the given
// parent's children (document roots when parentNodeID is nil). It returns
// the new node id and edge id.
func (d *Doc) AddNode(parentNodeID *string, text string) (nodeID, edgeID string, err error) {
	if parentNodeID != nil {
		if _, ok := d.nodes[*parentNodeID]; !ok {
			return "", "", NotFoundError{Kind: "node", ID: *parentNodeID}
		}
	}
	nodeID, err = newRandomID("node")
	if err != nil {
		return "", "", err
	}
	edgeID, err = newRandomID("edge")
	if err != nil {
		return "", "", err
	}
	d.nodes[nodeID] = model.Node{ID: nodeID, Text: text}
	e := model.Edge{ID: edgeID, ParentNodeID: copyID(parentNodeID), ChildNodeID: nodeID}
	d.edges[edgeID] = e
	d.canonicalByNode[nodeID] = edgeID
	d.appendChild(parentNodeID, edgeID)
	d.bump("add")
	return nodeID, edgeID, nil
}

// MoveEdge reparents/reorders one edge. The index is interpreted against
// the target sibling list after the edge has been removed from its current
// position, and is clamped to the list bounds.
func (d *Doc) MoveEdge(canonicalEdgeID string, newParentNodeID *string, index int, origin string) error {
	e, ok := d.edges[canonicalEdgeID]
	if !ok {
		return NotFoundError{Kind: "edge", ID: canonicalEdgeID}
	}
	if newParentNodeID != nil {
		if _, ok := d.nodes[*newParentNodeID]; !ok {
			return NotFoundError{Kind: "node", ID: *newParentNodeID}
		}
		if *newParentNodeID == e.ChildNodeID || d.isDescendantNode(*newParentNodeID, e.ChildNodeID) {
			return errors.New("move would place an edge inside its own subtree")
		}
	}

	oldParent := e.ParentNodeID
	d.removeChild(oldParent, e.ID)
	e.ParentNodeID = copyID(newParentNodeID)
	d.edges[e.ID] = e
	d.insertChild(newParentNodeID, e.ID, index)
	d.renumber(oldParent)
	d.renumber(e.ParentNodeID)
	d.bump(origin)
	return nil
}

// CreateMirrorEdge inserts a new mirror edge for mirrorNodeID under the
// given parent at the given (clamped) index. The canonical edge of the node
// is untouched. It fails when the mirror would contain itself, i.e. when
// the target parent is the mirrored node or one of its canonical
// descendants.
func (d *Doc) CreateMirrorEdge(mirrorNodeID string, parentNodeID *string, index int, origin string) (string, error) {
	if _, ok := d.nodes[mirrorNodeID]; !ok {
		return "", NotFoundError{Kind: "node", ID: mirrorNodeID}
	}
	if parentNodeID != nil {
		if _, ok := d.nodes[*parentNodeID]; !ok {
			return "", NotFoundError{Kind: "node", ID: *parentNodeID}
		}
		if *parentNodeID == mirrorNodeID || d.isDescendantNode(*parentNodeID, mirrorNodeID) {
			return "", errors.New("mirror would contain itself")
		}
	}
	edgeID, err := newRandomID("edge")
	if err != nil {
		return "", err
	}
	mirrorOf := mirrorNodeID
	e := model.Edge{
		ID:             edgeID,
		ParentNodeID:   copyID(parentNodeID),
		ChildNodeID:    mirrorNodeID,
		MirrorOfNodeID: &mirrorOf,
	}
	d.edges[edgeID] = e
	d.insertChild(parentNodeID, edgeID, index)
	d.renumber(e.ParentNodeID)
	d.bump(origin)
	return edgeID, nil
}

// WithTransaction runs fn against the document as one atomic batch: if fn
// returns an error, every mutation it applied is rolled back.
func (d *Doc) WithTransaction(fn func() error, origin string) error {
	saved := d.clone()
	if err := fn(); err != nil {
		d.restore(saved)
		return err
	}
	d.bump(origin)
	return nil
}

// EdgeSnapshot returns the read-only projection of one edge.
func (d *Doc) EdgeSnapshot(edgeID string) (model.EdgeSnapshot, bool) {
	e, ok := d.edges[edgeID]
	if !ok {
		return model.EdgeSnapshot{}, false
	}
	canonical := e.ID
	if e.Mirror() {
		canonical = d.canonicalByNode[e.ChildNodeID]
	}
	return model.EdgeSnapshot{
		ParentNodeID:    copyID(e.ParentNodeID),
		ChildNodeID:     e.ChildNodeID,
		MirrorOfNodeID:  copyID(e.MirrorOfNodeID),
		CanonicalEdgeID: canonical,
	}, true
}

// ChildEdgeIDs returns the canonical-order child edge ids of a node.
func (d *Doc) ChildEdgeIDs(parentNodeID string) []string {
	return append([]string(nil), d.children[parentNodeID]...)
}

// RootEdgeIDs returns the ordered root edge ids.
func (d *Doc) RootEdgeIDs() []string {
	return append([]string(nil), d.roots...)
}

// ParentEdgeID returns the canonical edge that attaches nodeID to the tree.
// It reports false for unknown nodes.
func (d *Doc) ParentEdgeID(nodeID string) (string, bool) {
	id, ok := d.canonicalByNode[nodeID]
	return id, ok
}

// CanonicalEdgeID maps any edge id (mirror or canonical) to the canonical
// edge id of its child node.
func (d *Doc) CanonicalEdgeID(edgeID string) (string, bool) {
	e, ok := d.edges[edgeID]
	if !ok {
		return "", false
	}
	if !e.Mirror() {
		return e.ID, true
	}
	id, ok := d.canonicalByNode[e.ChildNodeID]
	return id, ok
}

// NodeText returns the text of a node ("" for unknown ids).
func (d *Doc) NodeText(nodeID string) string {
	return d.nodes[nodeID].Text
}

// Nodes returns all nodes (unordered).
func (d *Doc) Nodes() []model.Node {
	out := make([]model.Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns all edges with positions reflecting sibling order.
func (d *Doc) Edges() []model.Edge {
	out := make([]model.Edge, 0, len(d.edges))
	for _, e := range d.edges {
		out = append(out, e)
	}
	return out
}

// FromParts rebuilds a document from stored nodes and edges. Sibling order
// comes from Edge.Position.
func FromParts(nodes []model.Node, edges []model.Edge) (*Doc, error) {
	d := NewDoc()
	for _, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			return nil, errors.New("node with empty id")
		}
		d.nodes[n.ID] = n
	}
	byParent := map[string][]model.Edge{}
	for _, e := range edges {
		if strings.TrimSpace(e.ID) == "" {
			return nil, errors.New("edge with empty id")
		}
		if _, ok := d.nodes[e.ChildNodeID]; !ok {
			return nil, NotFoundError{Kind: "node", ID: e.ChildNodeID}
		}
		d.edges[e.ID] = e
		if !e.Mirror() {
			if prev, dup := d.canonicalByNode[e.ChildNodeID]; dup && prev != e.ID {
				return nil, fmt.Errorf("node %s has two canonical edges", e.ChildNodeID)
			}
			d.canonicalByNode[e.ChildNodeID] = e.ID
		}
		key := ""
		if e.ParentNodeID != nil {
			key = *e.ParentNodeID
		}
		byParent[key] = append(byParent[key], e)
	}
	for key, sibs := range byParent {
		sortEdgesByPosition(sibs)
		ids := make([]string, 0, len(sibs))
		for _, e := range sibs {
			ids = append(ids, e.ID)
		}
		if key == "" {
			d.roots = ids
		} else {
			d.children[key] = ids
		}
	}
	for id := range d.children {
		parent := id
		d.renumber(&parent)
	}
	d.renumber(nil)
	return d, nil
}

func sortEdgesByPosition(sibs []model.Edge) {
	// Insertion sort keeps this dependency-free and stable for small sibling sets.
	for i := 1; i < len(sibs); i++ {
		for j := i; j > 0; j-- {
			a, b := sibs[j-1], sibs[j]
			if a.Position > b.Position || (a.Position == b.Position && a.ID > b.ID) {
				sibs[j-1], sibs[j] = b, a
				continue
			}
			break
		}
	}
}

// isDescendantNode reports whether nodeID sits below ancestorNodeID in the
// canonical tree. The walk tolerates malformed graphs by tracking visited
// nodes.
func (d *Doc) isDescendantNode(nodeID, ancestorNodeID string) bool {
	seen := map[string]bool{}
	cur := nodeID
	for {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		edgeID, ok := d.canonicalByNode[cur]
		if !ok {
			return false
		}
		e, ok := d.edges[edgeID]
		if !ok || e.ParentNodeID == nil {
			return false
		}
		if *e.ParentNodeID == ancestorNodeID {
			return true
		}
		cur = *e.ParentNodeID
	}
}

// NodeDepth returns the absolute canonical depth of a node (0 for roots).
func (d *Doc) NodeDepth(nodeID string) int {
	depth := 0
	seen := map[string]bool{}
	cur := nodeID
	for {
		if seen[cur] {
			return depth
		}
		seen[cur] = true
		edgeID, ok := d.canonicalByNode[cur]
		if !ok {
			return depth
		}
		e, ok := d.edges[edgeID]
		if !ok || e.ParentNodeID == nil {
			return depth
		}
		depth++
		cur = *e.ParentNodeID
	}
}

func (d *Doc) appendChild(parentNodeID *string, edgeID string) {
	if parentNodeID == nil {
		d.roots = append(d.roots, edgeID)
		d.renumber(nil)
		return
	}
	d.children[*parentNodeID] = append(d.children[*parentNodeID], edgeID)
	d.renumber(parentNodeID)
}

func (d *Doc) removeChild(parentNodeID *string, edgeID string) {
	list := d.roots
	if parentNodeID != nil {
		list = d.children[*parentNodeID]
	}
	out := list[:0]
	for _, id := range list {
		if id != edgeID {
			out = append(out, id)
		}
	}
	if parentNodeID == nil {
		d.roots = out
	} else if len(out) == 0 {
		delete(d.children, *parentNodeID)
	} else {
		d.children[*parentNodeID] = out
	}
}

func (d *Doc) insertChild(parentNodeID *string, edgeID string, index int) {
	list := d.roots
	if parentNodeID != nil {
		list = d.children[*parentNodeID]
	}
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	list = append(list, "")
	copy(list[index+1:], list[index:])
	list[index] = edgeID
	if parentNodeID == nil {
		d.roots = list
	} else {
		d.children[*parentNodeID] = list
	}
}

func (d *Doc) renumber(parentNodeID *string) {
	list := d.roots
	if parentNodeID != nil {
		list = d.children[*parentNodeID]
	}
	for i, id := range list {
		e, ok := d.edges[id]
		if !ok {
			continue
		}
		if e.Position != i {
			e.Position = i
			d.edges[id] = e
		}
	}
}

func (d *Doc) bump(origin string) {
	d.Rev++
	if strings.TrimSpace(origin) != "" {
		d.LastOrigin = origin
	}
}

type docState struct {
	nodes           map[string]model.Node
	edges           map[string]model.Edge
	children        map[string][]string
	roots           []string
	canonicalByNode map[string]string
	rev             int
	lastOrigin      string
}

func (d *Doc) clone() docState {
	s := docState{
		nodes:           make(map[string]model.Node, len(d.nodes)),
		edges:           make(map[string]model.Edge, len(d.edges)),
		children:        make(map[string][]string, len(d.children)),
		roots:           append([]string(nil), d.roots...),
		canonicalByNode: make(map[string]string, len(d.canonicalByNode)),
		rev:             d.Rev,
		lastOrigin:      d.LastOrigin,
	}
	for k, v := range d.nodes {
		s.nodes[k] = v
	}
	for k, v := range d.edges {
		s.edges[k] = v
	}
	for k, v := range d.children {
		s.children[k] = append([]string(nil), v...)
	}
	for k, v := range d.canonicalByNode {
		s.canonicalByNode[k] = v
	}
	return s
}

func (d *Doc) restore(s docState) {
	d.nodes = s.nodes
	d.edges = s.edges
	d.children = s.children
	d.roots = s.roots
	d.canonicalByNode = s.canonicalByNode
	d.Rev = s.rev
	d.LastOrigin = s.lastOrigin
}

func copyID(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
