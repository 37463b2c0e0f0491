package drag

import "sync"

// PaneRegistration is the callback surface a mounted pane registers so the
// engine can resolve rows and scroll containers against it, even when a
// different pane owns the pointer capture.
type PaneRegistration struct {
	Row           RowLookup
	ScrollRegions func() []ScrollRegion
}

// State is the broadcast drag record. Every pane mirrors it into its own
// render state through a subscription, so all panes draw a consistent
// indicator while only the owner drives pointer handling.
type State struct {
	OwnerPaneID string
	Intent      *Intent
	Active      *ActiveDrag
}

// Dragging reports whether any drag phase is in progress.
func (s State) Dragging() bool { return s.Intent != nil || s.Active != nil }

// Coordinator is the drag service shared by reference among pane
// controllers: the pane registry, the single drag-ownership slot, and the
// broadcast record. It replaces what would otherwise be module-level
// globals; callers construct one per window/document and inject it.
//
// Ownership is claimed on the first intent write and released when both the
// intent and the active drag are gone. Every state write goes through the
// owner check so two panes can never fight over one drag.
type Coordinator struct {
	mu      sync.Mutex
	spatial Provider
	tree    TreeReader

	panes  map[string]PaneRegistration
	owner  string
	intent *Intent
	active *ActiveDrag

	subs    map[int]func(State)
	nextSub int
}

func NewCoordinator(spatial Provider, tree TreeReader) *Coordinator {
	return &Coordinator{
		spatial: spatial,
		tree:    tree,
		panes:   map[string]PaneRegistration{},
		subs:    map[int]func(State){},
	}
}

// Env returns the lookup surface resolution calls read through.
func (c *Coordinator) Env() Env {
	return Env{Spatial: c.spatial, Tree: c.tree, Pane: c.Pane}
}

// Tree exposes the document read surface (the bundler needs it).
func (c *Coordinator) Tree() TreeReader { return c.tree }

// RegisterPane makes the pane's row and scroll-region lookups available to
// cross-pane resolution.
func (c *Coordinator) RegisterPane(paneID string, reg PaneRegistration) {
	c.mu.Lock()
	c.panes[paneID] = reg
	c.mu.Unlock()
}

// DeregisterPane removes the pane from the registry. If the pane owned an
// in-flight drag, the drag is aborted without committing: acting on a dead
// pane is never safe.
func (c *Coordinator) DeregisterPane(paneID string) {
	c.mu.Lock()
	delete(c.panes, paneID)
	aborted := c.owner == paneID && (c.intent != nil || c.active != nil)
	if c.owner == paneID {
		c.owner = ""
		c.intent = nil
		c.active = nil
	}
	c.mu.Unlock()
	if aborted {
		c.notify()
	}
}

// Pane resolves a registered pane by id.
func (c *Coordinator) Pane(paneID string) (PaneRegistration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reg, ok := c.panes[paneID]
	return reg, ok
}

// State returns the current broadcast record.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{OwnerPaneID: c.owner, Intent: c.intent, Active: c.active}
}

// Subscribe registers a listener for broadcast changes and returns its
// unsubscribe func. The listener fires after every applied state write.
func (c *Coordinator) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// BeginIntent claims drag ownership for the pane and installs the intent.
// It reports false when another pane already owns a drag.
func (c *Coordinator) BeginIntent(paneID string, intent *Intent) bool {
	c.mu.Lock()
	if c.owner != "" && c.owner != paneID {
		c.mu.Unlock()
		return false
	}
	if _, ok := c.panes[paneID]; !ok {
		c.mu.Unlock()
		return false
	}
	c.owner = paneID
	c.intent = intent
	c.active = nil
	c.mu.Unlock()
	c.notify()
	return true
}

// UpdateIntent refreshes the pre-threshold intent (its Alt flag). Writes
// from non-owning panes are dropped.
func (c *Coordinator) UpdateIntent(paneID string, intent *Intent) {
	c.mu.Lock()
	if c.owner != paneID || c.intent == nil {
		c.mu.Unlock()
		return
	}
	c.intent = intent
	c.mu.Unlock()
	c.notify()
}

// Promote consumes the intent and installs the active drag in one step.
func (c *Coordinator) Promote(paneID string, active *ActiveDrag) {
	c.mu.Lock()
	if c.owner != paneID {
		c.mu.Unlock()
		return
	}
	c.intent = nil
	c.active = active
	c.mu.Unlock()
	c.notify()
}

// UpdateActive replaces the active drag record (new pointer sample or
// re-resolved plan).
func (c *Coordinator) UpdateActive(paneID string, active *ActiveDrag) {
	c.mu.Lock()
	if c.owner != paneID || c.active == nil {
		c.mu.Unlock()
		return
	}
	c.active = active
	c.mu.Unlock()
	c.notify()
}

// Clear ends the drag (commit or abort already handled by the caller) and
// releases ownership.
func (c *Coordinator) Clear(paneID string) {
	c.mu.Lock()
	if c.owner != paneID {
		c.mu.Unlock()
		return
	}
	c.owner = ""
	c.intent = nil
	c.active = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	st := State{OwnerPaneID: c.owner, Intent: c.intent, Active: c.active}
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
