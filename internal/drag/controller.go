package drag

import (
	"errors"
	"math"
)

// ControllerConfig wires one pane's controller. Coordinator, PaneID and
// Rows are required; Frames may be nil when the host never auto-scrolls
// (headless tests usually pass a manual stepper instead).
type ControllerConfig struct {
	PaneID        string
	Coordinator   *Coordinator
	Committer     *Committer
	Rows          RowLookup
	ScrollRegions func() []ScrollRegion
	Frames        FrameScheduler
	Tuning        Tuning
}

// Controller drives the drag state machine for one pane:
//
//	idle → intent(pointerID) → activeDrag(pointerID) → idle
//
// One controller exists per mounted pane and the pane owns its lifecycle:
// Start registers the pane with the coordinator, Stop deregisters it,
// cancels any scheduled frame, and aborts an owned in-flight drag. All
// methods must be called from the host's event loop goroutine.
type Controller struct {
	paneID  string
	coord   *Coordinator
	commit  *Committer
	rows    RowLookup
	regions func() []ScrollRegion
	frames  FrameScheduler
	tuning  Tuning

	started   bool
	scrolling bool
	lastX     float64
	lastY     float64
}

func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.PaneID == "" {
		return nil, errors.New("missing pane id")
	}
	if cfg.Coordinator == nil {
		return nil, errors.New("missing coordinator")
	}
	if cfg.Rows == nil {
		return nil, errors.New("missing row lookup")
	}
	return &Controller{
		paneID:  cfg.PaneID,
		coord:   cfg.Coordinator,
		commit:  cfg.Committer,
		rows:    cfg.Rows,
		regions: cfg.ScrollRegions,
		frames:  cfg.Frames,
		tuning:  cfg.Tuning.normalized(),
	}, nil
}

// Start registers the pane with the coordinator. Idempotent.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.coord.RegisterPane(c.paneID, PaneRegistration{
		Row:           c.rows,
		ScrollRegions: c.regions,
	})
}

// Stop tears the pane down: any scheduled frame is canceled and the pane's
// registry entry (plus broadcast ownership, if held) is cleared so nothing
// acts on a dead pane. An owned in-flight drag aborts without committing.
func (c *Controller) Stop() {
	if !c.started {
		return
	}
	c.started = false
	c.stopScroll()
	c.coord.DeregisterPane(c.paneID)
}

// PointerDown opens a drag intent for a primary-button press on a drag
// handle. The caller passes the pane's current selection so the bundler can
// decide what travels together. It reports whether the press was captured
// (the host should suppress its default handling only when true).
func (c *Controller) PointerDown(ev PointerEvent, anchorEdgeID string, sel Selection) bool {
	if !c.started || anchorEdgeID == "" {
		return false
	}
	bundle := BuildBundle(anchorEdgeID, sel, c.rows, c.coord.Tree())
	intent := &Intent{
		PaneID:       c.paneID,
		PointerID:    ev.PointerID,
		OriginX:      ev.X,
		OriginY:      ev.Y,
		AnchorEdgeID: anchorEdgeID,
		Bundle:       bundle,
		Alt:          ev.Alt,
	}
	return c.coord.BeginIntent(c.paneID, intent)
}

// PointerMove advances the state machine for a pointer sample: below the
// activation threshold it only refreshes the intent's Alt flag; crossing
// the threshold promotes the intent to an active drag; during an active
// drag it re-resolves the plan and feeds the auto-scroll loop. Samples for
// foreign pointer ids or non-owned drags are ignored.
func (c *Controller) PointerMove(ev PointerEvent) {
	if !c.started {
		return
	}
	st := c.coord.State()
	if st.OwnerPaneID != c.paneID {
		return
	}
	c.lastX, c.lastY = ev.X, ev.Y

	if st.Active != nil {
		if st.Active.Intent.PointerID != ev.PointerID {
			return
		}
		next := *st.Active
		next.X, next.Y, next.Alt = ev.X, ev.Y, ev.Alt
		next.Plan = ResolveDropPlan(ev.X, ev.Y, &next.Intent, c.coord.Env())
		c.coord.UpdateActive(c.paneID, &next)
		c.maybeScroll(ev.Y)
		return
	}

	if st.Intent == nil || st.Intent.PointerID != ev.PointerID {
		return
	}
	dx := math.Abs(ev.X - st.Intent.OriginX)
	dy := math.Abs(ev.Y - st.Intent.OriginY)
	if math.Max(dx, dy) < c.tuning.ActivateThreshold {
		refreshed := *st.Intent
		refreshed.Alt = ev.Alt
		c.coord.UpdateIntent(c.paneID, &refreshed)
		return
	}

	intent := *st.Intent
	active := &ActiveDrag{
		Intent: intent,
		X:      ev.X,
		Y:      ev.Y,
		Alt:    ev.Alt,
		Plan:   ResolveDropPlan(ev.X, ev.Y, &intent, c.coord.Env()),
	}
	c.coord.Promote(c.paneID, active)
	c.maybeScroll(ev.Y)
}

// PointerUp ends the drag for the matching pointer. An active drag with a
// resolved plan commits; mirror semantics apply when Alt was held at
// capture time or is held at release (either counts). A below-threshold
// intent simply dissolves.
func (c *Controller) PointerUp(ev PointerEvent) error {
	if !c.started {
		return nil
	}
	st := c.coord.State()
	if st.OwnerPaneID != c.paneID {
		return nil
	}
	if st.Active != nil {
		if st.Active.Intent.PointerID != ev.PointerID {
			return nil
		}
		active := st.Active
		c.stopScroll()
		c.coord.Clear(c.paneID)
		if active.Plan == nil || c.commit == nil {
			return nil
		}
		mirror := active.Intent.Alt || ev.Alt
		return c.commit.Commit(&active.Intent, active.Plan, mirror)
	}
	if st.Intent != nil && st.Intent.PointerID == ev.PointerID {
		c.stopScroll()
		c.coord.Clear(c.paneID)
	}
	return nil
}

// PointerCancel discards any in-flight intent or drag without committing.
func (c *Controller) PointerCancel(ev PointerEvent) {
	if !c.started {
		return
	}
	st := c.coord.State()
	if st.OwnerPaneID != c.paneID {
		return
	}
	if st.Active != nil && st.Active.Intent.PointerID != ev.PointerID {
		return
	}
	if st.Active == nil && (st.Intent == nil || st.Intent.PointerID != ev.PointerID) {
		return
	}
	c.stopScroll()
	c.coord.Clear(c.paneID)
}

// maybeScroll arms the frame loop when the pointer is close enough to a
// scrollable edge that a region wants to move.
func (c *Controller) maybeScroll(y float64) {
	if c.frames == nil || c.regions == nil {
		return
	}
	if _, _, _, ok := pickScroll(y, c.regions(), c.tuning); !ok {
		return
	}
	if c.scrolling {
		return
	}
	c.scrolling = true
	c.frames.Request(c.frame)
}

// frame performs one auto-scroll step: move the strongest region, then
// re-resolve the plan at the unchanged pointer position (content shifted
// under the cursor), then re-arm if anything can still scroll.
func (c *Controller) frame() {
	c.scrolling = false
	st := c.coord.State()
	if st.OwnerPaneID != c.paneID || st.Active == nil {
		return
	}
	region, down, step, ok := pickScroll(c.lastY, c.regions(), c.tuning)
	if !ok {
		return
	}
	if !down {
		step = -step
	}
	region.ScrollBy(step)

	next := *st.Active
	next.Plan = ResolveDropPlan(c.lastX, c.lastY, &next.Intent, c.coord.Env())
	c.coord.UpdateActive(c.paneID, &next)

	if _, _, _, again := pickScroll(c.lastY, c.regions(), c.tuning); again {
		c.scrolling = true
		c.frames.Request(c.frame)
	}
}

func (c *Controller) stopScroll() {
	if c.frames != nil && c.scrolling {
		c.frames.Cancel()
	}
	c.scrolling = false
}
