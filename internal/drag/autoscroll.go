package drag

// ScrollRegion is one scrollable container a pane exposes to the engine:
// anything between the anchor row and the pane root whose content exceeds
// its box.
type ScrollRegion interface {
	// Viewport returns the region's visible box in host coordinates.
	Viewport() Rect
	// CanScroll reports whether the region can still move in the given
	// direction (down = content advances toward the end).
	CanScroll(down bool) bool
	// ScrollBy scrolls the content; positive deltas scroll down.
	ScrollBy(delta float64)
}

// FrameScheduler runs a callback on the host's next animation frame. The
// TUI host drives it from its tick loop; tests step it by hand.
type FrameScheduler interface {
	Request(fn func())
	Cancel()
}

// edgeIntensity computes the auto-scroll intensity toward the top and
// bottom edges for a pointer at y. Inside the viewport the intensity rises
// linearly from 0 at the band boundary to 1 at the edge; outside it
// approaches 1 asymptotically with outward distance.
func edgeIntensity(y float64, vp Rect, band float64) (up, down float64) {
	if band <= 0 {
		return 0, 0
	}
	top := vp.Top
	bottom := vp.Bottom()
	switch {
	case y < top:
		d := top - y
		up = d / (d + band)
	case y < top+band:
		up = (band - (y - top)) / band
	}
	switch {
	case y > bottom:
		d := y - bottom
		down = d / (d + band)
	case y > bottom-band:
		down = (band - (bottom - y)) / band
	}
	return up, down
}

// scrollStep maps an intensity in [0,1] onto the configured delta range.
func scrollStep(intensity float64, t Tuning) float64 {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	return t.ScrollMinStep + intensity*(t.ScrollMaxStep-t.ScrollMinStep)
}

// pickScroll selects the region and direction with the strongest eligible
// intensity for the pointer, ties breaking toward scrolling down. Regions
// that cannot scroll further in the needed direction are skipped, so the
// loop self-terminates once nothing can move.
func pickScroll(y float64, regions []ScrollRegion, t Tuning) (region ScrollRegion, down bool, step float64, ok bool) {
	best := 0.0
	for _, r := range regions {
		if r == nil {
			continue
		}
		up, dn := edgeIntensity(y, r.Viewport(), t.ScrollBand)
		if dn > 0 && dn >= up && dn > best && r.CanScroll(true) {
			region, down, best, ok = r, true, dn, true
		}
		if up > 0 && up > dn && up > best && r.CanScroll(false) {
			region, down, best, ok = r, false, up, true
		}
	}
	if !ok {
		return nil, false, 0, false
	}
	return region, down, scrollStep(best, t), true
}
