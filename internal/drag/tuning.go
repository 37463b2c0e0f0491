package drag

// Tuning holds the geometric constants of the interaction. Defaults are
// pixel values; the TUI host overrides them with cell-sized equivalents.
type Tuning struct {
	// ActivateThreshold is the max(|dx|, |dy|) a pointer must travel from
	// its origin before an intent promotes to an active drag.
	ActivateThreshold float64
	// ScrollBand is the edge-proximity band inside which auto-scroll
	// intensity rises toward 1.
	ScrollBand float64
	// ScrollMinStep / ScrollMaxStep bound the per-frame scroll delta.
	ScrollMinStep float64
	ScrollMaxStep float64
}

func DefaultTuning() Tuning {
	return Tuning{
		ActivateThreshold: 4,
		ScrollBand:        64,
		ScrollMinStep:     6,
		ScrollMaxStep:     24,
	}
}

// normalized fills zero fields from the defaults so a partially specified
// Tuning behaves sensibly.
func (t Tuning) normalized() Tuning {
	def := DefaultTuning()
	if t.ActivateThreshold <= 0 {
		t.ActivateThreshold = def.ActivateThreshold
	}
	if t.ScrollBand <= 0 {
		t.ScrollBand = def.ScrollBand
	}
	if t.ScrollMinStep <= 0 {
		t.ScrollMinStep = def.ScrollMinStep
	}
	if t.ScrollMaxStep < t.ScrollMinStep {
		t.ScrollMaxStep = def.ScrollMaxStep
	}
	if t.ScrollMaxStep < t.ScrollMinStep {
		t.ScrollMaxStep = t.ScrollMinStep
	}
	return t
}
