package drag

// Rect is an axis-aligned rectangle in host coordinates. The engine never
// assumes a unit: a GUI host measures in pixels, the TUI host in cells.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}
