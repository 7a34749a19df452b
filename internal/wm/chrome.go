package wm

// Region is the part of a window under the pointer.
type Region int

const (
	RegionNone Region = iota
	RegionTitle
	RegionMinimize
	RegionClose
	RegionResize
	RegionBody
)

// Title bar layout: the top border row carries the title on the left and
// two three-cell buttons, "[_]" then "[x]", just inside the right corner.
const (
	ButtonWidth = 3
	closeInset  = 1 + ButtonWidth
	minInset    = closeInset + ButtonWidth
)

// CloseButtonX returns the first column of the close button.
func CloseButtonX(w *Window) int { return w.Pos.X + w.Size.W - closeInset }

// MinimizeButtonX returns the first column of the minimize button.
func MinimizeButtonX(w *Window) int { return w.Pos.X + w.Size.W - minInset }

// RegionAt classifies the cell (x, y) relative to w.
func RegionAt(w *Window, x, y int) Region {
	if w == nil || !w.Rect().Contains(x, y) {
		return RegionNone
	}
	right := w.Pos.X + w.Size.W - 1
	bottom := w.Pos.Y + w.Size.H - 1
	if y == w.Pos.Y {
		if w.Size.W > minInset+2 {
			if cx := CloseButtonX(w); x >= cx && x < cx+ButtonWidth {
				return RegionClose
			}
			if mx := MinimizeButtonX(w); x >= mx && x < mx+ButtonWidth {
				return RegionMinimize
			}
		}
		return RegionTitle
	}
	if y == bottom && x >= right-1 {
		return RegionResize
	}
	return RegionBody
}
