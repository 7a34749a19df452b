package wm

// Point is a cell coordinate relative to the top-left of the workspace.
type Point struct {
	X, Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is a width and height in cells.
type Size struct {
	W, H int
}

// Rect is an axis-aligned rectangle. Max is exclusive.
type Rect struct {
	Pos  Point
	Size Size
}

// Intersects reports strict overlap on both axes. Rectangles that only
// share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Pos.X < o.Pos.X+o.Size.W && o.Pos.X < r.Pos.X+r.Size.W &&
		r.Pos.Y < o.Pos.Y+o.Size.H && o.Pos.Y < r.Pos.Y+r.Size.H
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Pos.X && x < r.Pos.X+r.Size.W && y >= r.Pos.Y && y < r.Pos.Y+r.Size.H
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
