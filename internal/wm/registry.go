// Package wm implements the desktop window manager: a registry of declared
// windows with focus and stacking, overlap-avoiding placement, and the
// pointer-driven drag and resize controller.
package wm

import (
	"slices"
	"sort"
)

// State is the visibility of a window.
type State int

const (
	// Hidden windows are closed and not drawn.
	Hidden State = iota
	// Active is the single focused window. It holds the highest Z.
	Active
	// Faded windows are open but not focused.
	Faded
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Faded:
		return "faded"
	default:
		return "hidden"
	}
}

// IsOpen reports whether the window is drawn.
func (s State) IsOpen() bool { return s != Hidden }

// Window is a managed window.
type Window struct {
	ID    string
	Title string
	Pos   Point
	Size  Size
	Z     int
	State State
}

// Rect returns the window bounds.
func (w *Window) Rect() Rect { return Rect{Pos: w.Pos, Size: w.Size} }

// Decl declares a window at construction time.
type Decl struct {
	ID     string
	Title  string
	X, Y   int
	Width  int
	Height int
	Open   bool
}

// Options tunes placement and clamping.
type Options struct {
	// Nudge is added once to a newly activated window that overlaps another.
	Nudge Point
	// NarrowWidth disables smart placement for viewports narrower than this.
	NarrowWidth int
	// MinSize is the smallest size a resize may produce.
	MinSize Size
	// Grip is how many title bar cells must stay on screen horizontally.
	Grip int
}

// Registry owns every window and the global Z counter.
type Registry struct {
	windows  map[string]*Window
	order    []string
	z        int
	viewport Size
	opts     Options
}

// NewRegistry creates a registry with the declared windows. Declarations
// marked Open start visible, the last of them focused.
func NewRegistry(opts Options, decls ...Decl) *Registry {
	if opts.MinSize.W < 1 {
		opts.MinSize.W = 1
	}
	if opts.MinSize.H < 1 {
		opts.MinSize.H = 1
	}
	if opts.Grip < 1 {
		opts.Grip = 1
	}
	r := &Registry{
		windows: make(map[string]*Window, len(decls)),
		opts:    opts,
	}
	for _, d := range decls {
		if _, dup := r.windows[d.ID]; dup || d.ID == "" {
			continue
		}
		r.windows[d.ID] = &Window{
			ID:    d.ID,
			Title: d.Title,
			Pos:   Point{d.X, d.Y},
			Size:  Size{max(d.Width, opts.MinSize.W), max(d.Height, opts.MinSize.H)},
		}
		r.order = append(r.order, d.ID)
	}
	for _, d := range decls {
		if d.Open {
			if w := r.windows[d.ID]; w != nil && !w.State.IsOpen() {
				r.activate(w, false)
			}
		}
	}
	return r
}

// Options returns the placement options in use.
func (r *Registry) Options() Options { return r.opts }

// Get returns the window with id, or nil.
func (r *Registry) Get(id string) *Window { return r.windows[id] }

// State returns the state of id. Unknown windows are hidden.
func (r *Registry) State(id string) State {
	if w := r.windows[id]; w != nil {
		return w.State
	}
	return Hidden
}

// Windows returns every window in declaration order.
func (r *Registry) Windows() []*Window {
	out := make([]*Window, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.windows[id])
	}
	return out
}

// Open returns the open windows in paint order, lowest Z first.
func (r *Registry) Open() []*Window {
	var out []*Window
	for _, id := range r.order {
		if w := r.windows[id]; w.State.IsOpen() {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Active returns the focused window, or nil.
func (r *Registry) Active() *Window {
	for _, w := range r.windows {
		if w.State == Active {
			return w
		}
	}
	return nil
}

// TopAt returns the highest open window containing the cell (x, y).
func (r *Registry) TopAt(x, y int) *Window {
	open := r.Open()
	for i := len(open) - 1; i >= 0; i-- {
		if open[i].Rect().Contains(x, y) {
			return open[i]
		}
	}
	return nil
}

// Toggle closes an active window, or opens and focuses any other window.
// Unknown ids are ignored.
func (r *Registry) Toggle(id string) State {
	w := r.windows[id]
	if w == nil {
		return Hidden
	}
	if w.State == Active {
		r.close(w)
		return w.State
	}
	r.activate(w, true)
	return w.State
}

// Close hides an open window.
func (r *Registry) Close(id string) {
	if w := r.windows[id]; w != nil && w.State.IsOpen() {
		r.close(w)
	}
}

// Focus raises an open window without changing what is visible. Hidden and
// unknown windows are ignored.
func (r *Registry) Focus(id string) {
	w := r.windows[id]
	if w == nil || !w.State.IsOpen() {
		return
	}
	if w.State == Active && w.Z == r.z {
		return
	}
	r.fadeOthers(w)
	w.State = Active
	r.z++
	w.Z = r.z
}

// Cycle focuses the next (dir > 0) or previous open window in dock order.
func (r *Registry) Cycle(dir int) *Window {
	var open []string
	for _, id := range r.order {
		if r.windows[id].State.IsOpen() {
			open = append(open, id)
		}
	}
	if len(open) == 0 {
		return nil
	}
	idx := 0
	if a := r.Active(); a != nil {
		idx = slices.Index(open, a.ID)
		if dir >= 0 {
			idx++
		} else {
			idx--
		}
	}
	idx = ((idx % len(open)) + len(open)) % len(open)
	r.Focus(open[idx])
	return r.windows[open[idx]]
}

func (r *Registry) activate(w *Window, place bool) {
	r.fadeOthers(w)
	w.State = Active
	r.z++
	w.Z = r.z
	if place {
		r.smartPosition(w)
	}
}

func (r *Registry) fadeOthers(w *Window) {
	for _, o := range r.windows {
		if o != w && o.State == Active {
			o.State = Faded
		}
	}
}

// close hides w and hands focus to the highest remaining open window
// without bumping its Z.
func (r *Registry) close(w *Window) {
	wasActive := w.State == Active
	w.State = Hidden
	if !wasActive {
		return
	}
	var next *Window
	for _, o := range r.windows {
		if o.State == Faded && (next == nil || o.Z > next.Z) {
			next = o
		}
	}
	if next != nil {
		next.State = Active
	}
}

// SetViewport records the workspace size and pulls windows back on screen.
func (r *Registry) SetViewport(width, height int) {
	r.viewport = Size{width, height}
	for _, w := range r.windows {
		w.Pos = r.clampPos(w.Pos, w.Size)
	}
}

// Viewport returns the last workspace size.
func (r *Registry) Viewport() Size { return r.viewport }

// Move places a window, keeping its title bar reachable.
func (r *Registry) Move(id string, pos Point) {
	if w := r.windows[id]; w != nil {
		w.Pos = r.clampPos(pos, w.Size)
	}
}

// Resize sets a window size, never below the minimum.
func (r *Registry) Resize(id string, size Size) {
	if w := r.windows[id]; w != nil {
		w.Size = r.clampSize(size)
	}
}

func (r *Registry) clampSize(s Size) Size {
	return Size{max(s.W, r.opts.MinSize.W), max(s.H, r.opts.MinSize.H)}
}

// clampPos keeps Grip cells of the title bar inside the viewport. Without a
// known viewport positions are left alone.
func (r *Registry) clampPos(p Point, s Size) Point {
	if r.viewport.W <= 0 || r.viewport.H <= 0 {
		return p
	}
	grip := min(r.opts.Grip, s.W)
	return Point{
		X: clamp(p.X, -(s.W - grip), r.viewport.W-grip),
		Y: clamp(p.Y, 0, r.viewport.H-1),
	}
}
