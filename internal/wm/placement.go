package wm

// smartPosition nudges a freshly activated window by one Nudge when its
// rectangle overlaps any other open window. The nudge is applied once, no
// matter how many windows overlap, so the result may still overlap something.
func (r *Registry) smartPosition(w *Window) {
	if r.viewport.W > 0 && r.viewport.W < r.opts.NarrowWidth {
		return
	}
	origin := w.Rect()
	for _, id := range r.order {
		o := r.windows[id]
		if o == w || !o.State.IsOpen() {
			continue
		}
		if origin.Intersects(o.Rect()) {
			w.Pos = r.clampPos(origin.Pos.Add(r.opts.Nudge), w.Size)
			return
		}
	}
}
