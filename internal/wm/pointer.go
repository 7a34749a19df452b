package wm

import (
	"sort"
	"sync"

	tea "charm.land/bubbletea/v2"
)

// PointerKind distinguishes pointer events.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	// PointerCancel is raised when a gesture is lost, for example when the
	// terminal loses focus before the button is released.
	PointerCancel
)

// PointerEvent is a device independent pointer sample in workspace cells.
type PointerEvent struct {
	Kind   PointerKind
	X, Y   int
	Button tea.MouseButton
}

// Point returns the event position.
func (e PointerEvent) Point() Point { return Point{e.X, e.Y} }

// FromMouse converts a Bubble Tea mouse message. Terminals report touch input
// as mouse events, so this is the only extraction path.
func FromMouse(msg tea.Msg) (PointerEvent, bool) {
	switch m := msg.(type) {
	case tea.MouseClickMsg:
		mouse := m.Mouse()
		return PointerEvent{Kind: PointerDown, X: mouse.X, Y: mouse.Y, Button: mouse.Button}, true
	case tea.MouseMotionMsg:
		mouse := m.Mouse()
		return PointerEvent{Kind: PointerMove, X: mouse.X, Y: mouse.Y, Button: mouse.Button}, true
	case tea.MouseReleaseMsg:
		mouse := m.Mouse()
		return PointerEvent{Kind: PointerUp, X: mouse.X, Y: mouse.Y, Button: mouse.Button}, true
	}
	return PointerEvent{}, false
}

// PointerHandler receives dispatched events.
type PointerHandler func(PointerEvent)

// PointerBus fans pointer events out to subscribed handlers.
type PointerBus struct {
	mu       sync.Mutex
	next     int
	handlers map[PointerKind]map[int]PointerHandler
}

// NewPointerBus returns an empty bus.
func NewPointerBus() *PointerBus {
	return &PointerBus{handlers: make(map[PointerKind]map[int]PointerHandler)}
}

// Subscribe registers h for events of kind. The returned function removes
// it and may be called any number of times.
func (b *PointerBus) Subscribe(kind PointerKind, h PointerHandler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[int]PointerHandler)
	}
	b.handlers[kind][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[kind], id)
	}
}

// Dispatch delivers ev to the handlers subscribed when dispatch started, in
// subscription order. Handlers may unsubscribe during delivery.
func (b *PointerBus) Dispatch(ev PointerEvent) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.handlers[ev.Kind]))
	for id := range b.handlers[ev.Kind] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	hs := make([]PointerHandler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, b.handlers[ev.Kind][id])
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}

// Handlers returns the number of attached handlers.
func (b *PointerBus) Handlers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, hs := range b.handlers {
		n += len(hs)
	}
	return n
}
