package wm

// SessionKind is the gesture a session performs.
type SessionKind int

const (
	Drag SessionKind = iota
	Resize
)

func (k SessionKind) String() string {
	if k == Resize {
		return "resize"
	}
	return "drag"
}

// Session is one pointer gesture on one window. It exists from pointer-down
// until pointer-up or cancel.
type Session struct {
	WindowID   string
	Kind       SessionKind
	Origin     Point
	OriginPos  Point
	OriginSize Size

	unsubscribe []func()
}

// Controller turns pointer gestures into window moves and resizes.
type Controller struct {
	reg    *Registry
	bus    *PointerBus
	active *Session

	// OnChange, when set, is called after every geometry update.
	OnChange func(windowID string)
	// OnEnd, when set, is called once a session has been torn down.
	OnEnd func(s Session)
}

// NewController binds a controller to a registry and a pointer bus.
func NewController(reg *Registry, bus *PointerBus) *Controller {
	return &Controller{reg: reg, bus: bus}
}

// Active returns the running session, or nil when idle.
func (c *Controller) Active() *Session { return c.active }

// BeginDrag starts moving window id from the pointer-down event ev.
func (c *Controller) BeginDrag(id string, ev PointerEvent) bool {
	return c.begin(id, Drag, ev)
}

// BeginResize starts resizing window id from the pointer-down event ev.
func (c *Controller) BeginResize(id string, ev PointerEvent) bool {
	return c.begin(id, Resize, ev)
}

func (c *Controller) begin(id string, kind SessionKind, ev PointerEvent) bool {
	w := c.reg.Get(id)
	if w == nil || !w.State.IsOpen() {
		return false
	}
	// A lost release can leave a session behind; never run two.
	c.end()

	c.reg.Focus(id)
	s := &Session{
		WindowID:   id,
		Kind:       kind,
		Origin:     ev.Point(),
		OriginPos:  w.Pos,
		OriginSize: w.Size,
	}
	s.unsubscribe = []func(){
		c.bus.Subscribe(PointerMove, c.move),
		c.bus.Subscribe(PointerUp, func(PointerEvent) { c.end() }),
		c.bus.Subscribe(PointerCancel, func(PointerEvent) { c.end() }),
	}
	c.active = s
	return true
}

func (c *Controller) move(ev PointerEvent) {
	s := c.active
	if s == nil {
		return
	}
	delta := ev.Point().Sub(s.Origin)
	switch s.Kind {
	case Drag:
		c.reg.Move(s.WindowID, s.OriginPos.Add(delta))
	case Resize:
		c.reg.Resize(s.WindowID, Size{s.OriginSize.W + delta.X, s.OriginSize.H + delta.Y})
	}
	if c.OnChange != nil {
		c.OnChange(s.WindowID)
	}
}

// Cancel aborts the running session, keeping the geometry reached so far.
func (c *Controller) Cancel() {
	c.end()
}

func (c *Controller) end() {
	s := c.active
	if s == nil {
		return
	}
	c.active = nil
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
	if c.OnEnd != nil {
		c.OnEnd(*s)
	}
}
