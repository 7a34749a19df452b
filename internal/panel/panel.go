// Package panel holds the typed state of every reveal target. Panels are
// plain records owned by the Desktop; the reveal engine and the search
// overlay mutate them and the renderer reads them.
package panel

// Scroll is a pending scroll request for the view showing a panel.
type Scroll int

const (
	ScrollNone Scroll = iota
	ScrollTop
	ScrollBottom
	// ScrollActive brings the current search match into view.
	ScrollActive
)

func (s Scroll) String() string {
	switch s {
	case ScrollTop:
		return "top"
	case ScrollBottom:
		return "bottom"
	case ScrollActive:
		return "active"
	default:
		return "none"
	}
}

// Panel is one reveal target.
type Panel struct {
	ID string
	// Markup is what the panel currently displays.
	Markup string
	// Snapshot is the last fully rendered clean markup. Empty until a
	// reveal completes or a search captures the current markup.
	Snapshot        string
	SelectedTrigger string
	Scroll          Scroll
	Revealing       bool
	// Version increments whenever Markup changes so views can cache layouts.
	Version uint64
}

// SetMarkup replaces the displayed markup.
func (p *Panel) SetMarkup(m string) {
	p.Markup = m
	p.Version++
}

// TakeScroll returns the pending scroll request and clears it.
func (p *Panel) TakeScroll() Scroll {
	s := p.Scroll
	p.Scroll = ScrollNone
	return s
}

// Store keeps panels in declaration order.
type Store struct {
	panels map[string]*Panel
	order  []string
}

// NewStore creates a store holding an empty panel for each id.
func NewStore(ids ...string) *Store {
	s := &Store{panels: make(map[string]*Panel, len(ids))}
	for _, id := range ids {
		s.Ensure(id)
	}
	return s
}

// Get returns the panel or nil when id is unknown.
func (s *Store) Get(id string) *Panel {
	return s.panels[id]
}

// Ensure returns the panel for id, creating it if needed.
func (s *Store) Ensure(id string) *Panel {
	if p, ok := s.panels[id]; ok {
		return p
	}
	p := &Panel{ID: id}
	s.panels[id] = p
	s.order = append(s.order, id)
	return p
}

// IDs lists panel ids in creation order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

// Len reports the number of panels.
func (s *Store) Len() int { return len(s.order) }
