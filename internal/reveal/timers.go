// Package reveal plays panel sources into panels with a typewriter effect.
//
// Timers are Bubble Tea tick commands carrying a tag. A panel owns at most
// one start tag and one tick tag at a time; clearing a panel invalidates its
// tags at once, so a message from a superseded job is dropped on arrival.
package reveal

// Timers is the per-panel registry of live timer tags.
type Timers struct {
	seq  uint64
	live map[string]timerPair
}

type timerPair struct {
	start, tick uint64
}

// NewTimers creates an empty registry.
func NewTimers() *Timers {
	return &Timers{live: make(map[string]timerPair)}
}

func (t *Timers) next() uint64 {
	t.seq++
	return t.seq
}

// ArmStart issues a new start tag for panel.
func (t *Timers) ArmStart(panel string) uint64 {
	p := t.live[panel]
	p.start = t.next()
	t.live[panel] = p
	return p.start
}

// ArmTick issues a new tick tag for panel. The start tag is spent.
func (t *Timers) ArmTick(panel string) uint64 {
	p := t.live[panel]
	p.start = 0
	p.tick = t.next()
	t.live[panel] = p
	return p.tick
}

// Clear invalidates both tags of panel and reports whether any was live.
func (t *Timers) Clear(panel string) bool {
	_, ok := t.live[panel]
	delete(t.live, panel)
	return ok
}

// Live reports whether tag is the current start or tick tag of panel.
func (t *Timers) Live(panel string, tag uint64) bool {
	if tag == 0 {
		return false
	}
	p, ok := t.live[panel]
	return ok && (p.start == tag || p.tick == tag)
}

// Pending reports whether panel has a live timer.
func (t *Timers) Pending(panel string) bool {
	_, ok := t.live[panel]
	return ok
}

// Len reports how many panels have live timers.
func (t *Timers) Len() int { return len(t.live) }
