// Package search highlights literal matches in a panel's clean snapshot
// and tracks the current match.
package search

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ocn-sys/ocn/internal/markup"
	"github.com/ocn-sys/ocn/internal/panel"
)

// MinQueryLen is the shortest query, in runes, that searches.
const MinQueryLen = 2

// Match is a byte span of the snapshot covered by one highlight.
type Match struct {
	Start, End int
}

// State is the search state of one panel.
type State struct {
	Owner   string
	Query   string
	Current int
	Matches []Match
	Counter string
}

// Overlay owns the search state of every panel.
type Overlay struct {
	panels *panel.Store
	states map[string]*State
	settle func(panelID string)
}

// New creates an overlay over panels. settle, when set, is called before a
// query reads a panel so a running reveal is finished first.
func New(panels *panel.Store, settle func(panelID string)) *Overlay {
	return &Overlay{
		panels: panels,
		states: make(map[string]*State),
		settle: settle,
	}
}

// SetQuery searches panelID for query on behalf of windowID. Queries
// shorter than MinQueryLen restore the clean snapshot and clear the state.
func (o *Overlay) SetQuery(windowID, panelID, query string) {
	p := o.panels.Get(panelID)
	if p == nil {
		return
	}
	if utf8.RuneCountInString(query) < MinQueryLen {
		if p.Snapshot != "" && p.Markup != p.Snapshot {
			p.SetMarkup(p.Snapshot)
		}
		delete(o.states, panelID)
		return
	}

	if o.settle != nil {
		o.settle(panelID)
	}
	if p.Snapshot == "" {
		p.Snapshot = p.Markup
	}

	st := &State{
		Owner:   windowID,
		Query:   query,
		Current: -1,
		Matches: Find(p.Snapshot, query),
	}
	o.states[panelID] = st
	if len(st.Matches) == 0 {
		st.Counter = "0/0"
		p.SetMarkup(p.Snapshot)
		return
	}
	st.Current = 0
	o.apply(p, st)
}

// Navigate moves the current match by dir with wraparound.
func (o *Overlay) Navigate(panelID string, dir int) {
	st, ok := o.states[panelID]
	p := o.panels.Get(panelID)
	if !ok || p == nil || len(st.Matches) == 0 {
		return
	}
	n := len(st.Matches)
	st.Current = ((st.Current+dir)%n + n) % n
	o.apply(p, st)
}

// Reset drops the state of panelID.
func (o *Overlay) Reset(panelID string) {
	delete(o.states, panelID)
}

// State returns a copy of the state of panelID. Panels without a search
// report Current -1 and an empty counter.
func (o *Overlay) State(panelID string) State {
	st, ok := o.states[panelID]
	if !ok {
		return State{Current: -1}
	}
	cp := *st
	cp.Matches = append([]Match(nil), st.Matches...)
	return cp
}

// Counter returns the "i/n" display for panelID.
func (o *Overlay) Counter(panelID string) string {
	if st, ok := o.states[panelID]; ok {
		return st.Counter
	}
	return ""
}

func (o *Overlay) apply(p *panel.Panel, st *State) {
	p.SetMarkup(Highlight(p.Snapshot, st.Matches, st.Current))
	p.Scroll = panel.ScrollActive
	st.Counter = fmt.Sprintf("%d/%d", st.Current+1, len(st.Matches))
}

// Find returns the spans of snapshot whose text matches query, ignoring
// case. Only text between tags is searched and an entity is matched by
// the character it stands for, so a span never cuts a tag or an entity.
func Find(snapshot, query string) []Match {
	if query == "" {
		return nil
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))

	var out []Match
	for _, seg := range markup.Segments(snapshot) {
		if seg.Tag {
			continue
		}
		out = append(out, findInText(snapshot, seg, re)...)
	}
	return out
}

// findInText decodes the units of one text segment, matches the decoded
// text and maps each hit back to whole source units.
func findInText(s string, seg markup.Segment, re *regexp.Regexp) []Match {
	var (
		decoded strings.Builder
		starts  []int // source offset of the unit behind each decoded byte
		ends    []int
	)
	for i := seg.Start; i < seg.End; {
		j := markup.NextUnit(s[:seg.End], i)
		unit := s[i:j]
		if unit[0] == '&' && len(unit) > 1 {
			unit = html.UnescapeString(unit)
		}
		for range len(unit) {
			starts = append(starts, i)
			ends = append(ends, j)
		}
		decoded.WriteString(unit)
		i = j
	}

	text := decoded.String()
	var out []Match
	prevEnd := seg.Start
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		m := Match{Start: starts[loc[0]], End: ends[loc[1]-1]}
		if m.Start < prevEnd {
			continue
		}
		out = append(out, m)
		prevEnd = m.End
	}
	return out
}

// Highlight wraps every match of snapshot in a highlight mark. The match at
// index current also carries the active class.
func Highlight(snapshot string, matches []Match, current int) string {
	var sb strings.Builder
	sb.Grow(len(snapshot) + len(matches)*48)
	last := 0
	for i, m := range matches {
		sb.WriteString(snapshot[last:m.Start])
		if i == current {
			sb.WriteString(`<mark class="` + markup.ClassHighlight + " " + markup.ClassActive + `">`)
		} else {
			sb.WriteString(`<mark class="` + markup.ClassHighlight + `">`)
		}
		sb.WriteString(snapshot[m.Start:m.End])
		sb.WriteString("</mark>")
		last = m.End
	}
	sb.WriteString(snapshot[last:])
	return sb.String()
}
