package markup

import "strings"

// TextReveal types out the text of a markup document while its structure
// stays in place: every frame contains all tags, the text before the cursor,
// and nothing of the text after it. Whitespace-only text is shown at once.
type TextReveal struct {
	src  string
	segs []Segment
	seg  int // index of the text segment being typed
	pos  int // absolute cursor inside segs[seg]
}

// NewTextReveal prepares a reveal of markup.
func NewTextReveal(markup string) *TextReveal {
	t := &TextReveal{src: markup, segs: Segments(markup)}
	t.seg = -1
	t.nextText()
	return t
}

// nextText moves to the next text segment that has visible characters.
func (t *TextReveal) nextText() {
	for t.seg++; t.seg < len(t.segs); t.seg++ {
		s := t.segs[t.seg]
		if !s.Tag && strings.TrimSpace(t.src[s.Start:s.End]) != "" {
			t.pos = s.Start
			return
		}
	}
}

// Done reports whether every text segment has been typed.
func (t *TextReveal) Done() bool { return t.seg >= len(t.segs) }

// Step advances n units and returns the frame to display.
func (t *TextReveal) Step(n int) string {
	for range n {
		if t.Done() {
			break
		}
		end := t.segs[t.seg].End
		t.pos = NextUnit(t.src[:end], t.pos)
		if t.pos >= end {
			t.nextText()
		}
	}
	return t.Frame()
}

// Frame renders the current state.
func (t *TextReveal) Frame() string {
	if t.Done() {
		return t.src
	}
	var sb strings.Builder
	sb.Grow(len(t.src))
	for i, s := range t.segs {
		text := t.src[s.Start:s.End]
		switch {
		case s.Tag, i < t.seg, strings.TrimSpace(text) == "":
			sb.WriteString(text)
		case i == t.seg:
			sb.WriteString(t.src[s.Start:t.pos])
		}
	}
	return sb.String()
}
