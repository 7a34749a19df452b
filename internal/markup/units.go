package markup

import (
	"strings"
	"unicode/utf8"
)

// MaxEntityLen bounds how far an '&' looks for its terminating ';'.
const MaxEntityLen = 12

const (
	commentOpen  = "<!--"
	commentClose = "-->"
)

// NextUnit returns the end offset of the reveal unit that starts at i. A
// unit is a whole tag, a whole comment, a whole character entity, or one
// UTF-8 rune, so any prefix s[:NextUnit(s, i)] never ends inside a tag or an
// entity. A comment runs to its "-->" even across '>'. An unterminated tag
// or comment runs to the end of s.
func NextUnit(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	switch s[i] {
	case '<':
		if strings.HasPrefix(s[i:], commentOpen) {
			if j := strings.Index(s[i+len(commentOpen):], commentClose); j >= 0 {
				return i + len(commentOpen) + j + len(commentClose)
			}
			return len(s)
		}
		if j := strings.IndexByte(s[i:], '>'); j >= 0 {
			return i + j + 1
		}
		return len(s)
	case '&':
		if end := entityEnd(s, i); end > 0 {
			return end
		}
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}

// entityEnd returns the offset after the ';' of an entity at i, or 0.
func entityEnd(s string, i int) int {
	limit := min(len(s), i+MaxEntityLen)
	for j := i + 1; j < limit; j++ {
		c := s[j]
		switch {
		case c == ';':
			if j == i+1 {
				return 0
			}
			return j + 1
		case c == '#' && j == i+1:
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return 0
		}
	}
	return 0
}

// Advance moves the cursor forward by n units.
func Advance(s string, cursor, n int) int {
	for range n {
		if cursor >= len(s) {
			break
		}
		cursor = NextUnit(s, cursor)
	}
	return cursor
}

// Segment is a run of markup that is either one tag or plain text.
type Segment struct {
	Tag        bool
	Start, End int
}

// Segments splits markup into alternating tag and text runs covering every
// byte of s.
func Segments(s string) []Segment {
	var segs []Segment
	textStart := -1
	for i := 0; i < len(s); {
		if s[i] == '<' {
			if textStart >= 0 {
				segs = append(segs, Segment{Start: textStart, End: i})
				textStart = -1
			}
			end := NextUnit(s, i)
			segs = append(segs, Segment{Tag: true, Start: i, End: end})
			i = end
			continue
		}
		if textStart < 0 {
			textStart = i
		}
		i++
	}
	if textStart >= 0 {
		segs = append(segs, Segment{Start: textStart, End: len(s)})
	}
	return segs
}
