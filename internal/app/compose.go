package app

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/ocn-sys/ocn/internal/pool"
)

const resetSGR = "\x1b[m"

// canvas is a fixed size grid of terminal lines. Layers are painted bottom
// to top; each put replaces the cells it covers.
type canvas struct {
	w, h  int
	lines []string
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	c := &canvas{w: w, h: h, lines: make([]string, h)}
	blank := strings.Repeat(" ", w)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// put paints a single line s with its first cell at (x, y). Cells outside
// the canvas are clipped.
func (c *canvas) put(x, y int, s string) {
	if y < 0 || y >= c.h || s == "" {
		return
	}
	if x < 0 {
		s = ansi.TruncateLeft(s, -x, "")
		x = 0
	}
	if x >= c.w {
		return
	}
	s = ansi.Truncate(s, c.w-x, "")
	sw := ansi.StringWidth(s)
	if sw == 0 {
		return
	}

	line := c.lines[y]
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)

	left := ansi.Truncate(line, x, "")
	sb.WriteString(left)
	// A wide rune cut by the left edge leaves a gap.
	if lw := ansi.StringWidth(left); lw < x {
		sb.WriteString(strings.Repeat(" ", x-lw))
	}
	sb.WriteString(resetSGR)
	sb.WriteString(s)
	sb.WriteString(resetSGR)
	if end := x + sw; end < c.w {
		right := ansi.TruncateLeft(line, end, "")
		if rw := ansi.StringWidth(right); rw < c.w-end {
			sb.WriteString(strings.Repeat(" ", c.w-end-rw))
		}
		sb.WriteString(right)
	}
	c.lines[y] = sb.String()
}

// block paints lines top-down starting at (x, y).
func (c *canvas) block(x, y int, lines []string) {
	for i, l := range lines {
		c.put(x, y+i, l)
	}
}

func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}

// fit pads or clips s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "")
	if sw := ansi.StringWidth(s); sw < w {
		s += strings.Repeat(" ", w-sw)
	}
	return s
}
