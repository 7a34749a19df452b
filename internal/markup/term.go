package markup

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/net/html"

	"github.com/ocn-sys/ocn/internal/pool"
)

// Class names understood by the renderer.
const (
	ClassHighlight   = "search-highlight"
	ClassActive      = "active-highlight"
	ClassPlaceholder = "decrypting"
)

// Styles is the palette used to draw markup.
type Styles struct {
	Text        lipgloss.Style
	Heading     lipgloss.Style
	Title       lipgloss.Style
	Code        lipgloss.Style
	Link        lipgloss.Style
	LinkURL     lipgloss.Style
	Quote       lipgloss.Style
	Rule        lipgloss.Style
	Bullet      lipgloss.Style
	TableBorder lipgloss.Style
	Mark        lipgloss.Style
	MarkActive  lipgloss.Style
	Placeholder lipgloss.Style
	// CodeTheme is a Chroma style name.
	CodeTheme string
	ASCII     bool
}

// DefaultStyles is a neutral palette for tests and plain terminals.
func DefaultStyles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle(),
		Heading:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Underline(true),
		Code:        lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Link:        lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("12")),
		LinkURL:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Quote:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Rule:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bullet:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		TableBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Mark:        lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
		MarkActive:  lipgloss.NewStyle().Background(lipgloss.Color("13")).Foreground(lipgloss.Color("0")).Bold(true),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Blink(true),
		CodeTheme:   defaultCodeStyle,
	}
}

// Rendered is markup laid out for a fixed width.
type Rendered struct {
	Lines []string
	// ActiveLine is the line holding the current search match, or -1.
	ActiveLine int
}

type logicalLine struct {
	prefix string
	cont   string
	body   string
	nowrap bool
	active bool
}

type listState struct {
	ordered bool
	n       int
}

type termRenderer struct {
	st    Styles
	width int

	lines  []logicalLine
	cur    *strings.Builder
	prefix string
	cont   string
	active bool

	bold, italic, strike, code, mark, markActive, placeholder, heading int
	links                                                            []string
	linkText                                                         []string
	lists                                                            []listState
	quote                                                            int
	bullet                                                           string
	inItem                                                           int

	inPre   bool
	codeBuf strings.Builder
	lang    string

	cells int
}

// Render lays out markup as styled terminal lines no wider than width.
// Partial markup, as produced mid-reveal, is accepted.
func Render(markup string, width int, st Styles) Rendered {
	width = max(width, 8)
	r := &termRenderer{st: st, width: width, cur: pool.GetStringBuilder()}
	defer pool.PutStringBuilder(r.cur)

	z := html.NewTokenizer(strings.NewReader(markup))
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.TextToken:
			r.text(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			r.start(tagInfo(z))
		case html.EndTagToken:
			name, _ := z.TagName()
			r.end(string(name))
		}
	}
	if r.inPre {
		r.flushCode()
	}
	r.flush(false)
	for len(r.lines) > 0 && r.lines[len(r.lines)-1].body == "" {
		r.lines = r.lines[:len(r.lines)-1]
	}
	return r.layout()
}

func tagInfo(z *html.Tokenizer) (string, map[string]string) {
	name, hasAttr := z.TagName()
	var attrs map[string]string
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = z.TagAttr()
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[string(k)] = string(v)
	}
	return string(name), attrs
}

func hasClass(attrs map[string]string, class string) bool {
	for _, c := range strings.Fields(attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

func (r *termRenderer) start(name string, attrs map[string]string) {
	switch name {
	case "p", "div", "section", "article", "header", "footer", "table", "dl":
		r.block()
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.block()
		r.heading = int(name[1] - '0')
	case "br":
		r.flush(true)
	case "hr":
		r.block()
		glyph := "─"
		if r.st.ASCII {
			glyph = "-"
		}
		r.lines = append(r.lines, logicalLine{body: r.st.Rule.Render(strings.Repeat(glyph, r.width)), nowrap: true})
	case "ul", "ol":
		if len(r.lists) == 0 {
			r.block()
		} else {
			r.flush(false)
		}
		r.lists = append(r.lists, listState{ordered: name == "ol"})
	case "li":
		r.flush(false)
		if n := len(r.lists); n > 0 {
			l := &r.lists[n-1]
			l.n++
			if l.ordered {
				r.bullet = strconv.Itoa(l.n) + ". "
			} else if r.st.ASCII {
				r.bullet = "* "
			} else {
				r.bullet = "▸ "
			}
		}
		r.inItem++
	case "blockquote":
		r.block()
		r.quote++
	case "pre":
		r.block()
		r.inPre = true
		r.codeBuf.Reset()
		r.lang = ""
	case "code":
		if r.inPre {
			for _, c := range strings.Fields(attrs["class"]) {
				if lang, ok := strings.CutPrefix(c, "language-"); ok {
					r.lang = lang
				}
			}
			return
		}
		r.code++
	case "strong", "b":
		r.bold++
	case "em", "i":
		r.italic++
	case "del", "s":
		r.strike++
	case "a":
		r.links = append(r.links, attrs["href"])
		r.linkText = append(r.linkText, "")
	case "mark":
		if hasClass(attrs, ClassActive) {
			r.markActive++
			r.active = true
		} else {
			r.mark++
		}
	case "span":
		if hasClass(attrs, ClassPlaceholder) {
			r.placeholder++
		}
	case "img":
		alt := attrs["alt"]
		if alt == "" {
			alt = attrs["src"]
		}
		r.write("[IMG: " + alt + "]")
	case "input":
		if attrs["type"] == "checkbox" {
			if _, checked := attrs["checked"]; checked {
				r.write("[x] ")
			} else {
				r.write("[ ] ")
			}
		}
	case "tr":
		r.flush(false)
		r.cells = 0
	case "td", "th":
		if r.cells > 0 {
			sep := " │ "
			if r.st.ASCII {
				sep = " | "
			}
			r.cur.WriteString(r.st.TableBorder.Render(sep))
		}
		r.cells++
		if name == "th" {
			r.bold++
		}
	}
}

func (r *termRenderer) end(name string) {
	switch name {
	case "p", "div", "section", "article", "header", "footer", "table", "dl":
		r.flush(false)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.flush(false)
		r.heading = 0
	case "ul", "ol":
		r.flush(false)
		if n := len(r.lists); n > 0 {
			r.lists = r.lists[:n-1]
		}
	case "li":
		r.flush(false)
		r.inItem = max(r.inItem-1, 0)
		r.bullet = ""
	case "blockquote":
		r.flush(false)
		r.quote = max(r.quote-1, 0)
	case "pre":
		r.flushCode()
	case "code":
		if !r.inPre {
			r.code = max(r.code-1, 0)
		}
	case "strong", "b":
		r.bold = max(r.bold-1, 0)
	case "em", "i":
		r.italic = max(r.italic-1, 0)
	case "del", "s":
		r.strike = max(r.strike-1, 0)
	case "a":
		if n := len(r.links); n > 0 {
			href, text := r.links[n-1], r.linkText[n-1]
			r.links, r.linkText = r.links[:n-1], r.linkText[:n-1]
			if href != "" && href != text && !strings.HasPrefix(href, "#") {
				r.cur.WriteString(r.st.LinkURL.Render(" <" + href + ">"))
			}
		}
	case "mark":
		if r.markActive > 0 {
			r.markActive--
		} else {
			r.mark = max(r.mark-1, 0)
		}
	case "span":
		r.placeholder = max(r.placeholder-1, 0)
	case "tr":
		r.flush(false)
	case "th":
		r.bold = max(r.bold-1, 0)
	}
}

func (r *termRenderer) text(s string) {
	if r.inPre {
		r.codeBuf.WriteString(s)
		return
	}
	// Collapse whitespace the way a browser does outside <pre>.
	var sb strings.Builder
	space := false
	for _, c := range s {
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			space = true
			continue
		}
		if space && (sb.Len() > 0 || r.cur.Len() > 0) {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(c)
	}
	if space && (sb.Len() > 0 || r.cur.Len() > 0) {
		sb.WriteByte(' ')
	}
	if sb.Len() == 0 {
		return
	}
	r.write(sb.String())
}

func (r *termRenderer) write(s string) {
	if r.cur.Len() == 0 {
		r.startLine()
	}
	if n := len(r.linkText); n > 0 {
		r.linkText[n-1] += s
	}
	r.cur.WriteString(r.inline().Render(s))
}

func (r *termRenderer) inline() lipgloss.Style {
	st := r.st.Text
	if r.heading == 1 {
		st = r.st.Title
	} else if r.heading > 0 {
		st = r.st.Heading
	}
	if r.quote > 0 {
		st = r.st.Quote.Inherit(st)
	}
	if r.bold > 0 {
		st = st.Bold(true)
	}
	if r.italic > 0 {
		st = st.Italic(true)
	}
	if r.strike > 0 {
		st = st.Strikethrough(true)
	}
	if r.code > 0 {
		st = r.st.Code.Inherit(st)
	}
	if len(r.links) > 0 {
		st = r.st.Link.Inherit(st)
	}
	if r.placeholder > 0 {
		st = r.st.Placeholder.Inherit(st)
	}
	if r.mark > 0 {
		st = r.st.Mark.Inherit(st)
	}
	if r.markActive > 0 {
		st = r.st.MarkActive.Inherit(st)
	}
	return st
}

// startLine computes the prefix for the line about to receive content.
func (r *termRenderer) startLine() {
	var p strings.Builder
	if depth := len(r.lists); depth > 1 {
		p.WriteString(strings.Repeat("  ", depth-1))
	}
	bar := "│ "
	if r.st.ASCII {
		bar = "| "
	}
	for range r.quote {
		p.WriteString(r.st.Quote.Render(bar))
	}
	base := p.String()
	r.prefix, r.cont = base, base
	if r.inItem > 0 {
		if r.bullet != "" {
			r.prefix = base + r.st.Bullet.Render(r.bullet)
			r.cont = base + strings.Repeat(" ", ansi.StringWidth(r.bullet))
			r.bullet = ""
		} else {
			r.prefix = base + "  "
			r.cont = r.prefix
		}
	}
}

// flush ends the current line. With force an empty line is still emitted.
func (r *termRenderer) flush(force bool) {
	if r.cur.Len() == 0 && !force {
		return
	}
	body := strings.TrimRight(r.cur.String(), " ")
	r.lines = append(r.lines, logicalLine{prefix: r.prefix, cont: r.cont, body: body, active: r.active})
	r.cur.Reset()
	r.active = false
	r.prefix, r.cont = "", ""
}

// block separates block elements with one blank line.
func (r *termRenderer) block() {
	r.flush(false)
	if n := len(r.lines); n > 0 && r.lines[n-1].body != "" {
		r.lines = append(r.lines, logicalLine{})
	}
}

func (r *termRenderer) flushCode() {
	r.inPre = false
	indent := "  "
	for _, l := range highlight(r.codeBuf.String(), r.lang, r.st.CodeTheme) {
		r.lines = append(r.lines, logicalLine{
			body:   indent + ansi.Truncate(l, r.width-len(indent), "…"),
			nowrap: true,
		})
	}
	r.codeBuf.Reset()
}

func (r *termRenderer) layout() Rendered {
	out := Rendered{ActiveLine: -1}
	for _, l := range r.lines {
		if l.active && out.ActiveLine < 0 {
			out.ActiveLine = len(out.Lines)
		}
		if l.nowrap || l.body == "" {
			out.Lines = append(out.Lines, l.prefix+l.body)
			continue
		}
		avail := max(r.width-ansi.StringWidth(l.prefix), 4)
		for i, part := range strings.Split(ansi.Wrap(l.body, avail, ""), "\n") {
			if i == 0 {
				out.Lines = append(out.Lines, l.prefix+part)
			} else {
				out.Lines = append(out.Lines, l.cont+part)
			}
		}
	}
	return out
}
