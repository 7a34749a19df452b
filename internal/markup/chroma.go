package markup

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const defaultCodeStyle = "dracula"

// codeStyle resolves a style name to a Chroma style, falling back to the default.
func codeStyle(name string) *chroma.Style {
	if name == "" {
		name = defaultCodeStyle
	}
	return styles.Get(name)
}

// codeLexer picks a lexer by language name, then by content analysis.
func codeLexer(lang, code string) chroma.Lexer {
	var l chroma.Lexer
	if lang != "" {
		l = lexers.Get(lang)
	}
	if l == nil {
		l = lexers.Analyse(code)
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// highlight colours a code block and returns one styled string per line.
// Tokenisation errors fall back to the plain text.
func highlight(code, lang, styleName string) []string {
	code = strings.TrimRight(code, "\n")
	if code == "" {
		return nil
	}
	style := codeStyle(styleName)
	tokens, err := chroma.Tokenise(codeLexer(lang, code), nil, code)
	if err != nil {
		return strings.Split(code, "\n")
	}
	base := style.Get(chroma.Text).Colour

	lines := []string{""}
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		st := tokenStyle(style.Get(tok.Type), base)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, "")
			}
			if part != "" {
				lines[len(lines)-1] += st.Render(part)
			}
		}
	}
	return lines
}

// tokenStyle maps a Chroma style entry onto lipgloss. Tokens in the base
// text colour keep the terminal foreground.
func tokenStyle(entry chroma.StyleEntry, base chroma.Colour) lipgloss.Style {
	st := lipgloss.NewStyle()
	if entry.Colour.IsSet() && entry.Colour != base {
		st = st.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}
