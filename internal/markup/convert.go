// Package markup turns panel sources into HTML markup, splits markup into
// units that can be revealed without breaking it, and renders markup as
// styled terminal lines.
package markup

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Converter turns markdown source into HTML markup. It is resolved once at
// startup; a nil Converter means no converter is available.
type Converter interface {
	Convert(src string) (string, error)
}

// GoldmarkOptions selects the markdown dialect.
type GoldmarkOptions struct {
	// HardWraps turns single newlines inside paragraphs into <br>.
	HardWraps bool
}

// Goldmark is a GFM converter.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark builds a GFM converter. Raw HTML in the source is passed
// through, matching how the site authors mix markup into their notes.
func NewGoldmark(opts GoldmarkOptions) *Goldmark {
	rendererOpts := []renderer.Option{gmhtml.WithUnsafe()}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Goldmark{md: md}
}

// Convert implements Converter.
func (g *Goldmark) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Prepare strips the indentation of every line and trims the result, so
// sources written inside indented templates convert as flush-left text.
func Prepare(src string) string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Fallback escapes text and keeps its line breaks.
func Fallback(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// ToMarkup converts prepared text with conv, falling back to escaped text
// when conv is nil or fails.
func ToMarkup(conv Converter, text string) string {
	if conv != nil {
		if out, err := conv.Convert(text); err == nil {
			return out
		}
	}
	return Fallback(text)
}
