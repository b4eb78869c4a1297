package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/pitchcheck/internal/model"
	"golang.org/x/net/html"
)

// LayoutLine is one positioned line of text from a page's layout HTML, in points
type LayoutLine struct {
	Text       string
	Top        float64
	Left       float64
	LineHeight float64
	FontSize   float64
}

// Box estimates the line's extent. The layout HTML carries no widths, so the
// width is approximated from the glyph count at half the font size per glyph.
func (l LayoutLine) Box() model.Box {
	size := l.FontSize
	if size <= 0 {
		size = l.LineHeight
	}
	height := l.LineHeight
	if height <= 0 {
		height = size
	}
	width := float64(utf8.RuneCountInString(l.Text)) * size * 0.5
	return model.Box{X0: l.Left, Y0: l.Top, X1: l.Left + width, Y1: l.Top + height}
}

// ParseLayout reads the positioned <p> elements that MuPDF emits for a page:
//
//	<p style="top:72.0pt;left:54.0pt;line-height:14.0pt"><span style="font-size:12.0pt">Text</span></p>
func ParseLayout(pageHTML string) ([]LayoutLine, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse layout html: %w", err)
	}

	var lines []LayoutLine
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if line, ok := parseLine(n); ok {
				lines = append(lines, line)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return lines, nil
}

func parseLine(p *html.Node) (LayoutLine, bool) {
	style := parseStyle(attr(p, "style"))
	top, okTop := style["top"]
	left, okLeft := style["left"]
	if !okTop || !okLeft {
		return LayoutLine{}, false
	}

	line := LayoutLine{Top: top, Left: left, LineHeight: style["line-height"]}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "span" && line.FontSize == 0 {
				line.FontSize = parseStyle(attr(n, "style"))["font-size"]
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p)

	line.Text = strings.Join(strings.Fields(text.String()), " ")
	if line.Text == "" {
		return LayoutLine{}, false
	}
	return line, true
}

// parseStyle extracts the numeric pt values of an inline style attribute
func parseStyle(style string) map[string]float64 {
	values := make(map[string]float64)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSuffix(strings.TrimSpace(value), "pt")
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			values[strings.TrimSpace(name)] = f
		}
	}
	return values
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// GroupLines merges consecutive lines into text blocks: a line joins the
// previous block when it starts at the same left edge (±2pt) and directly below it.
func GroupLines(lines []LayoutLine) []model.TextBlock {
	var blocks []model.TextBlock
	var current *model.TextBlock
	var last LayoutLine

	for _, line := range lines {
		box := line.Box()
		gap := line.Top - (last.Top + last.LineHeight)
		joins := current != nil &&
			math.Abs(line.Left-last.Left) <= 2 &&
			gap >= -1 && gap <= math.Max(line.LineHeight, last.LineHeight)*0.6

		if joins {
			current.Text += " " + line.Text
			current.Box.X1 = math.Max(current.Box.X1, box.X1)
			current.Box.Y1 = math.Max(current.Box.Y1, box.Y1)
		} else {
			blocks = append(blocks, model.TextBlock{Text: line.Text, Box: box})
			current = &blocks[len(blocks)-1]
		}
		last = line
	}

	return blocks
}
