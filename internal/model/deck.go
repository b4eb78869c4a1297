package model

import "fmt"

// Virtual canvas every text block is normalized onto
const (
	CanvasWidth  = 900.0
	CanvasHeight = 1600.0
)

// Box is an axis-aligned bounding box
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// WithinCanvas reports whether the box lies inside the virtual canvas
func (b Box) WithinCanvas() bool {
	return b.X0 >= 0 && b.X1 <= CanvasWidth && b.Y0 >= 0 && b.Y1 <= CanvasHeight &&
		b.X0 <= b.X1 && b.Y0 <= b.Y1
}

// ClampToCanvas returns the box clipped to the virtual canvas
func (b Box) ClampToCanvas() Box {
	return Box{
		X0: clamp(b.X0, 0, CanvasWidth),
		Y0: clamp(b.Y0, 0, CanvasHeight),
		X1: clamp(b.X1, 0, CanvasWidth),
		Y1: clamp(b.Y1, 0, CanvasHeight),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TextBlock is a run of text positioned on the virtual canvas
type TextBlock struct {
	Text string `json:"text"`
	Box  Box    `json:"box"`
}

// Page is one extracted slide. Number is 1-based.
type Page struct {
	Number int         `json:"page_number"`
	Text   string      `json:"text"`
	Width  float64     `json:"width"`  // Native width in points
	Height float64     `json:"height"` // Native height in points
	Blocks []TextBlock `json:"coordinates_text"`
}

// Deck is the immutable input of an analysis
type Deck struct {
	Source         string `json:"source,omitempty"`
	GeneralContext string `json:"general_context"`
	Pages          []Page `json:"page_content"`
	WholeText      string `json:"whole_text"`
}

// Page returns the page with the given 1-based number
func (d *Deck) Page(number int) (Page, bool) {
	if number < 1 || number > len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[number-1], true
}

// CheckPageNumbers asserts the canonical numbering: Pages[i].Number == i+1
func (d *Deck) CheckPageNumbers() error {
	for i, p := range d.Pages {
		if p.Number != i+1 {
			return NewError(KindValidation, fmt.Sprintf("page at index %d has number %d, want %d", i, p.Number, i+1), nil)
		}
	}
	return nil
}
