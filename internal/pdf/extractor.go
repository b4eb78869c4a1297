// Package pdf reads pitch decks: per-page text, positioned text blocks and page images.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/ppiankov/pitchcheck/internal/extract"
	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/model"
	"go.uber.org/zap"
)

// ErrNoPages is returned for documents without pages
var ErrNoPages = errors.New("PDF has no pages")

// Extractor turns a PDF file into an immutable Deck
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor
func NewExtractor(l *zap.Logger) *Extractor {
	return &Extractor{logger: logger.OrNop(l)}
}

// Extract reads every page of the PDF at path. Page numbers are 1-based and
// block coordinates are normalized to the canvas.
func (e *Extractor) Extract(ctx context.Context, path string) (*model.Deck, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := fitz.New(path)
	if err != nil {
		return nil, model.NewError(model.KindExtraction, "open PDF", err)
	}
	defer func() { _ = doc.Close() }()

	count := doc.NumPage()
	if count == 0 {
		return nil, model.NewError(model.KindExtraction, path, ErrNoPages)
	}

	deck := &model.Deck{Source: path, Pages: make([]model.Page, 0, count)}
	texts := make([]string, 0, count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := readPage(doc, i)
		if err != nil {
			return nil, model.NewError(model.KindExtraction, fmt.Sprintf("page %d", i+1), err)
		}
		deck.Pages = append(deck.Pages, page)
		texts = append(texts, page.Text)
	}
	deck.WholeText = strings.Join(texts, "\n")

	if err := deck.CheckPageNumbers(); err != nil {
		return nil, err
	}

	e.logger.Debug("extracted deck",
		zap.String("path", path),
		zap.Int("pages", count),
		zap.Duration("duration", time.Since(start)))
	return deck, nil
}

// readPage reads page index i (0-based in go-fitz)
func readPage(doc *fitz.Document, i int) (model.Page, error) {
	text, err := doc.Text(i)
	if err != nil {
		return model.Page{}, fmt.Errorf("text: %w", err)
	}

	bound, err := doc.Bound(i)
	if err != nil {
		return model.Page{}, fmt.Errorf("bounds: %w", err)
	}
	w, h := float64(bound.Dx()), float64(bound.Dy())

	layout, err := doc.HTML(i, false)
	if err != nil {
		return model.Page{}, fmt.Errorf("layout: %w", err)
	}
	lines, err := extract.ParseLayout(layout)
	if err != nil {
		return model.Page{}, err
	}

	blocks := extract.GroupLines(lines)
	for j := range blocks {
		blocks[j].Box = NormalizeBox(blocks[j].Box, w, h)
	}

	return model.Page{
		Number: i + 1,
		Text:   strings.TrimSpace(text),
		Width:  w,
		Height: h,
		Blocks: blocks,
	}, nil
}
