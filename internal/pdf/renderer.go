package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/ppiankov/pitchcheck/internal/model"
)

// Renderer rasterizes pages of one open document to JPEG.
// It is safe for concurrent use; rendering is serialized on the document.
type Renderer struct {
	mu      sync.Mutex
	doc     *fitz.Document
	pages   int
	dpi     float64
	quality int
	cache   map[int][]byte
}

// NewRenderer opens path for rendering. Close releases the document.
func NewRenderer(path string, cfg model.PDFConfig) (*Renderer, error) {
	dpi := cfg.RenderDPI
	if dpi <= 0 {
		dpi = 150
	}
	quality := cfg.JPEGQuality
	if quality == 0 {
		quality = 85
	}
	if err := ValidateQuality(quality); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, model.NewError(model.KindExtraction, "open PDF for rendering", err)
	}

	return &Renderer{
		doc:     doc,
		pages:   doc.NumPage(),
		dpi:     dpi,
		quality: quality,
		cache:   make(map[int][]byte),
	}, nil
}

// RenderPage returns the JPEG bytes of 1-based page n. Several agents may
// ask for the same page, so results are memoized.
func (r *Renderer) RenderPage(ctx context.Context, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > r.pages {
		return nil, model.NewError(model.KindValidation, fmt.Sprintf("page %d out of range 1..%d", n, r.pages), nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc == nil {
		return nil, model.NewError(model.KindExtraction, "renderer is closed", nil)
	}
	if b, ok := r.cache[n]; ok {
		return b, nil
	}

	img, err := r.doc.ImageDPI(n-1, r.dpi)
	if err != nil {
		return nil, model.NewError(model.KindExtraction, fmt.Sprintf("render page %d", n), err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, model.NewError(model.KindExtraction, fmt.Sprintf("encode page %d", n), err)
	}

	r.cache[n] = buf.Bytes()
	return r.cache[n], nil
}

// Close releases the document
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	r.cache = nil
	return err
}
