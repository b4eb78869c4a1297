package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/pitchcheck/internal/model"
)

func fakeAnalyze(calls *int32) AnalyzeFunc {
	return func(ctx context.Context, source string) (*model.Analysis, error) {
		atomic.AddInt32(calls, 1)
		if strings.Contains(source, "broken") {
			return nil, model.NewError(model.KindValidation, "not a PDF", nil)
		}
		return &model.Analysis{Source: source, TotalPages: 12}, nil
	}
}

func writeSources(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decks.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	var calls int32
	processor := NewBatchProcessor(fakeAnalyze(&calls), 2, zaptest.NewLogger(t))

	sources := []string{"a.pdf", "https://example.com/broken.pdf", "c.pdf"}
	results := processor.ProcessSources(context.Background(), sources)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Source != sources[i] {
			t.Errorf("result %d: expected source %s, got %s", i, sources[i], r.Source)
		}
	}

	if results[1].Error == nil || results[1].Analysis != nil {
		t.Errorf("expected the broken deck to fail alone, got %+v", results[1])
	}
	if !model.IsKind(results[1].Error, model.KindValidation) {
		t.Errorf("expected validation error, got %v", results[1].Error)
	}
	if results[0].Analysis == nil || results[2].Analysis == nil {
		t.Error("expected analyses for the good decks")
	}

	ok, failed := Summary(results)
	if ok != 2 || failed != 1 {
		t.Errorf("expected 2 ok and 1 failed, got %d and %d", ok, failed)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 analyze calls, got %d", calls)
	}
}

func TestBatchProcessor_ProcessSources_Empty(t *testing.T) {
	var calls int32
	processor := NewBatchProcessor(fakeAnalyze(&calls), 2, nil)

	results := processor.ProcessSources(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
	if calls != 0 {
		t.Errorf("expected no analyze calls, got %d", calls)
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(func(ctx context.Context, source string) (*model.Analysis, error) {
		return nil, errors.New("should not run")
	}, 1, nil)

	for _, r := range processor.ProcessSources(ctx, []string{"a.pdf", "b.pdf"}) {
		if r.Error == nil {
			t.Errorf("expected an error for %s", r.Source)
		}
	}
}

func TestReadSources(t *testing.T) {
	path := writeSources(t, "decks/seed.pdf\n# comment\nhttps://example.com/deck.pdf\n   \n decks/seed.pdf \n")

	sources, err := ReadSources(path)
	if err != nil {
		t.Fatalf("ReadSources failed: %v", err)
	}

	expected := []string{"decks/seed.pdf", "https://example.com/deck.pdf"}
	if len(sources) != len(expected) {
		t.Fatalf("expected %d sources, got %d: %v", len(expected), len(sources), sources)
	}
	for i, s := range sources {
		if s != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, s)
		}
	}
}

func TestReadSources_NonExistent(t *testing.T) {
	if _, err := ReadSources("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	var calls int32
	processor := NewBatchProcessor(fakeAnalyze(&calls), 2, nil)

	results, err := processor.ProcessFile(context.Background(), writeSources(t, "a.pdf\nb.pdf\n# c.pdf\n"))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
