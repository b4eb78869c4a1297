package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/pipeline"
	"github.com/ppiankov/pitchcheck/internal/worker"
)

type recordingAnalyzer struct {
	input   pipeline.Input
	content []byte
}

func (r *recordingAnalyzer) Analyze(ctx context.Context, in pipeline.Input) (*model.Analysis, error) {
	r.input = in
	r.content, _ = os.ReadFile(in.Path)
	return &model.Analysis{Source: in.Path, TotalPages: 10}, nil
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PITCHCHECK_LLM_PROVIDER", "openai")
	t.Setenv("PITCHCHECK_PIPELINE_SELECTION_POLICY", "longest")
	t.Setenv("PITCHCHECK_CACHE_MEMORY_TTL", "5m")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	v := viper.New()
	require.NoError(t, registerDefaults(v, model.DefaultConfig()))
	v.SetEnvPrefix("PITCHCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "tvly-test", cfg.Search.APIKey)
	assert.Equal(t, "longest", cfg.Pipeline.SelectionPolicy)
	assert.Equal(t, 5*time.Minute, cfg.Cache.MemoryTTL)

	// Untouched keys keep their defaults
	assert.Equal(t, 1000, cfg.Pipeline.ContextChars)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestApplyEnvKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	cfg := model.DefaultConfig()
	applyEnvKeys(cfg)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)

	cfg = model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	applyEnvKeys(cfg)
	assert.Equal(t, "", cfg.LLM.APIKey)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.BaseURL)

	cfg = model.DefaultConfig()
	cfg.LLM.APIKey = "from-file"
	applyEnvKeys(cfg)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, writeDefaultConfig(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# pitchcheck configuration")
	assert.Contains(t, string(data), "selection_policy: first")
	assert.Contains(t, string(data), "TAVILY_API_KEY")

	// A second run refuses to overwrite
	assert.Error(t, writeDefaultConfig(path))
}

func TestShowConfig_MasksSecrets(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-ant-0123456789abcdef"
	cfg.Search.APIKey = "short"

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, cfg))

	out := buf.String()
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "sk-a****cdef")
	assert.NotContains(t, out, "short")
	assert.Equal(t, "sk-ant-0123456789abcdef", cfg.LLM.APIKey, "the caller's config is not modified")
}

func TestAnalyzeSource_LocalPath(t *testing.T) {
	a := &recordingAnalyzer{}
	analysis, err := analyzeSource(context.Background(), a, nil, "decks/seed.PDF", "batteries")
	require.NoError(t, err)

	assert.Equal(t, "decks/seed.PDF", a.input.Path)
	assert.Equal(t, "batteries", a.input.GeneralContext)
	assert.Equal(t, "decks/seed.PDF", analysis.Source)
}

func TestAnalyzeSource_RejectsNonPDF(t *testing.T) {
	_, err := analyzeSource(context.Background(), &recordingAnalyzer{}, nil, "deck.key", "")
	assert.True(t, model.IsKind(err, model.KindValidation))
}

func TestAnalyzeSource_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 deck bytes"))
	}))
	defer srv.Close()

	a := &recordingAnalyzer{}
	source := srv.URL + "/decks/seed-round.pdf"
	analysis, err := analyzeSource(context.Background(), a, pipeline.NewFetcher(model.DefaultConfig().HTTP), source, "")
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.7 deck bytes", string(a.content))
	assert.Equal(t, source, analysis.Source)

	// The download is removed once the analysis returns
	_, statErr := os.Stat(a.input.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSanitizeFilename(t *testing.T) {
	for in, want := range map[string]string{
		"decks/Seed Deck.pdf":                "Seed-Deck",
		"https://example.com/a/b/deck.pdf":   "deck",
		`C:\decks\series?a.pdf`:              "series_a",
		"https://example.com/":               "example",
		"":                                   "deck",
		strings.Repeat("x", 150) + ".pdf":    strings.Repeat("x", 100),
		strings.Repeat("ü", 150) + ".pdf":    strings.Repeat("ü", 100),
		"https://example.com/q/deck:v2.pdf/": "deck_v2",
	} {
		got := sanitizeFilename(in)
		assert.Equal(t, want, got, in)
		assert.True(t, utf8.ValidString(got), in)
	}
}

func TestWriteBatchReports(t *testing.T) {
	dir := t.TempDir()
	results := []*worker.DeckResult{
		{Source: "a/deck.pdf", Analysis: &model.Analysis{TotalPages: 3}},
		{Source: "b/deck.pdf", Analysis: &model.Analysis{TotalPages: 4}},
		{Source: "c/broken.pdf", Error: model.NewError(model.KindExtraction, "no pages", nil)},
	}

	assert.Equal(t, 2, writeBatchReports(results, dir))
	assert.FileExists(t, filepath.Join(dir, "deck.json"))
	assert.FileExists(t, filepath.Join(dir, "deck-2.json"))
	assert.NoFileExists(t, filepath.Join(dir, "broken.json"))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &model.Analysis{
		Source:     "deck.pdf",
		TotalPages: 9,
		Plan:       []string{"founders", "synthesis"},
		Team:       &model.TeamFeedback{PageNumber: 3, TotalFounders: 2, WrittenFeedback: "Alice checks out.\nBob does not."},
		MatchedFeedback: []model.FeedbackItem{
			{Feedback: "Bob's exit is unconfirmed", PageNumber: 3, Status: model.StatusUnclear},
		},
		Warnings: []string{"page 7: model reply \"pitch\" is not a topic"},
	})

	out := buf.String()
	assert.Contains(t, out, "deck.pdf (9 pages)")
	assert.Contains(t, out, "founders, synthesis")
	assert.Contains(t, out, "Alice checks out. Bob does not.")
	assert.Contains(t, out, "[p3 unclear] Bob's exit is unconfirmed")
	assert.Contains(t, out, "! page 7")
	assert.NotContains(t, out, "Market size")
}

func TestPrintPlan(t *testing.T) {
	plan, err := pipeline.BuildPlan(pipeline.DefaultTasks, model.TopicSet{model.TopicTeam: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	printPlan(&buf, &pipeline.Prepared{
		Deck:   &model.Deck{Pages: []model.Page{{Number: 1}, {Number: 2}}},
		Topics: []model.TopicAssignment{{PageNumber: 1, Topic: model.TopicProblem}, {PageNumber: 2, Topic: model.TopicTeam}},
		Plan:   plan,
	})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%% 2 pages\n"))
	assert.Contains(t, out, "%% page 2: team_slide\n")
	assert.Contains(t, out, "graph TD\n")
	assert.Contains(t, out, "classify --> founders")
}
