package agents

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/pitchcheck/internal/llm"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/search"
	"go.uber.org/zap/zaptest"
)

// scriptedLLM answers each request with reply and records what it was asked
type scriptedLLM struct {
	mu    sync.Mutex
	calls []llm.Request
	reply func(req llm.Request) (string, error)
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	text, err := s.reply(req)
	if err != nil {
		return nil, err
	}
	return &llm.Response{Text: text, Model: "scripted"}, nil
}

func (s *scriptedLLM) IsAvailable(ctx context.Context) bool { return true }

// count returns how many prompts contained marker
func (s *scriptedLLM) count(marker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.Contains(c.Prompt, marker) {
			n++
		}
	}
	return n
}

// prompts returns the prompts that contained marker
func (s *scriptedLLM) prompts(marker string) []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []llm.Request
	for _, c := range s.calls {
		if strings.Contains(c.Prompt, marker) {
			out = append(out, c)
		}
	}
	return out
}

type searchCall struct {
	Query string
	Max   int
}

// fakeSearch returns canned hits per query; unknown queries get no results
type fakeSearch struct {
	mu      sync.Mutex
	calls   []searchCall
	results map[string][]model.SearchHit
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, query string, maxResults int) (*search.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{Query: query, Max: maxResults})
	if f.err != nil {
		return nil, f.err
	}
	return &search.Response{Query: query, Results: f.results[query]}, nil
}

func (f *fakeSearch) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Query
	}
	return out
}

type fakeImager struct {
	mu       sync.Mutex
	rendered []int
}

func (f *fakeImager) RenderPage(ctx context.Context, pageNumber int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rendered = append(f.rendered, pageNumber)
	return []byte{0xff, 0xd8, byte(pageNumber)}, nil
}

func testDeps(t *testing.T, provider *scriptedLLM, searcher *fakeSearch) Deps {
	return Deps{
		LLM:    provider,
		Search: searcher,
		Images: &fakeImager{},
		Logger: zaptest.NewLogger(t),
	}
}

// Prompt markers used to route scripted replies
const (
	markFounderExtract    = "List the founders"
	markCredibility       = "Compare a founder's claimed background"
	markTeamFeedback      = "feedback on the founding team"
	markCompetitorExtract = "Extract every specific claim"
	markVerify            = "Verify ALL these claims"
	markCompetitionText   = "accuracy of the competitor claims"
	markMarketExtract     = "Read this market size slide"
	markMarketJudge       = "Judge the market size claims"
)
