package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/pitchcheck/internal/agents"
	"github.com/ppiankov/pitchcheck/internal/model"
)

// SelectionPolicy decides which slides an agent reads when several share its topic
type SelectionPolicy string

const (
	SelectFirst   SelectionPolicy = "first"   // Lowest page number
	SelectLongest SelectionPolicy = "longest" // Most text
	SelectAll     SelectionPolicy = "all"     // Every matching page, texts joined
)

// ParseSelectionPolicy accepts first, longest or all. Empty means first.
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch p := SelectionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SelectFirst, nil
	case SelectFirst, SelectLongest, SelectAll:
		return p, nil
	default:
		return "", model.NewError(model.KindValidation, fmt.Sprintf("unknown selection policy %q (use first, longest or all)", s), nil)
	}
}

// SelectTarget picks the slides tagged topic. ok is false when there are none.
func SelectTarget(assignments []model.TopicAssignment, topic model.Topic, policy SelectionPolicy) (agents.Target, bool) {
	var matches []model.TopicAssignment
	for _, a := range assignments {
		if a.Topic == topic {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return agents.Target{}, false
	}

	switch policy {
	case SelectLongest:
		best := matches[0]
		for _, m := range matches[1:] {
			if utf8.RuneCountInString(m.PageText) > utf8.RuneCountInString(best.PageText) {
				best = m
			}
		}
		return single(best), true

	case SelectAll:
		target := agents.Target{PageNumber: matches[0].PageNumber}
		texts := make([]string, 0, len(matches))
		for _, m := range matches {
			target.Pages = append(target.Pages, m.PageNumber)
			texts = append(texts, m.PageText)
		}
		target.Text = strings.Join(texts, "\n\n")
		return target, true

	default:
		return single(matches[0]), true
	}
}

func single(a model.TopicAssignment) agents.Target {
	return agents.Target{PageNumber: a.PageNumber, Pages: []int{a.PageNumber}, Text: a.PageText}
}
