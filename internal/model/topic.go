package model

import (
	"errors"
	"fmt"
	"strings"
)

// Topic is the closed vocabulary of slide tags assigned by the classifier
type Topic string

const (
	TopicMarketSize    Topic = "market_size_slide"
	TopicTeam          Topic = "team_slide"
	TopicCompetitors   Topic = "competitors_slide"
	TopicProblem       Topic = "problem_slide"
	TopicSolution      Topic = "solution_slide"
	TopicFundraising   Topic = "fundraising_slide"
	TopicBusinessModel Topic = "business_model_slide"
	TopicOther         Topic = "other"
)

// AllTopics lists every valid tag in prompt order
var AllTopics = []Topic{
	TopicMarketSize,
	TopicTeam,
	TopicCompetitors,
	TopicProblem,
	TopicSolution,
	TopicFundraising,
	TopicBusinessModel,
	TopicOther,
}

// ErrUnknownTopic is returned by ParseTopic for out-of-vocabulary tags
var ErrUnknownTopic = errors.New("unknown topic")

// Valid reports whether t belongs to the closed vocabulary
func (t Topic) Valid() bool {
	for _, known := range AllTopics {
		if t == known {
			return true
		}
	}
	return false
}

func (t Topic) String() string {
	return string(t)
}

// ParseTopic validates a raw tag. Surrounding whitespace is ignored, nothing else is.
func ParseTopic(raw string) (Topic, error) {
	t := Topic(strings.TrimSpace(raw))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, raw)
	}
	return t, nil
}

// TopicAssignment is the classifier verdict for one page
type TopicAssignment struct {
	PageNumber int    `json:"page_number"`
	Topic      Topic  `json:"topic"`
	PageText   string `json:"page_text"`
	Attempts   int    `json:"attempts,omitempty"` // Model calls spent on this page
}

// TopicSet is a lookup of which topics are present in a deck
type TopicSet map[Topic]bool

// TopicsPresent collects the distinct topics from assignments
func TopicsPresent(assignments []TopicAssignment) TopicSet {
	set := make(TopicSet, len(assignments))
	for _, a := range assignments {
		set[a.Topic] = true
	}
	return set
}

// Has reports whether every given topic is present
func (s TopicSet) Has(topics ...Topic) bool {
	for _, t := range topics {
		if !s[t] {
			return false
		}
	}
	return true
}
