package pipeline

import (
	"errors"
	"fmt"

	"github.com/ppiankov/pitchcheck/internal/extract"
	"github.com/ppiankov/pitchcheck/internal/model"
)

// ErrSlotConflict is returned when two stages write the same part of the analysis
var ErrSlotConflict = errors.New("analysis slot written twice")

// Slot is a part of the analysis owned by exactly one stage
type Slot string

const (
	SlotMarket      Slot = "market"
	SlotTeam        Slot = "team"
	SlotCompetition Slot = "competition"
	SlotMatched     Slot = "matched_feedback"
)

// StageOutput is what a task returns. Non-nil fields are slot writes.
type StageOutput struct {
	Stage       string
	Market      *model.MarketFeedback
	Team        *model.TeamFeedback
	Competition *model.CompetitionFeedback
	Matched     []model.FeedbackItem
	Evidence    []model.Evidence
	Warnings    []string
}

// Slots lists the slots this output writes
func (o StageOutput) Slots() []Slot {
	var slots []Slot
	if o.Market != nil {
		slots = append(slots, SlotMarket)
	}
	if o.Team != nil {
		slots = append(slots, SlotTeam)
	}
	if o.Competition != nil {
		slots = append(slots, SlotCompetition)
	}
	if o.Matched != nil {
		slots = append(slots, SlotMatched)
	}
	return slots
}

// Reducer merges stage outputs into one analysis
type Reducer struct {
	analysis *model.Analysis
	owners   map[Slot]string
	evidence []model.Evidence
}

func NewReducer(analysis *model.Analysis) *Reducer {
	return &Reducer{analysis: analysis, owners: make(map[Slot]string)}
}

// Apply merges out. A slot already written by another output is an error and
// leaves the analysis unchanged.
func (r *Reducer) Apply(out StageOutput) error {
	for _, slot := range out.Slots() {
		if owner, ok := r.owners[slot]; ok {
			return fmt.Errorf("%w: %s by %s and %s", ErrSlotConflict, slot, owner, out.Stage)
		}
	}
	for _, slot := range out.Slots() {
		r.owners[slot] = out.Stage
	}

	if out.Market != nil {
		r.analysis.Market = out.Market
	}
	if out.Team != nil {
		r.analysis.Team = out.Team
	}
	if out.Competition != nil {
		r.analysis.Competition = out.Competition
	}
	if out.Matched != nil {
		r.analysis.MatchedFeedback = out.Matched
	}
	r.analysis.Warnings = append(r.analysis.Warnings, out.Warnings...)
	r.evidence = append(r.evidence, out.Evidence...)
	return nil
}

// Evidence returns every source URL the stages collected, deduplicated
func (r *Reducer) Evidence() []model.Evidence {
	return extract.DedupeEvidence(r.evidence)
}
