package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// Stage names
const (
	StageExtract     = "extract"
	StageClassify    = "classify"
	StageMarket      = "market"
	StageFounders    = "founders"
	StageCompetitors = "competitors"
	StageSynthesis   = "synthesis"
	StageValidate    = "validate"
)

// TaskSpec declares when a task runs and what it waits for
type TaskSpec struct {
	Name     string
	Requires []model.Topic // Every topic must be present in the deck
	After    []string      // Dependencies; only planned ones are waited on
	AnyAfter bool          // Run only if at least one dependency is planned
}

// DefaultTasks is the analysis graph: three verification agents feeding the synthesizer
var DefaultTasks = []TaskSpec{
	{Name: StageMarket, Requires: []model.Topic{model.TopicMarketSize}},
	{Name: StageFounders, Requires: []model.Topic{model.TopicTeam}},
	{Name: StageCompetitors, Requires: []model.Topic{model.TopicCompetitors}},
	{Name: StageSynthesis, After: []string{StageMarket, StageFounders, StageCompetitors}, AnyAfter: true},
}

// Plan is the set of tasks to run, grouped by depth. Tasks at one depth only
// depend on tasks at smaller depths.
type Plan struct {
	Levels [][]string
	deps   map[string][]string
}

// BuildPlan selects the tasks whose topic requirements are met and orders them.
// Tasks are considered in declaration order; a dependency must be declared first.
func BuildPlan(tasks []TaskSpec, present model.TopicSet) (*Plan, error) {
	plan := &Plan{deps: make(map[string][]string)}
	depth := make(map[string]int)
	declared := make(map[string]bool)

	for _, task := range tasks {
		if declared[task.Name] {
			return nil, fmt.Errorf("task %q declared twice", task.Name)
		}
		declared[task.Name] = true

		if !present.Has(task.Requires...) {
			continue
		}

		var planned []string
		level := 0
		for _, dep := range task.After {
			if !declared[dep] {
				return nil, fmt.Errorf("task %q depends on %q, which is not declared before it", task.Name, dep)
			}
			d, ok := depth[dep]
			if !ok {
				continue
			}
			planned = append(planned, dep)
			if d+1 > level {
				level = d + 1
			}
		}
		if task.AnyAfter && len(planned) == 0 {
			continue
		}

		depth[task.Name] = level
		plan.deps[task.Name] = planned
		for len(plan.Levels) <= level {
			plan.Levels = append(plan.Levels, nil)
		}
		plan.Levels[level] = append(plan.Levels[level], task.Name)
	}

	return plan, nil
}

// Tasks lists planned task names level by level
func (p *Plan) Tasks() []string {
	names := []string{}
	for _, level := range p.Levels {
		names = append(names, level...)
	}
	return names
}

// DependsOn returns the planned dependencies of a task
func (p *Plan) DependsOn(name string) []string {
	return p.deps[name]
}

// Mermaid renders the plan, including the fixed extract and classify steps, as a Mermaid flowchart
func (p *Plan) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	fmt.Fprintf(&b, "    %s --> %s\n", StageExtract, StageClassify)

	hasDependents := make(map[string]bool)
	for _, name := range p.Tasks() {
		deps := p.deps[name]
		if len(deps) == 0 {
			fmt.Fprintf(&b, "    %s --> %s\n", StageClassify, name)
		}
		for _, dep := range deps {
			fmt.Fprintf(&b, "    %s --> %s\n", dep, name)
			hasDependents[dep] = true
		}
	}

	leaves := 0
	for _, name := range p.Tasks() {
		if !hasDependents[name] {
			fmt.Fprintf(&b, "    %s --> done([done])\n", name)
			leaves++
		}
	}
	if leaves == 0 {
		fmt.Fprintf(&b, "    %s --> done([done])\n", StageClassify)
	}
	return b.String()
}
