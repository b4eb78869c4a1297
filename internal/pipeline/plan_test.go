package pipeline

import (
	"testing"

	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicSet(topics ...model.Topic) model.TopicSet {
	set := model.TopicSet{}
	for _, t := range topics {
		set[t] = true
	}
	return set
}

func TestBuildPlan_AllAgents(t *testing.T) {
	plan, err := BuildPlan(DefaultTasks, topicSet(model.TopicTeam, model.TopicMarketSize, model.TopicCompetitors, model.TopicProblem))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{StageMarket, StageFounders, StageCompetitors}, {StageSynthesis}}, plan.Levels)
	assert.Equal(t, []string{"market", "founders", "competitors", "synthesis"}, plan.Tasks())
	assert.Equal(t, []string{StageMarket, StageFounders, StageCompetitors}, plan.DependsOn(StageSynthesis))
}

func TestBuildPlan_MissingTopics(t *testing.T) {
	plan, err := BuildPlan(DefaultTasks, topicSet(model.TopicTeam, model.TopicOther))
	require.NoError(t, err)

	assert.Equal(t, []string{StageFounders, StageSynthesis}, plan.Tasks())
	assert.Equal(t, []string{StageFounders}, plan.DependsOn(StageSynthesis))
	assert.NotContains(t, plan.Tasks(), StageMarket)
}

func TestBuildPlan_NothingToVerify(t *testing.T) {
	plan, err := BuildPlan(DefaultTasks, topicSet(model.TopicProblem, model.TopicSolution))
	require.NoError(t, err)

	assert.Empty(t, plan.Tasks())
	assert.NotContains(t, plan.Tasks(), StageSynthesis, "synthesis needs at least one verification task")
}

func TestBuildPlan_BadDeclarations(t *testing.T) {
	_, err := BuildPlan([]TaskSpec{
		{Name: "b", After: []string{"a"}},
		{Name: "a"},
	}, topicSet())
	assert.Error(t, err)

	_, err = BuildPlan([]TaskSpec{{Name: "a"}, {Name: "a"}}, topicSet())
	assert.Error(t, err)
}

func TestBuildPlan_Chain(t *testing.T) {
	plan, err := BuildPlan([]TaskSpec{
		{Name: "a"},
		{Name: "b", After: []string{"a"}},
		{Name: "c", After: []string{"a", "b"}},
		{Name: "d"},
	}, topicSet())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "d"}, {"b"}, {"c"}}, plan.Levels)
}

func TestPlan_Mermaid(t *testing.T) {
	plan, err := BuildPlan(DefaultTasks, topicSet(model.TopicTeam, model.TopicCompetitors))
	require.NoError(t, err)

	want := "graph TD\n" +
		"    extract --> classify\n" +
		"    classify --> founders\n" +
		"    classify --> competitors\n" +
		"    founders --> synthesis\n" +
		"    competitors --> synthesis\n" +
		"    synthesis --> done([done])\n"
	assert.Equal(t, want, plan.Mermaid())
}

func TestPlan_MermaidEmpty(t *testing.T) {
	plan, err := BuildPlan(DefaultTasks, topicSet(model.TopicOther))
	require.NoError(t, err)

	assert.Equal(t, "graph TD\n    extract --> classify\n    classify --> done([done])\n", plan.Mermaid())
}
