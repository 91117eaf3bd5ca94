package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopStage(_ context.Context, _ State) (Update, error) {
	return Update{}, nil
}

func TestGraphRequiresEntry(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", noopStage)

	_, err := g.Run(context.Background(), State{})
	assert.Equal(t, ErrEntryNotSet, err)
}

func TestGraphUnknownStage(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", noopStage)
	g.AddEdge("a", "missing")
	g.SetEntry("a")

	_, err := g.Run(context.Background(), State{})
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestGraphWalksEdgesInOrder(t *testing.T) {
	var visited []string
	record := func(name string) Stage {
		return func(_ context.Context, _ State) (Update, error) {
			visited = append(visited, name)
			return Update{}, nil
		}
	}

	g := NewGraph()
	g.AddNode("a", record("a"))
	g.AddNode("b", record("b"))
	g.AddNode("c", record("c"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.SetEntry("a")

	_, err := g.Run(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, visited)
}

func TestGraphBranchSelectsSuccessor(t *testing.T) {
	var visited []string
	record := func(name string, upd Update) Stage {
		return func(_ context.Context, _ State) (Update, error) {
			visited = append(visited, name)
			return upd, nil
		}
	}

	build := func(needs bool) *Graph {
		g := NewGraph()
		g.AddNode("decide", record("decide", Update{NeedsClarification: boolPtr(needs)}))
		g.AddNode("left", record("left", Update{}))
		g.AddNode("right", record("right", Update{}))
		g.AddBranch("decide", func(s State) string {
			if s.NeedsClarification {
				return "left"
			}
			return "right"
		})
		g.SetEntry("decide")
		return g
	}

	visited = nil
	_, err := build(true).Run(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, []string{"decide", "left"}, visited)

	visited = nil
	_, err = build(false).Run(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, []string{"decide", "right"}, visited)
}

func TestGraphStageErrorWrapsName(t *testing.T) {
	boom := errors.New("boom")
	g := NewGraph()
	g.AddNode("exploder", func(_ context.Context, _ State) (Update, error) {
		return Update{}, boom
	})
	g.SetEntry("exploder")

	_, err := g.Run(context.Background(), State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "exploder")
}

func TestGraphStepLimitBreaksCycles(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", noopStage)
	g.AddNode("b", noopStage)
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.SetEntry("a")

	_, err := g.Run(context.Background(), State{})
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestStateApplyMerge(t *testing.T) {
	s := State{
		SessionID:        "s1",
		OriginalQuestion: "where is tesla?",
	}

	s = s.Apply(Update{ClarifiedQuestion: stringPtr("where is tesla hq?")})
	assert.Equal(t, "where is tesla hq?", s.ClarifiedQuestion)
	assert.Equal(t, "where is tesla hq?", s.EffectiveQuestion())

	// Empty update leaves everything untouched.
	before := s
	s = s.Apply(Update{})
	assert.Equal(t, before, s)

	s = s.Apply(Update{Grade: GradeInsufficient})
	assert.Equal(t, GradeInsufficient, s.Grade)

	s = s.Apply(Update{FinalAnswer: stringPtr("Austin (Wikipedia)")})
	assert.Equal(t, "Austin (Wikipedia)", s.Answer())
}

func TestEffectiveQuestionFallsBackToOriginal(t *testing.T) {
	s := State{OriginalQuestion: "original"}
	assert.Equal(t, "original", s.EffectiveQuestion())

	s.ClarifiedQuestion = "clarified"
	assert.Equal(t, "clarified", s.EffectiveQuestion())
}
