package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	aimock "github.com/poiesic/inquiro/ai/mock"
	"github.com/poiesic/inquiro/core"
	"github.com/poiesic/inquiro/retrieval"
	retmock "github.com/poiesic/inquiro/retrieval/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter answers each prompt by matching a marker substring, so a
// single mock can serve every stage of a run.
func scriptedCompleter(script map[string]string) *aimock.MockCompleter {
	c := aimock.NewMockCompleter()
	c.CompleteFunc = func(_ context.Context, prompt string) (string, error) {
		for marker, response := range script {
			if strings.Contains(prompt, marker) {
				return response, nil
			}
		}
		return "", nil
	}
	return c
}

// Prompt markers, one per stage that calls the model.
const (
	markAmbiguity = "Is the current question ambiguous?"
	markClarify   = "Generate a follow-up clarification question"
	markFold      = "provide a clarified version of the question"
	markRefine    = "Refine the following query"
	markGrade     = "sufficiently answer the query"
	markRerank    = "rank these documents by relevance"
	markAnswer    = "Generate a concise 1-2 sentence answer"
)

// recordingSink captures trace events for asserting stage traversal order.
type recordingSink struct {
	mu     sync.Mutex
	stages []string
}

func (r *recordingSink) Append(_, stage, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stages) == 0 || r.stages[len(r.stages)-1] != stage {
		r.stages = append(r.stages, stage)
	}
}

func (r *recordingSink) visited() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stages...)
}

func newState(question string) State {
	return State{SessionID: "test-session", OriginalQuestion: question}
}

func TestNewRunner(t *testing.T) {
	completer := aimock.NewMockCompleter()
	lookup := retmock.NewMockLookup()
	searcher := retmock.NewMockSearcher()

	t.Run("valid configuration", func(t *testing.T) {
		runner, err := NewRunner(completer, lookup, searcher)
		require.NoError(t, err)
		assert.NotNil(t, runner)
	})

	t.Run("nil completer", func(t *testing.T) {
		_, err := NewRunner(nil, lookup, searcher)
		assert.Equal(t, ErrCompleterRequired, err)
	})

	t.Run("nil lookup", func(t *testing.T) {
		_, err := NewRunner(completer, nil, searcher)
		assert.Equal(t, ErrLookupRequired, err)
	})

	t.Run("nil searcher", func(t *testing.T) {
		_, err := NewRunner(completer, lookup, nil)
		assert.Equal(t, ErrSearcherRequired, err)
	})
}

func TestRunValidatesInitialState(t *testing.T) {
	runner, err := NewRunner(aimock.NewMockCompleter(), retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), State{OriginalQuestion: "q"})
	assert.Equal(t, ErrSessionIDRequired, err)

	_, err = runner.Run(context.Background(), State{SessionID: "s"})
	assert.Equal(t, ErrQuestionRequired, err)
}

func TestRunUnambiguousSkipsClarify(t *testing.T) {
	completer := scriptedCompleter(map[string]string{
		markAmbiguity: "no",
		markRefine:    "Where is Tesla HQ?", // identical: no transform
		markGrade:     "yes",
		markAnswer:    "Tesla is headquartered in Austin, Texas (Wikipedia).",
	})
	lookup := retmock.NewMockLookup("Tesla, Inc. is headquartered in Austin, Texas.")
	searcher := retmock.NewMockSearcher()
	sink := &recordingSink{}

	runner, err := NewRunner(completer, lookup, searcher, WithTraceSink(sink))
	require.NoError(t, err)

	final, err := runner.Run(context.Background(), newState("Where is Tesla HQ?"))
	require.NoError(t, err)

	assert.Equal(t, "Tesla is headquartered in Austin, Texas (Wikipedia).", final.Answer())
	visited := sink.visited()
	assert.NotContains(t, visited, StageClarify)
	assert.NotContains(t, visited, StageProcessClarification)
	assert.Contains(t, visited, StageRetrievePrimary)
}

func TestRunPrimarySufficientSkipsWebSearch(t *testing.T) {
	completer := scriptedCompleter(map[string]string{
		markAmbiguity: "no",
		markGrade:     "yes",
		markAnswer:    "The Eiffel Tower is in Paris (Wikipedia).",
	})
	lookup := retmock.NewMockLookup("The Eiffel Tower is a landmark in Paris, France.")
	searcher := retmock.NewMockSearcher(retrieval.Result{Content: "unused", URL: "https://example.com"})

	runner, err := NewRunner(completer, lookup, searcher)
	require.NoError(t, err)

	final, err := runner.Run(context.Background(), newState("Where is the Eiffel Tower?"))
	require.NoError(t, err)

	require.NotNil(t, final.FinalAnswer)
	assert.NotEmpty(t, final.Answer())
	assert.Equal(t, 0, searcher.CallCount(), "web search must not run when primary evidence suffices")
	assert.Equal(t, GradeSufficient, final.Grade)
}

func TestRunEmptyPrimaryFallsBackToWeb(t *testing.T) {
	var answerPrompt string
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, markAmbiguity):
			return "no", nil
		case strings.Contains(prompt, markRerank):
			return "1, 0", nil
		case strings.Contains(prompt, markAnswer):
			answerPrompt = prompt
			return "Sequoia invested in several AI startups (Web).", nil
		default:
			return "", nil
		}
	}
	lookup := retmock.NewMockLookup() // no primary results
	searcher := retmock.NewMockSearcher(
		retrieval.Result{Content: "Sequoia Capital news.", URL: "https://example.com/a"},
		retrieval.Result{Content: "Sequoia invested in AI.", URL: "https://example.com/b"},
	)

	runner, err := NewRunner(completer, lookup, searcher)
	require.NoError(t, err)

	final, err := runner.Run(context.Background(), newState("What did Sequoia invest in?"))
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.CallCount())
	require.Len(t, final.RerankedDocs, 2)
	assert.Equal(t, "Sequoia invested in AI.", final.RerankedDocs[0].Content)
	assert.Contains(t, answerPrompt, "content from Web")
	assert.Equal(t, "Sequoia invested in several AI startups (Web).", final.Answer())
}

func TestRunAmbiguousTakesClarificationDetour(t *testing.T) {
	completer := scriptedCompleter(map[string]string{
		markAmbiguity: "yes",
		markClarify:   "- Did you mean Tesla the company?",
		markFold:      "Where is Tesla, Inc. headquartered?",
		markRefine:    "Where is Tesla, Inc. headquartered?",
		markGrade:     "yes",
		markAnswer:    "Austin, Texas (Wikipedia).",
	})
	lookup := retmock.NewMockLookup("Tesla, Inc. is headquartered in Austin.")
	sink := &recordingSink{}

	runner, err := NewRunner(completer, lookup, retmock.NewMockSearcher(), WithTraceSink(sink))
	require.NoError(t, err)

	final, err := runner.Run(context.Background(), newState("Where is Tesla?"))
	require.NoError(t, err)

	assert.Equal(t, "Where is Tesla, Inc. headquartered?", final.ClarifiedQuestion)
	assert.False(t, final.NeedsClarification)
	assert.Equal(t, []string{
		StageDetectAmbiguity,
		StageClarify,
		StageProcessClarification,
		StageTransform,
		StageRetrievePrimary,
		StageGradePrimary,
		StageGenerateAnswer,
	}, sink.visited())
}

func TestRunStillAmbiguousClarificationPassesThrough(t *testing.T) {
	clarification := "- Did you mean Tesla the company?\n- Did you mean Nikola Tesla?"
	completer := scriptedCompleter(map[string]string{
		markAmbiguity: "yes",
		markClarify:   clarification,
		markGrade:     "no",
		markRerank:    "0",
		markAnswer:    "Could be either (Web).",
	})
	lookup := retmock.NewMockLookup("Some article.")
	searcher := retmock.NewMockSearcher(retrieval.Result{Content: "web content", URL: "https://example.com"})

	runner, err := NewRunner(completer, lookup, searcher)
	require.NoError(t, err)

	final, err := runner.Run(context.Background(), newState("Where is Tesla?"))
	require.NoError(t, err)

	// No loop back to clarify: the unresolved bulleted text stays the
	// effective question and the flag stays raised.
	assert.True(t, final.NeedsClarification)
	assert.Equal(t, clarification, final.ClarifiedQuestion)
	assert.NotNil(t, final.FinalAnswer)
}

func TestRunPlaceholderWhenNoAnswerProduced(t *testing.T) {
	completer := scriptedCompleter(map[string]string{
		markAmbiguity: "no",
		markGrade:     "no",
	}) // answer prompt yields ""
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	final, err := runner.Run(context.Background(), newState("anything"))
	require.NoError(t, err)
	assert.Equal(t, NoAnswerPlaceholder, final.Answer())
}

func TestRunPortFailurePropagates(t *testing.T) {
	boom := errors.New("model unavailable")
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, _ string) (string, error) {
		return "", boom
	}

	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), newState("anything"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), StageDetectAmbiguity)
}

func TestGradePrimaryEmptyDocsSkipsModel(t *testing.T) {
	completer := aimock.NewMockCompleter()
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	upd, err := runner.gradePrimary(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "q",
	})
	require.NoError(t, err)
	assert.Equal(t, GradeInsufficient, upd.Grade)
	assert.Equal(t, 0, completer.CallCount(), "grading empty evidence must not call the model")
}

func TestGradePrimaryTruncatesSample(t *testing.T) {
	var gradePrompt string
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, prompt string) (string, error) {
		gradePrompt = prompt
		return "yes", nil
	}
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	long := strings.Repeat("x", 5000)
	upd, err := runner.gradePrimary(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "q",
		PrimaryDocs:      []core.Document{{Content: long, Source: "Wikipedia"}},
	})
	require.NoError(t, err)
	assert.Equal(t, GradeSufficient, upd.Grade)
	assert.NotContains(t, gradePrompt, strings.Repeat("x", gradeSampleChars+1))
	assert.Contains(t, gradePrompt, strings.Repeat("x", gradeSampleChars))
}

func TestRerankDegradesToFirstThreeOnPortFailure(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("rerank model down")
	}
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	docs := []core.Document{
		{Content: "a", Source: "u1"},
		{Content: "b", Source: "u2"},
		{Content: "c", Source: "u3"},
		{Content: "d", Source: "u4"},
	}
	upd, err := runner.rerank(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "q",
		SecondaryDocs:    docs,
	})
	require.NoError(t, err, "rerank failure must not abort the pipeline")
	assert.Equal(t, docs[:3], upd.RerankedDocs)
}

func TestRerankBoundsAndMembership(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, _ string) (string, error) {
		return "3, 0, 2, 1, 99", nil
	}
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	docs := []core.Document{
		{Content: "a", Source: "u1"},
		{Content: "b", Source: "u2"},
		{Content: "c", Source: "u3"},
		{Content: "d", Source: "u4"},
	}
	upd, err := runner.rerank(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "q",
		SecondaryDocs:    docs,
	})
	require.NoError(t, err)
	require.LessOrEqual(t, len(upd.RerankedDocs), 3)
	assert.Equal(t, []core.Document{docs[3], docs[0], docs[2]}, upd.RerankedDocs)
	for _, doc := range upd.RerankedDocs {
		assert.Contains(t, docs, doc)
	}
}

func TestRerankEmptyInputSkipsModel(t *testing.T) {
	completer := aimock.NewMockCompleter()
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	upd, err := runner.rerank(context.Background(), State{SessionID: "s", OriginalQuestion: "q"})
	require.NoError(t, err)
	assert.Empty(t, upd.RerankedDocs)
	assert.NotNil(t, upd.RerankedDocs)
	assert.Equal(t, 0, completer.CallCount())
}

func TestRerankOutOfRangeIndicesDiscarded(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, _ string) (string, error) {
		return "7, 8, 9", nil
	}
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	upd, err := runner.rerank(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "q",
		SecondaryDocs:    []core.Document{{Content: "a", Source: "u"}},
	})
	require.NoError(t, err)
	assert.Empty(t, upd.RerankedDocs)
}

func TestTransformNoOpWhenRewriteMatches(t *testing.T) {
	completer := scriptedCompleter(map[string]string{
		markRefine: "where is tesla hq?", // case-insensitive match: no-op
	})
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	s := State{SessionID: "s", OriginalQuestion: "Where is Tesla HQ?"}
	upd, err := runner.transform(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, upd.ClarifiedQuestion)

	// Merging the no-op update leaves the question unchanged.
	after := s.Apply(upd)
	assert.Equal(t, s.EffectiveQuestion(), after.EffectiveQuestion())
}

func TestTransformAdoptsDifferingRewrite(t *testing.T) {
	completer := scriptedCompleter(map[string]string{
		markRefine: "Where is Tesla's main corporate headquarters located?",
	})
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	upd, err := runner.transform(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "Where is Tesla HQ?",
	})
	require.NoError(t, err)
	require.NotNil(t, upd.ClarifiedQuestion)
	assert.Equal(t, "Where is Tesla's main corporate headquarters located?", *upd.ClarifiedQuestion)
}

func TestTransformSkippedWhileClarificationUnresolved(t *testing.T) {
	completer := aimock.NewMockCompleter()
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	upd, err := runner.transform(context.Background(), State{
		SessionID:          "s",
		OriginalQuestion:   "q",
		NeedsClarification: true,
	})
	require.NoError(t, err)
	assert.Equal(t, Update{}, upd)
	assert.Equal(t, 0, completer.CallCount())
}

func TestProcessClarificationMultiBulletShortCircuits(t *testing.T) {
	completer := aimock.NewMockCompleter()
	runner, err := NewRunner(completer, retmock.NewMockLookup(), retmock.NewMockSearcher())
	require.NoError(t, err)

	clarification := "- Tesla the company?\n- Nikola Tesla?"
	upd, err := runner.processClarification(context.Background(), State{
		SessionID:         "s",
		OriginalQuestion:  "Where is Tesla?",
		ClarifiedQuestion: clarification,
	})
	require.NoError(t, err)
	require.NotNil(t, upd.ClarifiedQuestion)
	assert.Equal(t, clarification, *upd.ClarifiedQuestion, "clarification must pass through byte-identical")
	require.NotNil(t, upd.NeedsClarification)
	assert.True(t, *upd.NeedsClarification)
	assert.Equal(t, 0, completer.CallCount(), "short-circuit must not call the model")
}

func TestRetrieveSecondaryDegradesMalformedHits(t *testing.T) {
	searcher := retmock.NewMockSearcher(
		retrieval.Result{Content: "good", URL: "https://example.com"},
		retrieval.Result{Content: "", URL: ""},
	)
	runner, err := NewRunner(aimock.NewMockCompleter(), retmock.NewMockLookup(), searcher)
	require.NoError(t, err)

	upd, err := runner.retrieveSecondary(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "q",
	})
	require.NoError(t, err)
	require.Len(t, upd.SecondaryDocs, 2)
	assert.Equal(t, core.Document{Content: "good", Source: "https://example.com"}, upd.SecondaryDocs[0])
	assert.Equal(t, core.Document{Content: "", Source: "unknown"}, upd.SecondaryDocs[1])
}

func TestRetrievePrimaryTagsSourceLabel(t *testing.T) {
	lookup := retmock.NewMockLookup("snippet one", "snippet two")
	runner, err := NewRunner(aimock.NewMockCompleter(), lookup, retmock.NewMockSearcher(),
		WithPrimarySourceLabel("Local Index"))
	require.NoError(t, err)

	upd, err := runner.retrievePrimary(context.Background(), State{
		SessionID:        "s",
		OriginalQuestion: "q",
	})
	require.NoError(t, err)
	require.Len(t, upd.PrimaryDocs, 2)
	for _, doc := range upd.PrimaryDocs {
		assert.Equal(t, "Local Index", doc.Source)
	}
}

func TestRunnerIsReentrant(t *testing.T) {
	completer := scriptedCompleter(map[string]string{
		markAmbiguity: "no",
		markGrade:     "yes",
		markAnswer:    "answer (Wikipedia).",
	})
	runner, err := NewRunner(completer, retmock.NewMockLookup("doc"), retmock.NewMockSearcher())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			final, err := runner.Run(context.Background(), newState("Where is the Louvre?"))
			assert.NoError(t, err)
			assert.NotNil(t, final.FinalAnswer)
		}()
	}
	wg.Wait()
}
