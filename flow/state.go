package flow

import "github.com/poiesic/inquiro/core"

// State is the conversation record threaded through one pipeline run.
// It is passed by value between stages; stages return partial Updates that
// the graph merges with Apply, so no two stages ever share a mutable view.
type State struct {
	// SessionID correlates trace entries for one run. Required.
	SessionID string

	// ChatHistory holds the prior turns of the conversation. The pipeline
	// reads it for prompt context and never mutates it.
	ChatHistory []core.Turn

	// OriginalQuestion is the verbatim user input. Immutable once set.
	OriginalQuestion string

	// ClarifiedQuestion is the refined or disambiguated question. When
	// non-empty every retrieval and generation stage prefers it over
	// OriginalQuestion.
	ClarifiedQuestion string

	// NeedsClarification routes the run through the clarification detour
	// before retrieval.
	NeedsClarification bool

	// PrimaryDocs holds evidence from the authoritative source.
	PrimaryDocs []core.Document

	// SecondaryDocs holds evidence from the fallback web source.
	SecondaryDocs []core.Document

	// RerankedDocs is the relevance-ordered top slice of SecondaryDocs.
	RerankedDocs []core.Document

	// Grade records the sufficiency judgment of the primary evidence.
	Grade GradeOutcome

	// FinalAnswer is the synthesized answer. Nil until the synthesis stage
	// runs; the Runner guarantees it is non-nil on non-exceptional return.
	FinalAnswer *string
}

// GradeOutcome is the explicit result of the primary-evidence sufficiency
// check. Using a tagged outcome instead of a null answer keeps the edge
// table declarative: the branch after grading inspects this value only.
type GradeOutcome int

const (
	// GradeNotRun means the grading stage has not executed.
	GradeNotRun GradeOutcome = iota
	// GradeSufficient means the primary evidence answers the question.
	GradeSufficient
	// GradeInsufficient means the run must fall back to web search.
	GradeInsufficient
)

// Update is a partial state change produced by one stage. Nil fields mean
// "no change"; document slices replace their predecessor wholesale, never
// mutate it in place.
type Update struct {
	ClarifiedQuestion  *string
	NeedsClarification *bool
	PrimaryDocs        []core.Document
	SecondaryDocs      []core.Document
	RerankedDocs       []core.Document
	Grade              GradeOutcome
	FinalAnswer        *string
}

// Apply merges an Update into a copy of the state and returns it.
func (s State) Apply(u Update) State {
	if u.ClarifiedQuestion != nil {
		s.ClarifiedQuestion = *u.ClarifiedQuestion
	}
	if u.NeedsClarification != nil {
		s.NeedsClarification = *u.NeedsClarification
	}
	if u.PrimaryDocs != nil {
		s.PrimaryDocs = u.PrimaryDocs
	}
	if u.SecondaryDocs != nil {
		s.SecondaryDocs = u.SecondaryDocs
	}
	if u.RerankedDocs != nil {
		s.RerankedDocs = u.RerankedDocs
	}
	if u.Grade != GradeNotRun {
		s.Grade = u.Grade
	}
	if u.FinalAnswer != nil {
		s.FinalAnswer = u.FinalAnswer
	}
	return s
}

// EffectiveQuestion returns ClarifiedQuestion when set, else OriginalQuestion.
func (s State) EffectiveQuestion() string {
	if s.ClarifiedQuestion != "" {
		return s.ClarifiedQuestion
	}
	return s.OriginalQuestion
}

// Answer returns the final answer, or the empty string when none was set.
func (s State) Answer() string {
	if s.FinalAnswer == nil {
		return ""
	}
	return *s.FinalAnswer
}

func stringPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
