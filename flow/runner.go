// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package flow

import (
	"context"
	"log/slog"

	"github.com/poiesic/inquiro/ai"
	"github.com/poiesic/inquiro/retrieval"
)

// Stage names, matching the trace entries they emit.
const (
	StageDetectAmbiguity      = "detect_ambiguity"
	StageClarify              = "clarify"
	StageProcessClarification = "process_clarification"
	StageTransform            = "transform"
	StageRetrievePrimary      = "retrieve_primary"
	StageGradePrimary         = "grade_primary"
	StageRetrieveSecondary    = "retrieve_secondary"
	StageRerank               = "rerank"
	StageGenerateAnswer       = "generate_answer"
)

const (
	// defaultLookupTopK bounds results from the authoritative source.
	defaultLookupTopK = 2
	// rerankTopK bounds the reranked document set.
	rerankTopK = 3
	// gradeSampleChars caps the content sample sent to the grader.
	gradeSampleChars = 1000
	// summaryChars caps each document summary in the rerank prompt.
	summaryChars = 200
	// evidenceChars caps each evidence document in the answer prompt.
	evidenceChars = 500
	// defaultPrimaryLabel tags documents from the authoritative source.
	defaultPrimaryLabel = "Wikipedia"
	// webSourceLabel names the fallback source in the answer prompt.
	webSourceLabel = "Web"

	// NoAnswerPlaceholder is returned to callers when synthesis produced
	// nothing; the pipeline never surfaces a nil answer.
	NoAnswerPlaceholder = "No answer generated."
)

// Runner executes the question-answering pipeline. It owns the stage graph
// and the capability ports, which are injected at construction time so test
// doubles can stand in for every external dependency. A Runner holds no
// per-run state and is safe for concurrent Run calls from independent
// sessions.
type Runner struct {
	completer ai.Completer
	lookup    retrieval.Lookup
	searcher  retrieval.WebSearcher
	sink      TraceSink
	logger    *slog.Logger

	lookupTopK   int
	primaryLabel string

	// candidates, when set, switches the transform stage to lexical
	// candidate scoring instead of a model rewrite.
	candidates []string

	graph *Graph
}

// Option configures a Runner.
type Option func(*Runner) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithTraceSink sets the session log sink receiving stage events.
// Default discards them.
func WithTraceSink(sink TraceSink) Option {
	return func(r *Runner) error {
		if sink == nil {
			sink = &noopSink{}
		}
		r.sink = sink
		return nil
	}
}

// WithLookupTopK sets how many snippets to request from the authoritative
// source. Default is 2.
func WithLookupTopK(k int) Option {
	return func(r *Runner) error {
		if k > 0 {
			r.lookupTopK = k
		}
		return nil
	}
}

// WithPrimarySourceLabel sets the source tag applied to authoritative
// documents and cited in answers built from them. Default is "Wikipedia".
func WithPrimarySourceLabel(label string) Option {
	return func(r *Runner) error {
		if label != "" {
			r.primaryLabel = label
		}
		return nil
	}
}

// WithRewriteCandidates switches the transform stage to score the question
// against the given canonical phrasings with TF-IDF cosine similarity,
// instead of asking the model for a rewrite.
func WithRewriteCandidates(candidates []string) Option {
	return func(r *Runner) error {
		r.candidates = candidates
		return nil
	}
}

// NewRunner creates a pipeline runner over the given capability ports.
func NewRunner(
	completer ai.Completer,
	lookup retrieval.Lookup,
	searcher retrieval.WebSearcher,
	opts ...Option,
) (*Runner, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	if lookup == nil {
		return nil, ErrLookupRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	r := &Runner{
		completer:    completer,
		lookup:       lookup,
		searcher:     searcher,
		sink:         &noopSink{},
		logger:       slog.Default(),
		lookupTopK:   defaultLookupTopK,
		primaryLabel: defaultPrimaryLabel,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.graph = r.buildGraph()
	return r, nil
}

// buildGraph wires the nine stages into the pipeline's edge table.
func (r *Runner) buildGraph() *Graph {
	g := NewGraph()

	g.AddNode(StageDetectAmbiguity, r.detectAmbiguity)
	g.AddNode(StageClarify, r.clarify)
	g.AddNode(StageProcessClarification, r.processClarification)
	g.AddNode(StageTransform, r.transform)
	g.AddNode(StageRetrievePrimary, r.retrievePrimary)
	g.AddNode(StageGradePrimary, r.gradePrimary)
	g.AddNode(StageRetrieveSecondary, r.retrieveSecondary)
	g.AddNode(StageRerank, r.rerank)
	g.AddNode(StageGenerateAnswer, r.generateAnswer)

	g.SetEntry(StageDetectAmbiguity)

	g.AddBranch(StageDetectAmbiguity, func(s State) string {
		if s.NeedsClarification {
			return StageClarify
		}
		return StageRetrievePrimary
	})
	g.AddEdge(StageClarify, StageProcessClarification)
	g.AddEdge(StageProcessClarification, StageTransform)
	g.AddEdge(StageTransform, StageRetrievePrimary)
	g.AddEdge(StageRetrievePrimary, StageGradePrimary)
	g.AddBranch(StageGradePrimary, func(s State) string {
		if s.Grade == GradeSufficient {
			return StageGenerateAnswer
		}
		return StageRetrieveSecondary
	})
	g.AddEdge(StageRetrieveSecondary, StageRerank)
	g.AddEdge(StageRerank, StageGenerateAnswer)
	// generate_answer has no outgoing edge: terminal.

	return g
}

// Run executes one pipeline run to completion and returns the final state.
// The initial state must carry a session ID and the original question; all
// other fields may be zero. On non-exceptional completion FinalAnswer is
// guaranteed to be a non-nil string.
func (r *Runner) Run(ctx context.Context, initial State) (State, error) {
	if initial.SessionID == "" {
		return initial, ErrSessionIDRequired
	}
	if initial.OriginalQuestion == "" {
		return initial, ErrQuestionRequired
	}

	final, err := r.graph.Run(ctx, initial)
	if err != nil {
		return final, err
	}

	if final.FinalAnswer == nil || *final.FinalAnswer == "" {
		final.FinalAnswer = stringPtr(NoAnswerPlaceholder)
	}
	return final, nil
}

// trace emits a session log event. Sink failures never reach the run.
func (r *Runner) trace(sessionID, stage, message string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("trace sink panicked", "stage", stage, "recover", rec)
		}
	}()
	r.sink.Append(sessionID, stage, message)
}
