package flow

import (
	"context"
	"fmt"
	"strings"
)

// detectAmbiguity asks the model for a strict yes/no judgment on whether the
// question is ambiguous given the conversation so far. A response without an
// affirmative token reads as "no", skipping the clarification detour.
func (r *Runner) detectAmbiguity(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageDetectAmbiguity, "Started processing detect_ambiguity stage")

	conversation := formatHistory(s.ChatHistory)
	prompt := buildAmbiguityPrompt(conversation, s.OriginalQuestion)

	response, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return Update{}, err
	}

	ambiguous := isAffirmative(response)
	r.trace(s.SessionID, StageDetectAmbiguity, fmt.Sprintf("Ambiguity detected: %t", ambiguous))
	return Update{NeedsClarification: boolPtr(ambiguous)}, nil
}

// clarify generates a clarification question for the user as a bulleted list
// of candidate interpretations. NeedsClarification stays true here; resolving
// it is processClarification's job.
func (r *Runner) clarify(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageClarify, "Started processing clarify stage")

	conversation := formatHistory(s.ChatHistory)
	prompt := buildClarifyPrompt(conversation, s.OriginalQuestion)

	clarification, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return Update{}, err
	}

	r.trace(s.SessionID, StageClarify, "Generated clarification: "+strings.TrimSpace(clarification))
	return Update{
		ClarifiedQuestion:  stringPtr(clarification),
		NeedsClarification: boolPtr(true),
	}, nil
}

// processClarification decides whether the clarification resolved the
// ambiguity. A clarification that still lists multiple bullet points is
// itself ambiguous: it is returned unchanged with the flag still raised, and
// the caller must re-prompt the human — the graph deliberately has no edge
// back to clarify, so a second ambiguous round flows through retrieval using
// the bulleted text as the effective question. A single-point clarification
// is folded with the original question into one concise disambiguated
// question.
func (r *Runner) processClarification(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageProcessClarification, "Started processing process_clarification stage")

	clarification := s.ClarifiedQuestion
	if countBullets(strings.TrimSpace(clarification)) > 1 {
		r.trace(s.SessionID, StageProcessClarification, "Clarification is too ambiguous; deferring to user input.")
		return Update{
			ClarifiedQuestion:  stringPtr(clarification),
			NeedsClarification: boolPtr(true),
		}, nil
	}

	conversation := formatHistory(s.ChatHistory)
	prompt := buildFoldPrompt(conversation, s.OriginalQuestion, strings.TrimSpace(clarification))

	clarified, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return Update{}, err
	}
	clarified = strings.TrimSpace(clarified)

	r.trace(s.SessionID, StageProcessClarification, "Clarified question: "+clarified)
	return Update{
		ClarifiedQuestion:  stringPtr(clarified),
		NeedsClarification: boolPtr(false),
	}, nil
}
