package flow

import (
	"context"
	"strings"
)

// transform normalizes the effective question for better retrieval recall.
// It is skipped while a clarification is still unresolved, so retrieval never
// operates on a half-clarified question by way of a rewrite.
//
// Two strategies: by default the model is asked to refine the question, and
// the rewrite is adopted only when it actually differs from the input. When
// the Runner carries rewrite candidates, the question is instead scored
// against them lexically and the best candidate is adopted only when it
// clearly wins. A no-op update is a valid, common outcome for both.
func (r *Runner) transform(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageTransform, "Started processing transform stage")

	if s.NeedsClarification {
		r.trace(s.SessionID, StageTransform, "Skipping transformation due to ambiguous clarification.")
		return Update{}, nil
	}

	question := s.EffectiveQuestion()

	if len(r.candidates) > 0 {
		if best, ok := bestCandidate(question, r.candidates); ok {
			r.trace(s.SessionID, StageTransform, "Transformed query to: "+best)
			return Update{ClarifiedQuestion: stringPtr(best)}, nil
		}
		r.trace(s.SessionID, StageTransform, "No transformation applied")
		return Update{}, nil
	}

	conversation := formatHistory(s.ChatHistory)
	prompt := buildRefinePrompt(conversation, question)

	transformed, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return Update{}, err
	}
	transformed = strings.TrimSpace(transformed)

	if transformed != "" && !strings.EqualFold(transformed, question) {
		r.trace(s.SessionID, StageTransform, "Transformed query to: "+transformed)
		return Update{ClarifiedQuestion: stringPtr(transformed)}, nil
	}

	r.trace(s.SessionID, StageTransform, "No transformation applied")
	return Update{}, nil
}
