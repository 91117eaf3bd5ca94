package flow

import (
	"context"
	"strings"
)

// generateAnswer synthesizes a concise answer from the retrieved evidence,
// citing its source in parentheses. Evidence precedence: primary documents
// when any were retrieved, else the reranked web documents. Each evidence
// document's content is truncated before prompting. This stage is terminal
// on every path that reaches it.
func (r *Runner) generateAnswer(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageGenerateAnswer, "Started processing generate_answer stage")

	conversation := formatHistory(s.ChatHistory)
	query := s.EffectiveQuestion()

	var sourceLabel string
	var evidence []string
	if len(s.PrimaryDocs) > 0 {
		sourceLabel = r.primaryLabel
		for _, doc := range s.PrimaryDocs {
			evidence = append(evidence, truncate(doc.Content, evidenceChars))
		}
	} else {
		sourceLabel = webSourceLabel
		for _, doc := range s.RerankedDocs {
			evidence = append(evidence, truncate(doc.Content, evidenceChars))
		}
	}

	prompt := buildAnswerPrompt(conversation, query, sourceLabel, strings.Join(evidence, "\n"))

	answer, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return Update{}, err
	}
	answer = strings.TrimSpace(answer)

	r.trace(s.SessionID, StageGenerateAnswer, "Generated answer: "+answer)
	return Update{FinalAnswer: stringPtr(answer)}, nil
}
