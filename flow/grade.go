package flow

import "context"

// gradePrimary judges whether the primary evidence answers the question.
// Empty evidence is graded insufficient immediately, without a model call;
// otherwise a bounded sample of the first document is submitted for a strict
// yes/no sufficiency check. The outcome drives the fallback branch: the run
// terminates through synthesis on GradeSufficient and detours through web
// search on GradeInsufficient.
func (r *Runner) gradePrimary(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageGradePrimary, "Started processing grade_primary stage")

	if len(s.PrimaryDocs) == 0 {
		r.trace(s.SessionID, StageGradePrimary, "No primary docs found; triggering fallback")
		return Update{Grade: GradeInsufficient}, nil
	}

	conversation := formatHistory(s.ChatHistory)
	query := s.EffectiveQuestion()
	sample := truncate(s.PrimaryDocs[0].Content, gradeSampleChars)

	response, err := r.completer.Complete(ctx, buildGradePrompt(conversation, query, sample))
	if err != nil {
		return Update{}, err
	}

	if isAffirmative(response) {
		r.trace(s.SessionID, StageGradePrimary, "Primary content deemed sufficient")
		return Update{Grade: GradeSufficient}, nil
	}

	r.trace(s.SessionID, StageGradePrimary, "Primary content insufficient; falling back to web search")
	return Update{Grade: GradeInsufficient}, nil
}
