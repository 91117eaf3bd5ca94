package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/inquiro/core"
)

// rerank selects the most relevant web documents by asking the model for the
// indices of the top 3, given an enumerated summary of each. The response is
// parsed permissively: only valid in-range integers count. Reranking failure
// must never abort the pipeline — a port error degrades to the first 3
// documents in original order.
func (r *Runner) rerank(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageRerank, "Started processing rerank stage")

	docs := s.SecondaryDocs
	if len(docs) == 0 {
		r.trace(s.SessionID, StageRerank, "No web docs to rerank")
		return Update{RerankedDocs: []core.Document{}}, nil
	}

	conversation := formatHistory(s.ChatHistory)
	query := s.EffectiveQuestion()

	summaries := make([]string, 0, len(docs))
	for i, doc := range docs {
		summaries = append(summaries, fmt.Sprintf("Doc %d: %s", i, truncate(doc.Content, summaryChars)))
	}

	response, err := r.completer.Complete(ctx, buildRerankPrompt(conversation, query, strings.Join(summaries, "\n")))
	if err != nil {
		r.trace(s.SessionID, StageRerank,
			fmt.Sprintf("Error during reranking: %v; defaulting to first %d docs", err, rerankTopK))
		return Update{RerankedDocs: firstN(docs, rerankTopK)}, nil
	}

	indices := parseIndexList(response)
	selected := make([]core.Document, 0, rerankTopK)
	for _, idx := range indices {
		if idx < 0 || idx >= len(docs) {
			continue
		}
		selected = append(selected, docs[idx])
		if len(selected) >= rerankTopK {
			break
		}
	}

	r.trace(s.SessionID, StageRerank, fmt.Sprintf("Selected document indices: %v", indices))
	return Update{RerankedDocs: selected}, nil
}

// firstN copies the first n documents, or all of them when fewer exist.
func firstN(docs []core.Document, n int) []core.Document {
	if len(docs) < n {
		n = len(docs)
	}
	out := make([]core.Document, n)
	copy(out, docs[:n])
	return out
}
