package flow

import (
	"math"
	"strings"
)

// candidateThreshold is the minimum cosine similarity a canonical phrasing
// must reach before it replaces the question.
const candidateThreshold = 0.5

// bestCandidate scores the question against the candidate phrasings using
// TF-IDF cosine similarity, with the question itself included in the fit
// corpus as the last candidate. A candidate is adopted only when it scores
// above both the question's self-similarity and the fixed threshold.
func bestCandidate(question string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	corpus := make([]string, 0, len(candidates)+1)
	corpus = append(corpus, candidates...)
	corpus = append(corpus, question)

	vectors := tfidfVectors(corpus)
	queryVec := vectors[len(vectors)-1]

	selfSimilarity := cosine(queryVec, vectors[len(vectors)-1])

	bestIndex := -1
	bestScore := 0.0
	for i := 0; i < len(candidates); i++ {
		score := cosine(queryVec, vectors[i])
		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex >= 0 && bestScore > selfSimilarity && bestScore > candidateThreshold {
		return candidates[bestIndex], true
	}
	return "", false
}

// tfidfVectors builds L2-normalized TF-IDF vectors over the corpus, using
// smoothed document frequencies so unseen terms never divide by zero.
func tfidfVectors(corpus []string) []map[string]float64 {
	tokenized := make([][]string, len(corpus))
	docFreq := make(map[string]int)
	for i, doc := range corpus {
		tokenized[i] = tokenizeQuery(doc)
		seen := make(map[string]bool)
		for _, tok := range tokenized[i] {
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}

	n := float64(len(corpus))
	vectors := make([]map[string]float64, len(corpus))
	for i, tokens := range tokenized {
		counts := make(map[string]float64)
		for _, tok := range tokens {
			counts[tok]++
		}

		vec := make(map[string]float64, len(counts))
		var norm float64
		for tok, tf := range counts {
			idf := math.Log((1+n)/(1+float64(docFreq[tok]))) + 1
			w := tf * idf
			vec[tok] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for tok := range vec {
				vec[tok] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

func cosine(a, b map[string]float64) float64 {
	// Vectors are L2-normalized, so the dot product is the cosine.
	var dot float64
	for tok, w := range a {
		dot += w * b[tok]
	}
	return dot
}

// tokenizeQuery splits text into lowercase terms with punctuation trimmed.
func tokenizeQuery(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.Trim(word, ".,!?;:'\"-()[]{}")
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}
