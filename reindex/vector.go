package reindex

import "math"

// NormalizeVector returns a unit-length copy of v. Stored embeddings are
// normalized so the index can rank candidates by dot product alone, without
// dividing by magnitudes at query time. A zero vector has no direction and
// maps to a zero vector of the same length. The input is never mutated.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}

	inv := float32(1 / math.Sqrt(sum))
	for i, val := range v {
		out[i] = val * inv
	}
	return out
}
