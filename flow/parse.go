package flow

import (
	"strconv"
	"strings"
)

// Model responses are parsed with best-effort string matching rather than a
// structured-output contract. The helpers here centralize that parsing so
// the tolerance rules live in one place per signal type.

// isAffirmative reports whether a model response contains an affirmative
// token. A malformed response without one reads as "no", which steers every
// yes/no decision toward the cheaper path.
func isAffirmative(response string) bool {
	return strings.Contains(strings.ToLower(response), "yes")
}

// parseIndexList extracts non-negative integers from a comma-separated model
// response. Tokens that are not plain digit runs are dropped silently.
func parseIndexList(response string) []int {
	parts := strings.Split(response, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" || !isDigits(token) {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		indices = append(indices, n)
	}
	return indices
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// countBullets counts the lines of text that begin with a bullet marker.
// Models emit either "-" or "*" lists depending on their formatting habits.
func countBullets(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			count++
		}
	}
	return count
}

// truncate caps text at n runes.
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
