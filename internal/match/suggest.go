package match

// suggestThreshold is the minimum similarity for a candidate to be offered
// as a suggestion. Below it, suggestions are more confusing than silence.
const suggestThreshold = 0.5

// Suggest returns the candidate most similar to name, or "" when no
// candidate is similar enough. Ties keep the earlier candidate.
func Suggest(name string, candidates []string) string {
	best := ""
	bestScore := suggestThreshold

	for _, c := range candidates {
		if score := Similarity(name, c); score > bestScore {
			best = c
			bestScore = score
		}
	}

	return best
}
