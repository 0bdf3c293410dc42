package usage

import "math"

// EstimateTokens approximates the token count of text.
//
// The formula is chars/4 as a base, +0.3 for each syntax-indicator
// character (braces, parens, brackets, semicolons, commas, angle
// brackets), and +1 per newline, rounded up. Code is denser in tokens
// than prose; the syntax weighting accounts for that without pulling in
// a vendor tokenizer. The result is an estimate for billing display,
// not an exact count.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	estimate := float64(len(text)) / 4.0
	for _, r := range text {
		switch r {
		case '{', '}', '(', ')', '[', ']', ';', ',', '<', '>':
			estimate += 0.3
		case '\n':
			estimate += 1.0
		}
	}
	return int(math.Ceil(estimate))
}
