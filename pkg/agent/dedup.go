package agent

import "strings"

// Deduplication defaults. Models frequently restate earlier output verbatim or
// near-verbatim across turns; these thresholds were tuned against observed
// repeats and are configurable, not invariants.
const (
	DefaultSimilarityMinLength = 100
	DefaultSimilarityThreshold = 0.94
)

// Deduplicator collapses near-duplicate text blocks while preserving the order
// of first occurrences.
type Deduplicator struct {
	// MinLength is the minimum normalized length before two blocks are
	// compared by similarity rather than exact match.
	MinLength int

	// Threshold is the similarity ratio at or above which two long blocks
	// count as duplicates.
	Threshold float64
}

// NewDeduplicator creates a Deduplicator with default thresholds.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		MinLength: DefaultSimilarityMinLength,
		Threshold: DefaultSimilarityThreshold,
	}
}

// Fold deduplicates the given blocks and joins the survivors with blank lines.
// A block is a duplicate if its normalized form exactly matches an already
// kept block, or if both normalized forms reach MinLength and their similarity
// ratio is at least Threshold. Comparison runs only against kept blocks, so
// cost is quadratic in kept blocks, not input size.
func (d *Deduplicator) Fold(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}

	var kept []string
	var normalized []string

	for _, block := range blocks {
		stripped := strings.TrimSpace(block)
		if stripped == "" {
			continue
		}

		norm := normalizeBlock(stripped)
		duplicate := false
		for _, existing := range normalized {
			if norm == existing {
				duplicate = true
				break
			}
			if len(norm) >= d.MinLength && len(existing) >= d.MinLength &&
				similarityRatio(norm, existing) >= d.Threshold {
				duplicate = true
				break
			}
		}

		if !duplicate {
			kept = append(kept, stripped)
			normalized = append(normalized, norm)
		}
	}

	return strings.Join(kept, "\n\n")
}

// normalizeBlock lowercases and collapses all whitespace runs to single
// spaces.
func normalizeBlock(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// similarityRatio computes a character-level similarity in [0, 1]: twice the
// total length of common substrings (found by repeatedly taking the longest
// common substring of the unmatched remainders) divided by the combined
// length.
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	matched := commonLength(a, b)
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

func commonLength(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		commonLength(a[:ai], b[:bi]) +
		commonLength(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b string) (int, int, int) {
	b2j := make(map[byte][]int)
	for j := 0; j < len(b); j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	bestA, bestB, bestSize := 0, 0, 0
	runLengths := make(map[int]int)
	for i := 0; i < len(a); i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			length := runLengths[j-1] + 1
			next[j] = length
			if length > bestSize {
				bestA, bestB, bestSize = i-length+1, j-length+1, length
			}
		}
		runLengths = next
	}
	return bestA, bestB, bestSize
}
