// Package textsim provides the lightweight text and vector similarity
// measures used by the consistency and semantic analyzers. All measures
// return values in [0,1] (cosine in [-1,1]) and never NaN.
package textsim

import (
	"math"
	"strings"
	"unicode"
)

// Words splits text into lowercased whitespace-separated tokens with
// surrounding punctuation trimmed. A token made only of punctuation is kept
// as-is so that non-empty text always yields at least one word; text made
// only of whitespace yields a single empty word.
func Words(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 && text != "" {
		return []string{""}
	}
	for i, f := range fields {
		if t := strings.TrimFunc(f, isPunct); t != "" {
			fields[i] = t
		}
	}
	return fields
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// WordSet returns the distinct words of text.
func WordSet(text string) map[string]struct{} {
	return toSet(Words(text))
}

// Bigrams returns the distinct character 2-grams of the lowercased text.
// Text shorter than two runes yields itself as its only gram.
func Bigrams(text string) map[string]struct{} {
	runes := []rune(strings.ToLower(text))
	if len(runes) < 2 {
		if len(runes) == 0 {
			return map[string]struct{}{}
		}
		return map[string]struct{}{string(runes): {}}
	}
	set := make(map[string]struct{}, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// WordJaccard is the Jaccard similarity of the word sets of a and b.
func WordJaccard(a, b string) float64 {
	return Jaccard(WordSet(a), WordSet(b))
}

// BigramJaccard is the Jaccard similarity of the character bigram sets of
// a and b.
func BigramJaccard(a, b string) float64 {
	return Jaccard(Bigrams(a), Bigrams(b))
}

// TextSimilarity averages word and bigram Jaccard similarity. It is
// symmetric and equals 1 for identical non-empty text.
func TextSimilarity(a, b string) float64 {
	return (WordJaccard(a, b) + BigramJaccard(a, b)) / 2
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths,
// empty vectors and zero-magnitude vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
