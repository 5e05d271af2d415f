package textsim

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "against", "all", "also", "and", "any",
		"are", "based", "because", "been", "before", "being", "between", "both", "but",
		"can", "could", "does", "doing", "down", "during", "each", "every", "few",
		"for", "from", "further", "have", "having", "here", "how", "into", "its",
		"just", "more", "most", "much", "must", "nor", "not", "now", "off", "once",
		"only", "other", "ought", "our", "ours", "out", "over", "own", "same",
		"should", "some", "such", "than", "that", "the", "their", "them", "then",
		"there", "these", "they", "this", "those", "through", "too", "under", "until",
		"upon", "very", "was", "were", "what", "when", "where", "which", "while",
		"who", "whom", "why", "will", "with", "within", "without", "would", "your",
		"yours",
	} {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether word (lowercase) carries no topical meaning.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
