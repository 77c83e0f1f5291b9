package scoring

import (
	"sort"
	"strings"
	"unicode"
)

const defaultTopWords = 50

// WordCount is one entry of a word-frequency aggregation.
type WordCount struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// Common filler words excluded from word clouds. Single-rune tokens are
// dropped regardless.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
		"had", "her", "was", "one", "our", "out", "day", "get", "has", "him",
		"his", "how", "man", "new", "now", "old", "see", "two", "way", "who",
		"did", "its", "let", "she", "too", "use", "that", "with", "have",
		"this", "will", "your", "from", "they", "know", "want", "been",
		"good", "much", "some", "time", "very", "when", "just", "like",
		"what", "about", "there", "their", "would",
	} {
		stopWords[w] = struct{}{}
	}
}

// WordCloud aggregates word frequencies across messages and returns the topN
// most frequent words, ties broken alphabetically for a stable order. topN
// values below 1 fall back to 50.
func WordCloud(messages []string, topN int) []WordCount {
	if topN < 1 {
		topN = defaultTopWords
	}
	if len(messages) == 0 {
		return []WordCount{}
	}

	counts := map[string]int{}
	for _, msg := range messages {
		words := strings.FieldsFunc(msg, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		for _, word := range words {
			word = strings.ToLower(word)
			if len([]rune(word)) <= 1 {
				continue
			}
			if _, ok := stopWords[word]; ok {
				continue
			}
			counts[word]++
		}
	}

	result := make([]WordCount, 0, len(counts))
	for word, freq := range counts {
		result = append(result, WordCount{Word: word, Frequency: freq})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Frequency != result[j].Frequency {
			return result[i].Frequency > result[j].Frequency
		}
		return result[i].Word < result[j].Word
	})

	if len(result) > topN {
		result = result[:topN]
	}
	return result
}
