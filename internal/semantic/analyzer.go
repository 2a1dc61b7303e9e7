// Package semantic derives chunk metadata (key phrases, topics, readability)
// from text during indexing, before the text is discarded.
package semantic

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxKeyPhrases is the number of key phrases kept per chunk.
const DefaultMaxKeyPhrases = 5

// DefaultMaxTopics is the number of topic terms kept per document.
const DefaultMaxTopics = 8

// Analyzer computes derived metadata from chunk and document text.
// All methods are deterministic: the same text always yields the same
// metadata, which keeps re-indexing of unchanged content idempotent.
type Analyzer struct {
	tokenPattern    *regexp.Regexp
	sentencePattern *regexp.Regexp
	stopwords       map[string]struct{}
}

// NewAnalyzer creates an analyzer with the default English stopword list.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		tokenPattern:    regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:       defaultStopwords(),
	}
}

// KeyPhrases returns the max highest-frequency content terms of the text,
// stopwords filtered, ties broken alphabetically.
func (a *Analyzer) KeyPhrases(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxKeyPhrases
	}

	freq := map[string]int{}
	for _, tok := range a.tokens(text) {
		if _, ok := a.stopwords[tok]; ok {
			continue
		}
		if len(tok) < 3 {
			continue
		}
		freq[tok]++
	}
	if len(freq) == 0 {
		return nil
	}

	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if max > len(terms) {
		max = len(terms)
	}
	return terms[:max]
}

// Topics returns document-level topic terms. Same ranking as KeyPhrases
// but computed over the whole document's text and capped at
// DefaultMaxTopics; the caller stamps the result onto every chunk.
func (a *Analyzer) Topics(documentText string) []string {
	return a.KeyPhrases(documentText, DefaultMaxTopics)
}

// Readability returns a Flesch reading-ease style score in [0, 100],
// higher meaning easier. Text without complete sentences scores from a
// single implied sentence.
func (a *Analyzer) Readability(text string) float64 {
	words := a.tokens(text)
	if len(words) == 0 {
		return 0
	}

	sentences := a.sentencePattern.FindAllString(text, -1)
	sentenceCount := len(sentences)
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	totalSyllables := 0
	for _, w := range words {
		totalSyllables += syllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentenceCount)
	syllablesPerWord := float64(totalSyllables) / float64(len(words))

	score := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// EstimateTokens approximates the LLM token count of text.
// Uses the common four-characters-per-token heuristic.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func (a *Analyzer) tokens(text string) []string {
	return a.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// syllables estimates the syllable count of a lowercase word by counting
// vowel groups, discounting a trailing silent e.
func syllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through",
		"during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "don", "should",
		"now", "not", "no", "nor", "only", "other", "some", "any", "each",
		"few", "more", "most", "both", "all", "we", "you", "they", "he",
		"she", "i", "me", "my", "our", "your", "their", "its", "his",
		"her", "them", "us", "what", "which", "who", "when", "where",
		"why", "how", "there", "here", "have", "has", "had", "do", "does",
		"did", "would", "could", "may", "might", "must", "shall",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
