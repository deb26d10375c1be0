// Package wordfreq tokenizes a corpus and turns it into word frequencies.
package wordfreq

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/tokenize"

	"github.com/bscott/mail-wordcloud/internal/stopwords"
)

// Words shorter than MinLength or longer than MaxLength runes are dropped.
const (
	MinLength = 3
	MaxLength = 19
)

// Counts maps a lowercase word to the number of times it occurred.
type Counts map[string]int

// Frequencies maps a word to its share of all counted words.
type Frequencies map[string]float64

type Entry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Tokenize splits text into sentences with the punkt tokenizer and each
// sentence into Treebank word tokens.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return tokenize.TextToWords(text)
}

// Count lowercases tokens and counts the ones that are not stopwords and
// have an allowed length.
func Count(tokens []string, stop stopwords.Set) Counts {
	counts := make(Counts)
	for _, tok := range tokens {
		word := strings.ToLower(tok)
		if stop.Contains(word) {
			continue
		}
		if n := utf8.RuneCountInString(word); n < MinLength || n > MaxLength {
			continue
		}
		counts[word]++
	}
	return counts
}

func CountCorpus(corpus string, stop stopwords.Set) Counts {
	return Count(Tokenize(corpus), stop)
}

func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Top returns the n most frequent words, ties broken alphabetically.
// A non-positive n returns every word.
func (c Counts) Top(n int) []Entry {
	entries := make([]Entry, 0, len(c))
	for w, count := range c {
		entries = append(entries, Entry{Word: w, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Normalize drops words seen only once and divides the remaining counts by
// the total of all counts, singletons included.
func Normalize(c Counts) Frequencies {
	freqs := make(Frequencies)
	total := c.Total()
	if total == 0 {
		return freqs
	}
	for w, n := range c {
		if n > 1 {
			freqs[w] = float64(n) / float64(total)
		}
	}
	return freqs
}

// Weights scales frequencies to integers for renderers that take integer
// weights. Every word keeps a weight of at least 1.
func (f Frequencies) Weights(scale int) map[string]int {
	weights := make(map[string]int, len(f))
	for w, v := range f {
		n := int(v*float64(scale) + 0.5)
		if n < 1 {
			n = 1
		}
		weights[w] = n
	}
	return weights
}
