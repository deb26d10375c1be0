// Package stopwords holds the word lists excluded from frequency counting.
package stopwords

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed english.txt
var englishList string

// Set is an immutable set of lowercase stopwords.
type Set struct {
	words map[string]struct{}
}

// English returns the NLTK English stopword list. It is parsed once and
// shared by every caller.
var English = sync.OnceValue(func() Set {
	set, err := parse(strings.NewReader(englishList))
	if err != nil {
		panic(fmt.Sprintf("stopwords: embedded list: %v", err))
	}
	return set
})

// New builds a set from the given words.
func New(words ...string) Set {
	set := Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set.words[w] = struct{}{}
		}
	}
	return set
}

// Load reads a stopword file with one word per line. Blank lines and lines
// starting with '#' are ignored.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("failed to open stopword file: %w", err)
	}
	defer f.Close()

	set, err := parse(f)
	if err != nil {
		return Set{}, fmt.Errorf("failed to read stopword file %s: %w", path, err)
	}
	return set, nil
}

func (s Set) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s Set) Len() int {
	return len(s.words)
}

func parse(r io.Reader) (Set, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return Set{}, err
	}
	return New(words...), nil
}
