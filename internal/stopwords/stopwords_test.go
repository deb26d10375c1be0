package stopwords

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnglish(t *testing.T) {
	set := English()

	if set.Len() != 179 {
		t.Errorf("Len() = %d, want 179", set.Len())
	}

	for _, w := range []string{"the", "and", "on", "wouldn't", "ourselves"} {
		if !set.Contains(w) {
			t.Errorf("expected %q to be a stopword", w)
		}
	}
	for _, w := range []string{"cat", "meeting", "The"} {
		if set.Contains(w) {
			t.Errorf("did not expect %q to be a stopword", w)
		}
	}
}

func TestEnglishIsShared(t *testing.T) {
	a := English()
	b := English()
	if a.Len() != b.Len() {
		t.Fatalf("English() returned different sets: %d vs %d", a.Len(), b.Len())
	}
}

func TestNew(t *testing.T) {
	set := New("The", " on ", "", "the")

	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
	if !set.Contains("the") || !set.Contains("on") {
		t.Error("expected lowercased, trimmed entries")
	}
}

func TestEmptySet(t *testing.T) {
	var set Set
	if set.Contains("the") {
		t.Error("zero Set should contain nothing")
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.txt")
	content := "# custom list\nfoo\n\nBar\n  baz  \n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if set.Len() != 3 {
		t.Errorf("Len() = %d, want 3", set.Len())
	}
	for _, w := range []string{"foo", "bar", "baz"} {
		if !set.Contains(w) {
			t.Errorf("expected %q in loaded set", w)
		}
	}
	if set.Contains("# custom list") {
		t.Error("comment line should be skipped")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
