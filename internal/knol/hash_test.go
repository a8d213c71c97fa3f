package knol

import (
	"testing"

	"github.com/conorfennell/notedeck/internal/domain"
)

func TestNormalize(t *testing.T) {
	entry := domain.Entry{
		Title:    "  Go Channels \r\n",
		Body:     "Send and\r\nreceive.",
		Citation: "Effective Go",
		Tags:     []string{"go"},
	}
	expected := "go channels\x00send and\nreceive.\x00effective go"
	if got := Normalize(entry); got != expected {
		t.Errorf("Expected normalized string to be %q, but got %q", expected, got)
	}
}

func TestHash(t *testing.T) {
	t.Run("known digest", func(t *testing.T) {
		entry := domain.Entry{Title: "Go channels", Body: "Send and receive", Citation: "Effective Go"}
		expected := "fb2d0d8282d82243cf12f45c85f76f0eef36140b730ffb212aa4589ed9bc1e3f"
		if got := Hash(entry); got != expected {
			t.Errorf("Expected hash %s, but got %s", expected, got)
		}
	})

	t.Run("case and whitespace do not matter", func(t *testing.T) {
		a := domain.Entry{Title: "  what is go? ", Body: "A language."}
		b := domain.Entry{Title: "What Is Go?", Body: "A language."}
		if Hash(a) != Hash(b) {
			t.Error("Expected equal hashes after normalization")
		}
	})

	t.Run("tags do not matter", func(t *testing.T) {
		a := domain.Entry{Title: "T", Tags: []string{"x"}}
		b := domain.Entry{Title: "T", Tags: []string{"y", "z"}}
		if Hash(a) != Hash(b) {
			t.Error("Expected tags to be excluded from the hash")
		}
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		testCases := []struct {
			name string
			a, b domain.Entry
		}{
			{"split inside a word", domain.Entry{Title: "ab", Body: "c"}, domain.Entry{Title: "a", Body: "bc"}},
			{"multi-line title", domain.Entry{Title: "a\nb", Body: "c"}, domain.Entry{Title: "a", Body: "b\nc"}},
			{"multi-line body", domain.Entry{Body: "a\nb", Citation: "c"}, domain.Entry{Body: "a", Citation: "b\nc"}},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				if Hash(tc.a) == Hash(tc.b) {
					t.Errorf("Expected %+v and %+v to hash differently", tc.a, tc.b)
				}
			})
		}
	})
}
