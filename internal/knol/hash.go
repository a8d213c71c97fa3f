package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/notedeck/internal/domain"
)

func normalizePart(part string) string {
	p := strings.ReplaceAll(part, "\r\n", "\n")
	p = strings.ReplaceAll(p, fieldSep, "")
	return strings.ToLower(strings.TrimSpace(p))
}

// fieldSep is stripped from every part, so multi-line fields cannot
// shift content across a boundary.
const fieldSep = "\x00"

// Normalize joins the cleaned title, body and citation of an entry.
// Tags are not part of an entry's identity.
func Normalize(entry domain.Entry) string {
	return strings.Join([]string{
		normalizePart(entry.Title),
		normalizePart(entry.Body),
		normalizePart(entry.Citation),
	}, fieldSep)
}

// Hash returns the SHA-256 of the normalized entry as a hex string.
func Hash(entry domain.Entry) string {
	sum := sha256.Sum256([]byte(Normalize(entry)))
	return fmt.Sprintf("%x", sum)
}
