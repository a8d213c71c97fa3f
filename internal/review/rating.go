package review

import (
	"encoding"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRating is returned for any value outside Again..Easy.
var ErrInvalidRating = errors.New("invalid rating")

// Rating is the learner's recall feedback for a review.
type Rating int

const (
	Again Rating = iota + 1 // Forgotten; the interval resets.
	Hard
	Good
	Easy
)

var ratingNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}

var (
	_ fmt.Stringer             = Rating(0)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// ParseRating accepts a rating name in any case.
func ParseRating(s string) (Rating, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r := Again; r <= Easy; r++ {
		if ratingNames[r] == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// IsValid reports whether r is one of the four ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// MarshalText implements encoding.TextMarshaler. JSON encoding picks this up too.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
