package archive

import (
	"strings"

	"github.com/gosimple/slug"
)

// Slugger derives short, filesystem-safe names from arbitrary text.
//
// The text is transliterated and hyphenated, stopwords are dropped, the result
// is cut to MaxLength, and finally words shorter than MinWordLen are removed.
type Slugger struct {
	MinWordLen int
	MaxLength  int
	stopwords  map[string]struct{}
}

// NewSlugger creates a Slugger. Stopwords are matched case-insensitively.
func NewSlugger(minWordLen, maxLength int, stopwords []string) *Slugger {
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Slugger{
		MinWordLen: minWordLen,
		MaxLength:  maxLength,
		stopwords:  set,
	}
}

// Slug returns the slug for text, or "" when nothing survives filtering.
func (s *Slugger) Slug(text string) string {
	words := strings.Split(slug.Make(text), "-")

	kept := words[:0]
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, stop := s.stopwords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}

	joined := strings.Join(kept, "-")
	if s.MaxLength > 0 && len(joined) > s.MaxLength {
		joined = strings.Trim(joined[:s.MaxLength], "-")
	}

	var long []string
	for _, w := range strings.Split(joined, "-") {
		if w != "" && len([]rune(w)) >= s.MinWordLen {
			long = append(long, w)
		}
	}
	return strings.Join(long, "-")
}
