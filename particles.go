package koquiz

import (
	"sort"
	"strings"
)

// DefaultParticles is the set of noun-attached grammatical particles the
// segmenter recognizes. Declaration order is irrelevant; NewLexicon sorts
// longest-first so that 에서 wins over 에 during trailing-match.
var DefaultParticles = []string{
	"에서부터", "으로부터",
	"에게서", "한테서",
	"에서", "에게", "한테", "께서", "부터", "까지",
	"으로", "보다", "처럼", "마다", "하고", "이랑", "이나",
	"은", "는", "이", "가", "을", "를",
	"에", "로", "와", "과", "의", "도", "만", "랑",
}

// Lexicon is an ordered particle set. Matching scans the particles
// longest-first and returns the first hit, so the sort order is the
// tie-break rule.
type Lexicon struct {
	particles []string
}

// NewLexicon builds a lexicon from the given particles, sorted by descending
// rune length. The input slice is not modified.
func NewLexicon(particles []string) *Lexicon {
	sorted := make([]string, len(particles))
	copy(sorted, particles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})
	return &Lexicon{particles: sorted}
}

// DefaultLexicon returns a lexicon over DefaultParticles.
func DefaultLexicon() *Lexicon {
	return NewLexicon(DefaultParticles)
}

// Particles returns the particles in matching order.
func (l *Lexicon) Particles() []string {
	out := make([]string, len(l.particles))
	copy(out, l.particles)
	return out
}

// MatchTrailing returns the longest particle that is a suffix of word. A
// candidate only counts when the remaining stem is non-empty and does not end
// in sentence-final punctuation, so punctuation-terminated words stay whole.
func (l *Lexicon) MatchTrailing(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	for _, p := range l.particles {
		if !strings.HasSuffix(word, p) {
			continue
		}
		stem := strings.TrimSuffix(word, p)
		if stem == "" || endsWithFinalPunct(stem) {
			continue
		}
		return p, true
	}
	return "", false
}

func endsWithFinalPunct(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}
