package koquiz

import (
	"math"
	"strings"
)

// ScorerWeights tunes the structural similarity blend. The defaults are
// calibrated against the 0.6 acceptance threshold: a sentence differing from
// its template by a single substituted noun scores 1.0, while a sentence with
// a different particle skeleton lands well below the threshold.
type ScorerWeights struct {
	TokenCount float64
	Particles  float64
	VerbShape  float64
}

// DefaultScorerWeights returns the standard blend.
func DefaultScorerWeights() ScorerWeights {
	return ScorerWeights{TokenCount: 0.35, Particles: 0.45, VerbShape: 0.20}
}

// Scorer compares two sentences' token-level structure.
type Scorer struct {
	lex     *Lexicon
	weights ScorerWeights
}

// NewScorer creates a scorer. A nil lexicon means DefaultLexicon.
func NewScorer(lex *Lexicon) *Scorer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Scorer{lex: lex, weights: DefaultScorerWeights()}
}

// NewScorerWithWeights creates a scorer with explicit weights.
func NewScorerWithWeights(lex *Lexicon, w ScorerWeights) *Scorer {
	s := NewScorer(lex)
	s.weights = w
	return s
}

// Similarity scores the structural similarity of two sentences in [0,1]:
// token-count closeness, the fraction of aligned token pairs sharing the same
// trailing particle, and whether both sentences end in a verb-shaped token.
func (sc *Scorer) Similarity(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	la, lb := float64(len(ta)), float64(len(tb))
	tokenScore := 1 - math.Abs(la-lb)/math.Max(la, lb)

	n := len(ta)
	if len(tb) < n {
		n = len(tb)
	}
	pairs, shared := 0, 0
	for i := 0; i < n; i++ {
		pa, oka := sc.lex.MatchTrailing(ta[i])
		pb, okb := sc.lex.MatchTrailing(tb[i])
		if !oka && !okb {
			continue
		}
		pairs++
		if oka && okb && pa == pb {
			shared++
		}
	}
	particleScore := 1.0
	if pairs > 0 {
		particleScore = float64(shared) / float64(pairs)
	}

	verbScore := 0.0
	if hasVerbEnding(ta[len(ta)-1]) == hasVerbEnding(tb[len(tb)-1]) {
		verbScore = 1.0
	}

	score := sc.weights.TokenCount*tokenScore +
		sc.weights.Particles*particleScore +
		sc.weights.VerbShape*verbScore
	return math.Min(1, math.Max(0, score))
}

// ExtractVerbs returns the verb-shaped tokens of a sentence (trailing
// punctuation stripped), judged by their polite/declarative endings.
func (sc *Scorer) ExtractVerbs(sentence string) []string {
	var verbs []string
	for _, tok := range strings.Fields(sentence) {
		if hasVerbEnding(tok) {
			verbs = append(verbs, trimFinalPunct(tok))
		}
	}
	return verbs
}

// ExtractParticles returns the trailing particles of a sentence's tokens in
// order.
func (sc *Scorer) ExtractParticles(sentence string) []string {
	var particles []string
	for _, tok := range strings.Fields(sentence) {
		if p, ok := sc.lex.MatchTrailing(tok); ok {
			particles = append(particles, p)
		}
	}
	return particles
}

func hasVerbEnding(token string) bool {
	t := trimFinalPunct(token)
	for _, ending := range []string{"요", "다", "까"} {
		if strings.HasSuffix(t, ending) {
			return true
		}
	}
	return false
}

// VerbStem strips a polite verb token down to a comparable stem: trailing
// punctuation, then the polite ending, then the past infix. 갔어요 → 가,
// 읽었어요 → 읽, 해요 → 해.
func VerbStem(token string) string {
	t := trimFinalPunct(token)
	for _, ending := range []string{"습니다", "어요", "아요", "여요", "요"} {
		if strings.HasSuffix(t, ending) && len([]rune(t)) > len([]rune(ending)) {
			t = strings.TrimSuffix(t, ending)
			break
		}
	}
	runes := []rune(t)
	for len(runes) > 0 {
		last := runes[len(runes)-1]
		if last == '었' || last == '았' || last == '였' {
			runes = runes[:len(runes)-1]
			continue
		}
		if jongseong(last) == jongseongSsangSiot {
			runes[len(runes)-1] = last - rune(jongseongSsangSiot)
		}
		break
	}
	return string(runes)
}
