package koquiz

import "strings"

// TenseRule maps a suffix shape to a tense. Rules are evaluated in order and
// the first match wins, so rule order is part of the classification:
// progressive must run before past because 있 itself carries the ㅆ final
// consonant the past rule looks for.
type TenseRule struct {
	Name  string
	Tense Tense
	Match func(sentence string) bool
}

// GrammarAnalyzer is a coarse single-pass tense classifier over suffix
// patterns. It is deliberately not a morphological parser; false negatives
// are tolerated because the result only gates generation retries.
type GrammarAnalyzer struct {
	rules []TenseRule
}

// NewGrammarAnalyzer builds the analyzer with the default rule table.
func NewGrammarAnalyzer() *GrammarAnalyzer {
	return &GrammarAnalyzer{rules: DefaultTenseRules()}
}

// DefaultTenseRules returns the standard ordered rule table. Exposed so tests
// can enumerate rule coverage directly.
func DefaultTenseRules() []TenseRule {
	return []TenseRule{
		{Name: "progressive -고 있-", Tense: TenseProgressive, Match: matchProgressive},
		{Name: "future -(으)ㄹ 거예요", Tense: TenseFuture, Match: matchFuture},
		{Name: "past ㅆ-final infix", Tense: TensePast, Match: matchPast},
		{Name: "present polite ending", Tense: TensePresent, Match: matchPresent},
	}
}

// Rules returns the analyzer's rule table in evaluation order.
func (g *GrammarAnalyzer) Rules() []TenseRule {
	return g.rules
}

// Analyze classifies the sentence's tense. Sentences matching no rule get
// TenseUnknown.
func (g *GrammarAnalyzer) Analyze(sentence string) GrammarSignature {
	for _, r := range g.rules {
		if r.Match(sentence) {
			return GrammarSignature{Tense: r.Tense}
		}
	}
	return GrammarSignature{Tense: TenseUnknown}
}

func matchProgressive(s string) bool {
	return strings.Contains(s, "고 있")
}

// matchFuture requires a future marker (거예요, 거에요, 겁니다, 게요) preceded
// by a syllable carrying the prospective ㄹ final (갈, 먹을, 만날, ...). The
// final-consonant check keeps possessive 거 ("제 거예요") out of the future
// bucket.
func matchFuture(s string) bool {
	for _, marker := range []string{"거예요", "거에요", "겁니다", "게요"} {
		idx := strings.Index(s, marker)
		if idx < 0 {
			continue
		}
		before := strings.TrimRight(s[:idx], " ")
		if r, ok := lastRune(before); ok && jongseong(r) == jongseongRieul {
			return true
		}
	}
	return false
}

func lastRune(s string) (rune, bool) {
	var r rune
	found := false
	for _, c := range s {
		r = c
		found = true
	}
	return r, found
}

// matchPast looks for the past-tense infix (-았/었/였-), which surfaces as a
// composed syllable with a ㅆ final consonant (갔, 었, 했, 냈, ...). A literal
// substring test cannot see it, so the final consonant is decomposed instead.
// The existential stems 있/없 are excluded: present-tense 있어요 carries the
// same ㅆ final without being past.
func matchPast(s string) bool {
	for _, r := range s {
		if r == '있' || r == '없' {
			continue
		}
		if jongseong(r) == jongseongSsangSiot {
			return true
		}
	}
	return false
}

func matchPresent(s string) bool {
	t := trimFinalPunct(s)
	for _, ending := range []string{"아요", "어요", "여요", "해요", "예요", "에요", "습니다", "니다", "요"} {
		if strings.HasSuffix(t, ending) {
			return true
		}
	}
	return false
}

const (
	hangulBase         = rune(0xAC00)
	hangulEnd          = rune(0xD7A3)
	jongseongCount     = 28
	jongseongSsangSiot = 20 // final consonant index of ㅆ
	jongseongRieul     = 8  // final consonant index of ㄹ
)

// jongseong returns the final-consonant index (0 = none) of a composed Hangul
// syllable, or -1 for non-syllable runes.
func jongseong(r rune) int {
	if r < hangulBase || r > hangulEnd {
		return -1
	}
	return int((r - hangulBase) % jongseongCount)
}

func trimFinalPunct(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".!?")
}
