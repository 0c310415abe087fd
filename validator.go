package koquiz

import (
	"fmt"
	"strings"
)

// Validator runs every acceptance check for a generated question against its
// template. Checks are independent and all of them always run; the policy
// combining them lives on ValidationResult.Accept.
type Validator struct {
	scorer  *Scorer
	grammar *GrammarAnalyzer
}

// NewValidator creates a validator. A nil lexicon means DefaultLexicon.
func NewValidator(lex *Lexicon) *Validator {
	return &Validator{
		scorer:  NewScorer(lex),
		grammar: NewGrammarAnalyzer(),
	}
}

// Validate computes all checks for a generated question: structural
// similarity against the template answer, tense agreement, translation
// presence, and the items round-trip (reconstructed items must equal the
// trimmed answer exactly).
func (v *Validator) Validate(template, generated *Question) ValidationResult {
	return ValidationResult{
		StructureSimilarity: v.scorer.Similarity(template.Answer, generated.Answer),
		TenseMatch: v.grammar.Analyze(template.Answer).Tense ==
			v.grammar.Analyze(generated.Answer).Tense,
		HasTranslation: strings.TrimSpace(generated.QuestionTranslation) != "" &&
			strings.TrimSpace(generated.AnswerTranslation) != "",
		ItemsValid: Reconstruct(generated.Items) == strings.TrimSpace(generated.Answer),
	}
}

// topicKind is a coarse question-topic classification used by the coherence
// rules.
type topicKind string

const (
	topicJob         topicKind = "job"
	topicNationality topicKind = "nationality"
	topicLocation    topicKind = "location"
	topicGeneral     topicKind = "general"
)

var topicKeywords = []struct {
	kind     topicKind
	keywords []string
}{
	{topicJob, []string{"직업", "무슨 일", "뭐 하는", "하시는 일"}},
	{topicNationality, []string{"어느 나라", "국적", "나라 사람"}},
	{topicLocation, []string{"어디"}},
}

var jobWords = []string{"가이드", "선생님", "의사", "학생", "회사원", "기자", "요리사", "간호사", "경찰"}

// unrelatedVerbStems lists verb stem pairs that never answer each other.
var unrelatedVerbStems = [][2]string{
	{"읽", "가"},
	{"읽", "먹"},
	{"먹", "가"},
	{"자", "먹"},
	{"사", "읽"},
	{"마시", "읽"},
}

// coherenceRule is one named question/answer coherence check; a non-empty
// return is the human-readable failure reason.
type coherenceRule struct {
	name  string
	check func(v *Validator, question, answer string) string
}

var coherenceRules = []coherenceRule{
	{name: "topic-match", check: (*Validator).checkTopicMatch},
	{name: "object-marker", check: (*Validator).checkObjectMarker},
	{name: "locative-role", check: (*Validator).checkLocativeRole},
	{name: "verb-relatedness", check: (*Validator).checkVerbRelatedness},
}

// CheckCoherence runs the question/answer coherence rule table: topic match,
// particle-role compatibility and verb relatedness. Subject markers 이/가/은/는
// substitute freely for each other; object markers 을/를 are their own class;
// locative 에 and 에서 mark mutually exclusive roles.
//
// Note this checker is not part of the generation accept gate (Accept trusts
// the collaborator's self-correction); it is kept as an independently callable
// contract.
func (v *Validator) CheckCoherence(question, answer string) CoherenceResult {
	var errs []string
	for _, rule := range coherenceRules {
		if reason := rule.check(v, question, answer); reason != "" {
			errs = append(errs, reason)
		}
	}
	return CoherenceResult{IsValid: len(errs) == 0, Errors: errs}
}

func detectTopic(question string) topicKind {
	for _, t := range topicKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(question, kw) {
				return t.kind
			}
		}
	}
	return topicGeneral
}

func (v *Validator) checkTopicMatch(question, answer string) string {
	switch detectTopic(question) {
	case topicJob:
		for _, w := range jobWords {
			if strings.Contains(answer, w) {
				return ""
			}
		}
		return "question asks about a job but the answer names no occupation"
	case topicNationality:
		if !strings.Contains(answer, "사람") {
			return "question asks about nationality but the answer has no 사람 phrase"
		}
	case topicLocation:
		particles := v.scorer.ExtractParticles(answer)
		for _, p := range particles {
			if p == "에" || p == "에서" {
				return ""
			}
		}
		return "question asks about a place but the answer has no locative particle"
	}
	return ""
}

func particleClass(p string) string {
	switch p {
	case "이", "가", "은", "는":
		return "subject"
	case "을", "를":
		return "object"
	case "에", "에서":
		return "locative"
	}
	return ""
}

func (v *Validator) checkObjectMarker(question, answer string) string {
	if !hasParticleClass(v.scorer.ExtractParticles(question), "object") {
		return ""
	}
	if hasParticleClass(v.scorer.ExtractParticles(answer), "object") {
		return ""
	}
	return "question uses an object marker (을/를) but the answer has none"
}

func (v *Validator) checkLocativeRole(question, answer string) string {
	q := locativeOf(v.scorer.ExtractParticles(question))
	a := locativeOf(v.scorer.ExtractParticles(answer))
	if q != "" && a != "" && q != a {
		return fmt.Sprintf("locative role mismatch: question uses %s, answer uses %s", q, a)
	}
	return ""
}

func (v *Validator) checkVerbRelatedness(question, answer string) string {
	qVerbs := v.scorer.ExtractVerbs(question)
	aVerbs := v.scorer.ExtractVerbs(answer)
	if len(qVerbs) == 0 || len(aVerbs) == 0 {
		return ""
	}
	qStem := VerbStem(qVerbs[len(qVerbs)-1])
	aStem := VerbStem(aVerbs[len(aVerbs)-1])
	if qStem == aStem {
		return ""
	}
	for _, pair := range unrelatedVerbStems {
		if (pair[0] == qStem && pair[1] == aStem) || (pair[0] == aStem && pair[1] == qStem) {
			return fmt.Sprintf("verbs %s- and %s- are unrelated", qStem, aStem)
		}
	}
	return ""
}

func hasParticleClass(particles []string, class string) bool {
	for _, p := range particles {
		if particleClass(p) == class {
			return true
		}
	}
	return false
}

// locativeOf returns the first locative particle present, if any.
func locativeOf(particles []string) string {
	for _, p := range particles {
		if p == "에" || p == "에서" {
			return p
		}
	}
	return ""
}
