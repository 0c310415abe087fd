package koquiz

import (
	"time"

	"github.com/google/uuid"
)

// NoSourceWord marks an Item that was not derived from a specific source word.
const NoSourceWord = -1

// Item is a single draggable unit of a quiz answer: a stem, a particle, or a
// whole word. CombineWithNext is true when no space is rendered between this
// item and the next one (a stem immediately followed by its particle).
type Item struct {
	ID                string `json:"id"`
	Content           string `json:"content"`
	CombineWithNext   bool   `json:"combineWithNext"`
	OriginalWordIndex int    `json:"originalWordIndex"`
}

// Question is a bilingual question/answer pair with the answer segmented into
// drag-and-drop items. Items must reconstruct Answer exactly (see Reconstruct).
type Question struct {
	ID                  string    `json:"id"`
	TemplateID          string    `json:"template_id,omitempty"`
	GrammarName         string    `json:"grammar_name,omitempty"`
	Question            string    `json:"question"`
	QuestionTranslation string    `json:"question_translation"`
	Answer              string    `json:"answer"`
	AnswerTranslation   string    `json:"answer_translation"`
	Items               []Item    `json:"items"`
	CreatedAt           time.Time `json:"created_at"`
}

// Tense is a coarse tense classification derived from suffix patterns.
type Tense string

const (
	TensePast        Tense = "past"
	TensePresent     Tense = "present"
	TenseFuture      Tense = "future"
	TenseProgressive Tense = "progressive"
	TenseUnknown     Tense = "unknown"
)

// GrammarSignature is the structural summary the analyzer extracts from a
// sentence. Only tense is tracked today.
type GrammarSignature struct {
	Tense Tense `json:"tense"`
}

// ValidationResult reports every check run against a generated question.
// All fields are always populated; acceptance is a separate policy (Accept).
type ValidationResult struct {
	StructureSimilarity float64 `json:"structure_similarity"`
	TenseMatch          bool    `json:"tense_match"`
	HasTranslation      bool    `json:"has_translation"`
	ItemsValid          bool    `json:"items_valid"`
}

// SimilarityThreshold is the minimum structural similarity a generated answer
// must score against its template to be accepted.
const SimilarityThreshold = 0.6

// Accept applies the acceptance policy: tense must match, similarity must
// clear the threshold, both translations must be present and the item list
// must round-trip to the answer. Full coherence (CheckCoherence) is
// intentionally not part of the gate.
func (r ValidationResult) Accept() bool {
	return r.TenseMatch &&
		r.StructureSimilarity >= SimilarityThreshold &&
		r.HasTranslation &&
		r.ItemsValid
}

// CoherenceResult reports question/answer coherence rule failures.
type CoherenceResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

// GeneratedSentence is the raw structured output of the generation
// collaborator, before segmentation and validation.
type GeneratedSentence struct {
	Question            string `json:"question"`
	Answer              string `json:"answer"`
	QuestionTranslation string `json:"question_translation"`
	AnswerTranslation   string `json:"answer_translation"`
}

// VocabEntry is one vocabulary word a generated sentence should exercise.
type VocabEntry struct {
	Korean  string `json:"korean"`
	English string `json:"english"`
}

// ProblemSetRequest asks for one generated question per vocabulary entry,
// patterned on the templates registered under Topic.
type ProblemSetRequest struct {
	Topic       string       `json:"topic"`
	Vocabulary  []VocabEntry `json:"vocabulary"`
	MaxAttempts int          `json:"max_attempts,omitempty"`
}

// ProblemSet is the outcome of one batch generation call. Skipped counts
// vocabulary entries that never passed validation; Duplicates counts accepted
// questions that collided with an earlier question/answer pair.
type ProblemSet struct {
	ID         string      `json:"id"`
	Topic      string      `json:"topic"`
	Problems   []*Question `json:"problems"`
	Skipped    int         `json:"skipped"`
	Duplicates int         `json:"duplicates"`
	CreatedAt  time.Time   `json:"created_at"`
}

func newID() string {
	return uuid.NewString()
}
