package koquiz

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// dedupRetries bounds how many times a duplicate question/answer pair is
// regenerated before the duplicate is accepted anyway. Batch completion wins
// over strict uniqueness.
const dedupRetries = 3

// DefaultMaxAttempts is the per-item validation retry budget when the request
// does not set one.
const DefaultMaxAttempts = 5

// GenerationExhaustedError reports that every attempt for one template/vocab
// pairing failed validation. The batch loop treats it as a per-item skip, not
// a batch failure.
type GenerationExhaustedError struct {
	TemplateID string
	Vocab      string
	Attempts   int
	LastResult ValidationResult
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted after %d attempts (template %s, vocab %s)",
		e.Attempts, e.TemplateID, e.Vocab)
}

// QuizGenerator drives the generate → segment → validate → accept-or-retry
// loop against a sentence generation collaborator.
type QuizGenerator struct {
	maker     SentenceGenerator
	seg       *Segmenter
	validator *Validator
	catalog   *Catalog
	logger    *LLMLogger
}

// NewQuizGenerator creates a generator over the given collaborator, with the
// default lexicon and the built-in template catalog.
func NewQuizGenerator(maker SentenceGenerator) *QuizGenerator {
	lex := DefaultLexicon()
	return &QuizGenerator{
		maker:     maker,
		seg:       NewSegmenter(lex),
		validator: NewValidator(lex),
		catalog:   DefaultCatalog(),
	}
}

// SetCatalog replaces the template catalog.
func (qg *QuizGenerator) SetCatalog(catalog *Catalog) {
	qg.catalog = catalog
}

// Catalog returns the template catalog in use.
func (qg *QuizGenerator) Catalog() *Catalog {
	return qg.catalog
}

// SetLogger attaches a trace logger for attempts, rejections and duplicates.
func (qg *QuizGenerator) SetLogger(logger *LLMLogger) {
	qg.logger = logger
	if sm, ok := qg.maker.(*OpenAISentenceMaker); ok {
		sm.SetLogger(logger)
	}
}

// GenerateValidated runs up to maxAttempts independent generation rounds for
// one template/vocab pairing and returns the first question that passes the
// acceptance policy. Attempts carry no state forward; collaborator errors
// count as failed attempts. On exhaustion it returns a
// *GenerationExhaustedError carrying the last validation result.
func (qg *QuizGenerator) GenerateValidated(ctx context.Context, template Template, vocab VocabEntry, maxAttempts int) (*Question, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	tplQuestion := template.asQuestion()

	var last ValidationResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		generated, err := qg.maker.Generate(ctx, template, vocab)
		if err != nil {
			VerboseLog("Attempt %d/%d for template %s failed: %v", attempt, maxAttempts, template.ID, err)
			if qg.logger != nil {
				qg.logger.LogAttempt(template.ID, attempt, fmt.Sprintf("collaborator error: %v", err))
			}
			continue
		}

		question := qg.buildQuestion(template, generated)
		result := qg.validator.Validate(tplQuestion, question)
		if result.Accept() {
			if qg.logger != nil {
				qg.logger.LogAttempt(template.ID, attempt, "accepted")
			}
			return question, nil
		}

		last = result
		VerboseLog("Attempt %d/%d for template %s rejected: similarity=%.2f tense=%v items=%v translation=%v",
			attempt, maxAttempts, template.ID,
			result.StructureSimilarity, result.TenseMatch, result.ItemsValid, result.HasTranslation)
		if qg.logger != nil {
			qg.logger.LogAttempt(template.ID, attempt, fmt.Sprintf(
				"rejected: similarity=%.2f tense_match=%v items_valid=%v has_translation=%v",
				result.StructureSimilarity, result.TenseMatch, result.ItemsValid, result.HasTranslation))
		}
	}

	return nil, &GenerationExhaustedError{
		TemplateID: template.ID,
		Vocab:      vocab.Korean,
		Attempts:   maxAttempts,
		LastResult: last,
	}
}

// GenerateProblemSet produces one validated question per vocabulary entry.
// Templates already used in this batch are avoided while unused ones remain;
// accepted questions are deduplicated against a session-scoped
// "question|answer" key set with up to dedupRetries regenerations, after
// which the duplicate is accepted and counted. Entries whose retry budget is
// exhausted are skipped; only structurally invalid input fails the batch.
func (qg *QuizGenerator) GenerateProblemSet(ctx context.Context, req ProblemSetRequest) (*ProblemSet, error) {
	if len(req.Vocabulary) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	templates, ok := qg.catalog.Lookup(req.Topic)
	if !ok || len(templates) == 0 {
		return nil, fmt.Errorf("no templates registered for topic %q", req.Topic)
	}

	set := &ProblemSet{
		ID:        newID(),
		Topic:     req.Topic,
		CreatedAt: time.Now(),
	}

	// Both maps live only for this batch call.
	usedTemplates := make(map[string]*Question)
	seen := make(map[string]bool)

	for i, vocab := range req.Vocabulary {
		template := pickTemplate(templates, usedTemplates, i)

		question, err := qg.GenerateValidated(ctx, template, vocab, req.MaxAttempts)
		if err != nil {
			set.Skipped++
			VerboseLog("Skipping vocab %s: %v", vocab.Korean, err)
			if qg.logger != nil {
				qg.logger.LogSkip(vocab.Korean, err)
			}
			continue
		}

		key := dedupKey(question)
		for retry := 0; seen[key] && retry < dedupRetries; retry++ {
			VerboseLog("Duplicate question for vocab %s, regenerating (%d/%d)", vocab.Korean, retry+1, dedupRetries)
			regenerated, err := qg.GenerateValidated(ctx, template, vocab, req.MaxAttempts)
			if err != nil {
				break
			}
			question = regenerated
			key = dedupKey(question)
		}
		if seen[key] {
			// duplicate retained rather than dropping the vocab entry
			set.Duplicates++
			if qg.logger != nil {
				qg.logger.LogDuplicate(question.ID, key)
			}
		}

		seen[key] = true
		usedTemplates[template.ID] = question
		set.Problems = append(set.Problems, question)
	}

	return set, nil
}

// pickTemplate prefers a template not yet used in this batch, falling back to
// cycling through the list once all have been used.
func pickTemplate(templates []Template, used map[string]*Question, i int) Template {
	for _, t := range templates {
		if _, ok := used[t.ID]; !ok {
			return t
		}
	}
	return templates[i%len(templates)]
}

func (qg *QuizGenerator) buildQuestion(template Template, generated *GeneratedSentence) *Question {
	answer := strings.TrimSpace(generated.Answer)
	return &Question{
		ID:                  newID(),
		TemplateID:          template.ID,
		GrammarName:         template.GrammarName,
		Question:            strings.TrimSpace(generated.Question),
		QuestionTranslation: strings.TrimSpace(generated.QuestionTranslation),
		Answer:              answer,
		AnswerTranslation:   strings.TrimSpace(generated.AnswerTranslation),
		Items:               qg.seg.Segment(answer),
		CreatedAt:           time.Now(),
	}
}

func dedupKey(q *Question) string {
	return q.Question + "|" + q.Answer
}

func (t Template) asQuestion() *Question {
	return &Question{
		ID:                  t.ID,
		Question:            t.Question,
		QuestionTranslation: t.QuestionTranslation,
		Answer:              t.Answer,
		AnswerTranslation:   t.AnswerTranslation,
		GrammarName:         t.GrammarName,
	}
}
