package koquiz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedMaker returns canned sentences keyed by vocabulary word, cycling
// through the list for that word on successive calls.
type scriptedMaker struct {
	responses map[string][]*GeneratedSentence
	errs      map[string]error
	calls     map[string]int
}

func newScriptedMaker() *scriptedMaker {
	return &scriptedMaker{
		responses: make(map[string][]*GeneratedSentence),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (m *scriptedMaker) script(vocab string, sentences ...*GeneratedSentence) {
	m.responses[vocab] = sentences
}

func (m *scriptedMaker) Generate(_ context.Context, _ Template, vocab VocabEntry) (*GeneratedSentence, error) {
	m.calls[vocab.Korean]++
	if err, ok := m.errs[vocab.Korean]; ok {
		return nil, err
	}
	list := m.responses[vocab.Korean]
	if len(list) == 0 {
		return nil, fmt.Errorf("no scripted response for %s", vocab.Korean)
	}
	i := (m.calls[vocab.Korean] - 1) % len(list)
	return list[i], nil
}

func goodSentence(noun string) *GeneratedSentence {
	return &GeneratedSentence{
		Question:            "어디에 가요?",
		Answer:              fmt.Sprintf("저는 %s에 가요.", noun),
		QuestionTranslation: "Where are you going?",
		AnswerTranslation:   "I am going somewhere.",
	}
}

func pastSentence() *GeneratedSentence {
	return &GeneratedSentence{
		Question:            "어디에 갔어요?",
		Answer:              "저는 학교에 갔어요.",
		QuestionTranslation: "Where did you go?",
		AnswerTranslation:   "I went to school.",
	}
}

func locationCatalog() *Catalog {
	c := NewCatalog()
	c.Register("location", Template{
		ID: "loc", Topic: "location", GrammarName: "N에 가다",
		Question: "어디에 가요?", QuestionTranslation: "Where are you going?",
		Answer: "저는 학교에 가요.", AnswerTranslation: "I am going to school.",
	})
	return c
}

func TestGenerateValidatedAcceptsFirstGoodAttempt(t *testing.T) {
	maker := newScriptedMaker()
	maker.script("시장", goodSentence("시장"))

	qg := NewQuizGenerator(maker)
	qg.SetCatalog(locationCatalog())

	templates, _ := qg.Catalog().Lookup("location")
	q, err := qg.GenerateValidated(context.Background(), templates[0], VocabEntry{Korean: "시장"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "저는 시장에 가요.", q.Answer)
	assert.Equal(t, "loc", q.TemplateID)
	assert.Equal(t, q.Answer, Reconstruct(q.Items))
	assert.Equal(t, 1, maker.calls["시장"])
}

func TestGenerateValidatedRetriesThenAccepts(t *testing.T) {
	maker := newScriptedMaker()
	// wrong tense twice, then a good one
	maker.script("시장", pastSentence(), pastSentence(), goodSentence("시장"))

	qg := NewQuizGenerator(maker)
	qg.SetCatalog(locationCatalog())

	templates, _ := qg.Catalog().Lookup("location")
	q, err := qg.GenerateValidated(context.Background(), templates[0], VocabEntry{Korean: "시장"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "저는 시장에 가요.", q.Answer)
	assert.Equal(t, 3, maker.calls["시장"])
}

func TestGenerateValidatedExhaustion(t *testing.T) {
	maker := newScriptedMaker()
	maker.script("시장", pastSentence())

	qg := NewQuizGenerator(maker)
	qg.SetCatalog(locationCatalog())

	templates, _ := qg.Catalog().Lookup("location")
	_, err := qg.GenerateValidated(context.Background(), templates[0], VocabEntry{Korean: "시장"}, 4)
	require.Error(t, err)

	var exhausted *GenerationExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Equal(t, "loc", exhausted.TemplateID)
	assert.False(t, exhausted.LastResult.TenseMatch)
	assert.Equal(t, 4, maker.calls["시장"])
}

func TestGenerateValidatedCollaboratorErrorsCountAsAttempts(t *testing.T) {
	maker := newScriptedMaker()
	maker.errs["시장"] = errors.New("boom")

	qg := NewQuizGenerator(maker)
	qg.SetCatalog(locationCatalog())

	templates, _ := qg.Catalog().Lookup("location")
	_, err := qg.GenerateValidated(context.Background(), templates[0], VocabEntry{Korean: "시장"}, 3)

	var exhausted *GenerationExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, maker.calls["시장"])
}

func TestGenerateProblemSetPartialFailure(t *testing.T) {
	maker := newScriptedMaker()
	maker.script("시장", goodSentence("시장"))
	maker.script("병원", pastSentence()) // never passes tense check
	maker.script("공원", goodSentence("공원"))

	qg := NewQuizGenerator(maker)
	qg.SetCatalog(locationCatalog())

	set, err := qg.GenerateProblemSet(context.Background(), ProblemSetRequest{
		Topic: "location",
		Vocabulary: []VocabEntry{
			{Korean: "시장"}, {Korean: "병원"}, {Korean: "공원"},
		},
		MaxAttempts: 3,
	})
	require.NoError(t, err, "one failing entry must not abort the batch")
	assert.Len(t, set.Problems, 2)
	assert.Equal(t, 1, set.Skipped)
	assert.Zero(t, set.Duplicates)
}

func TestGenerateProblemSetDeduplication(t *testing.T) {
	maker := newScriptedMaker()
	// both entries always produce the identical pair
	maker.script("시장", goodSentence("시장"))
	maker.script("시장2", goodSentence("시장"))

	qg := NewQuizGenerator(maker)
	qg.SetCatalog(locationCatalog())

	set, err := qg.GenerateProblemSet(context.Background(), ProblemSetRequest{
		Topic:      "location",
		Vocabulary: []VocabEntry{{Korean: "시장"}, {Korean: "시장2"}},
	})
	require.NoError(t, err)

	// the duplicate is accepted after the dedup retry bound, not dropped
	assert.Len(t, set.Problems, 2)
	assert.Equal(t, 1, set.Duplicates)
	// 1 original call + 1 accepted + dedupRetries regenerations
	assert.Equal(t, 1+dedupRetries, maker.calls["시장2"])
}

func TestGenerateProblemSetEmptyVocabulary(t *testing.T) {
	qg := NewQuizGenerator(newScriptedMaker())

	_, err := qg.GenerateProblemSet(context.Background(), ProblemSetRequest{Topic: "location"})
	assert.Error(t, err)
}

func TestGenerateProblemSetUnknownTopic(t *testing.T) {
	qg := NewQuizGenerator(newScriptedMaker())
	qg.SetCatalog(NewCatalog())

	_, err := qg.GenerateProblemSet(context.Background(), ProblemSetRequest{
		Topic:      "missing",
		Vocabulary: []VocabEntry{{Korean: "시장"}},
	})
	assert.Error(t, err)
}
