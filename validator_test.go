package koquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeneratedQuestion(seg *Segmenter, question, answer string) *Question {
	return &Question{
		ID:                  newID(),
		Question:            question,
		QuestionTranslation: "q translation",
		Answer:              answer,
		AnswerTranslation:   "a translation",
		Items:               seg.Segment(answer),
	}
}

func TestValidateAcceptsFaithfulGeneration(t *testing.T) {
	seg := NewSegmenter(nil)
	v := NewValidator(nil)

	template := &Question{
		Question: "어디에 가요?",
		Answer:   "저는 학교에 가요.",
	}
	generated := newGeneratedQuestion(seg, "어디에 가요?", "저는 시장에 가요.")

	result := v.Validate(template, generated)
	assert.GreaterOrEqual(t, result.StructureSimilarity, 0.9)
	assert.True(t, result.TenseMatch)
	assert.True(t, result.HasTranslation)
	assert.True(t, result.ItemsValid)
	assert.True(t, result.Accept())
}

func TestValidateRejectsTenseMismatch(t *testing.T) {
	seg := NewSegmenter(nil)
	v := NewValidator(nil)

	template := &Question{
		Question: "어디에 가요?",
		Answer:   "저는 학교에 가요.",
	}
	generated := newGeneratedQuestion(seg, "어디에 갔어요?", "저는 학교에 갔어요.")

	result := v.Validate(template, generated)
	assert.False(t, result.TenseMatch)
	assert.False(t, result.Accept())
}

func TestValidateReportsAllChecks(t *testing.T) {
	seg := NewSegmenter(nil)
	v := NewValidator(nil)

	template := &Question{Answer: "저는 학교에 가요."}

	// missing translation AND broken items: both must be reported
	generated := newGeneratedQuestion(seg, "어디에 갔어요?", "저는 학교에 갔어요.")
	generated.AnswerTranslation = ""
	generated.Items = generated.Items[:len(generated.Items)-1]

	result := v.Validate(template, generated)
	assert.False(t, result.TenseMatch)
	assert.False(t, result.HasTranslation)
	assert.False(t, result.ItemsValid)
	assert.NotZero(t, result.StructureSimilarity)
}

func TestValidateItemsRoundTrip(t *testing.T) {
	seg := NewSegmenter(nil)
	v := NewValidator(nil)

	template := &Question{Answer: "저는 학교에 가요."}
	generated := newGeneratedQuestion(seg, "어디에 가요?", "저는 학교에 가요.")

	assert.True(t, v.Validate(template, generated).ItemsValid)

	generated.Items[0].Content = "나"
	assert.False(t, v.Validate(template, generated).ItemsValid)
}

func TestAcceptPolicyThreshold(t *testing.T) {
	base := ValidationResult{
		StructureSimilarity: SimilarityThreshold,
		TenseMatch:          true,
		HasTranslation:      true,
		ItemsValid:          true,
	}
	assert.True(t, base.Accept())

	low := base
	low.StructureSimilarity = SimilarityThreshold - 0.01
	assert.False(t, low.Accept())

	noTense := base
	noTense.TenseMatch = false
	assert.False(t, noTense.Accept())
}

func TestCheckCoherenceSubjectMarkersSubstitutable(t *testing.T) {
	v := NewValidator(nil)

	// 이 in the question, 는 in the answer: same class, no conflict
	result := v.CheckCoherence("이름이 뭐예요?", "저는 가이드예요.")
	assert.True(t, result.IsValid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestCheckCoherenceObjectMarkerMissing(t *testing.T) {
	v := NewValidator(nil)

	result := v.CheckCoherence("무슨 책을 읽었어요?", "저는 학교에 가요.")
	require.False(t, result.IsValid)

	found := false
	for _, e := range result.Errors {
		if e == "question uses an object marker (을/를) but the answer has none" {
			found = true
		}
	}
	assert.True(t, found, "expected object-marker error, got %v", result.Errors)
}

func TestCheckCoherenceUnrelatedVerbs(t *testing.T) {
	v := NewValidator(nil)

	result := v.CheckCoherence("무슨 책을 읽었어요?", "저는 밥을 먹었어요.")
	require.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "verbs 읽- and 먹- are unrelated")
}

func TestCheckCoherenceLocativeRoles(t *testing.T) {
	v := NewValidator(nil)

	// 에서 in question vs 에 in answer: mutually exclusive roles
	result := v.CheckCoherence("어디에서 일해요?", "저는 회사에 일해요.")
	assert.False(t, result.IsValid)

	// matching locatives are fine
	result = v.CheckCoherence("어디에서 일해요?", "저는 회사에서 일해요.")
	assert.True(t, result.IsValid, "errors: %v", result.Errors)
}

func TestCheckCoherenceJobTopic(t *testing.T) {
	v := NewValidator(nil)

	result := v.CheckCoherence("직업이 뭐예요?", "저는 가이드예요.")
	assert.True(t, result.IsValid, "errors: %v", result.Errors)

	result = v.CheckCoherence("직업이 뭐예요?", "저는 학교에 가요.")
	assert.False(t, result.IsValid)
}
