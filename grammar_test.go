package koquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTense(t *testing.T) {
	g := NewGrammarAnalyzer()

	tests := []struct {
		sentence string
		want     Tense
	}{
		{"저는 학교에 갔어요.", TensePast},
		{"저는 숙제를 끝냈어요.", TensePast},
		{"친구가 책을 읽었어요.", TensePast},
		{"저는 학교에 가요.", TensePresent},
		{"저는 가이드예요.", TensePresent},
		{"친구가 회사에서 일해요.", TensePresent},
		{"저는 학교에 갈 거예요.", TenseFuture},
		{"저는 친구를 만날 거예요.", TenseFuture},
		{"저는 책을 읽고 있어요.", TenseProgressive},
		{"안녕!", TenseUnknown},
	}
	for _, tc := range tests {
		got := g.Analyze(tc.sentence)
		assert.Equal(t, tc.want, got.Tense, "sentence %q", tc.sentence)
	}
}

func TestAnalyzeExistentialIsNotPast(t *testing.T) {
	g := NewGrammarAnalyzer()

	// 있/없 carry the same ㅆ final as the past infix but are present tense
	assert.Equal(t, TensePresent, g.Analyze("시간이 있어요.").Tense)
	assert.Equal(t, TensePresent, g.Analyze("시간이 없어요.").Tense)
}

func TestAnalyzePossessiveIsNotFuture(t *testing.T) {
	g := NewGrammarAnalyzer()

	// possessive 거 lacks the prospective ㄹ final before it
	assert.Equal(t, TensePresent, g.Analyze("이거는 제 거예요.").Tense)
}

func TestRuleOrderProgressiveBeforePast(t *testing.T) {
	g := NewGrammarAnalyzer()

	rules := g.Rules()
	progressive, past := -1, -1
	for i, r := range rules {
		switch r.Tense {
		case TenseProgressive:
			progressive = i
		case TensePast:
			past = i
		}
	}
	assert.GreaterOrEqual(t, past, 0)
	assert.GreaterOrEqual(t, progressive, 0)
	assert.Less(t, progressive, past, "progressive must be tested before past")
}
