package koquiz

import (
	"sort"
	"sync"
)

// Template is a pre-authored question/answer pair used as the structural
// pattern for generation.
type Template struct {
	ID                  string `json:"id"`
	Topic               string `json:"topic"`
	GrammarName         string `json:"grammar_name,omitempty"`
	Question            string `json:"question"`
	QuestionTranslation string `json:"question_translation"`
	Answer              string `json:"answer"`
	AnswerTranslation   string `json:"answer_translation"`
}

// Catalog is a typed registry of templates keyed by topic id. It replaces
// runtime introspection of loaded modules with an explicit lookup.
type Catalog struct {
	mu     sync.RWMutex
	topics map[string][]Template
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{topics: make(map[string][]Template)}
}

// Register appends templates under a topic id.
func (c *Catalog) Register(topic string, templates ...Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = append(c.topics[topic], templates...)
}

// Lookup returns the templates registered under a topic id.
func (c *Catalog) Lookup(topic string) ([]Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	templates, ok := c.topics[topic]
	if !ok {
		return nil, false
	}
	out := make([]Template, len(templates))
	copy(out, templates)
	return out, true
}

// Topics returns the registered topic ids, sorted.
func (c *Catalog) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DefaultCatalog returns a catalog seeded with the built-in grammar topics.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Register("self-introduction",
		Template{
			ID: "intro-name", Topic: "self-introduction", GrammarName: "N이/가 뭐예요?",
			Question: "이름이 뭐예요?", QuestionTranslation: "What is your name?",
			Answer: "저는 민수예요.", AnswerTranslation: "I am Minsu.",
		},
		Template{
			ID: "intro-job", Topic: "self-introduction", GrammarName: "직업 묻기",
			Question: "직업이 뭐예요?", QuestionTranslation: "What is your job?",
			Answer: "저는 가이드예요.", AnswerTranslation: "I am a guide.",
		},
	)
	c.Register("daily-past",
		Template{
			ID: "past-homework", Topic: "daily-past", GrammarName: "V-았/었어요",
			Question: "어제 뭐 했어요?", QuestionTranslation: "What did you do yesterday?",
			Answer: "저는 숙제를 끝냈어요.", AnswerTranslation: "I finished my homework.",
		},
		Template{
			ID: "past-book", Topic: "daily-past", GrammarName: "V-았/었어요",
			Question: "무슨 책을 읽었어요?", QuestionTranslation: "What book did you read?",
			Answer: "저는 한국어 책을 읽었어요.", AnswerTranslation: "I read a Korean book.",
		},
	)
	c.Register("location",
		Template{
			ID: "loc-school", Topic: "location", GrammarName: "N에 가다",
			Question: "어디에 가요?", QuestionTranslation: "Where are you going?",
			Answer: "저는 학교에 가요.", AnswerTranslation: "I am going to school.",
		},
		Template{
			ID: "loc-work", Topic: "location", GrammarName: "N에서 V",
			Question: "어디에서 일해요?", QuestionTranslation: "Where do you work?",
			Answer: "저는 회사에서 일해요.", AnswerTranslation: "I work at a company.",
		},
	)
	c.Register("future-plan",
		Template{
			ID: "future-friend", Topic: "future-plan", GrammarName: "V-(으)ㄹ 거예요",
			Question: "내일 뭐 할 거예요?", QuestionTranslation: "What will you do tomorrow?",
			Answer: "저는 친구를 만날 거예요.", AnswerTranslation: "I will meet a friend.",
		},
	)
	return c
}
