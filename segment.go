package koquiz

import "strings"

// Segmenter splits Korean sentences into drag-and-drop items using a particle
// lexicon, and implements the interactive merge/split editing over those items.
type Segmenter struct {
	lex *Lexicon
}

// NewSegmenter creates a segmenter. A nil lexicon means DefaultLexicon.
func NewSegmenter(lex *Lexicon) *Segmenter {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Segmenter{lex: lex}
}

// Lexicon returns the lexicon the segmenter matches against.
func (s *Segmenter) Lexicon() *Lexicon {
	return s.lex
}

// Segment splits a sentence into items. Each whitespace-delimited word either
// becomes a stem item (CombineWithNext true) followed by a particle item, or a
// single whole-word item when no particle matches. Items carry the index of
// the source word they came from. The final item never combines with a next.
func (s *Segmenter) Segment(sentence string) []Item {
	words := strings.Fields(sentence)
	items := make([]Item, 0, len(words)*2)
	for i, word := range words {
		if particle, ok := s.lex.MatchTrailing(word); ok {
			stem := strings.TrimSuffix(word, particle)
			items = append(items,
				Item{ID: newID(), Content: stem, CombineWithNext: true, OriginalWordIndex: i},
				Item{ID: newID(), Content: particle, CombineWithNext: false, OriginalWordIndex: i},
			)
			continue
		}
		items = append(items, Item{ID: newID(), Content: word, CombineWithNext: false, OriginalWordIndex: i})
	}
	if n := len(items); n > 0 {
		// safety net: a sentence never ends mid-compound
		items[n-1].CombineWithNext = false
	}
	return items
}

// Reconstruct is the inverse of Segment: item contents joined in order, with a
// single space after every item whose CombineWithNext is false, except the
// last. For items produced by Segment this returns the original sentence.
func Reconstruct(items []Item) string {
	var sb strings.Builder
	for i, it := range items {
		sb.WriteString(it.Content)
		if !it.CombineWithNext && i < len(items)-1 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
