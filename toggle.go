package koquiz

import "strings"

// ToggleItem is the editor transition for a clicked item. Two moves are tried
// in order:
//
//  1. Split: if the item's content ends in a lexicon particle and is strictly
//     longer than it, the item is replaced by a stem item (combining) plus a
//     particle item.
//  2. Merge: otherwise, if a next item exists and both items came from the
//     same source word (or either has no source word), the next item's content
//     is folded into the clicked one, which adopts the next item's spacing
//     flag.
//
// A merge across different source words is refused and the input returned
// unchanged. The returned slice is always a fresh copy; the input is never
// mutated. Repeated clicks on a particle-decomposable item alternate between
// its merged and split forms.
func (s *Segmenter) ToggleItem(items []Item, index int) []Item {
	if index < 0 || index >= len(items) {
		return items
	}
	cur := items[index]

	if particle, ok := s.lex.MatchTrailing(cur.Content); ok && len([]rune(cur.Content)) > len([]rune(particle)) {
		stem := strings.TrimSuffix(cur.Content, particle)
		out := make([]Item, 0, len(items)+1)
		out = append(out, items[:index]...)
		out = append(out,
			Item{ID: newID(), Content: stem, CombineWithNext: true, OriginalWordIndex: cur.OriginalWordIndex},
			Item{ID: newID(), Content: particle, CombineWithNext: false, OriginalWordIndex: cur.OriginalWordIndex},
		)
		out = append(out, items[index+1:]...)
		return out
	}

	if index+1 < len(items) {
		next := items[index+1]
		if cur.OriginalWordIndex != NoSourceWord && next.OriginalWordIndex != NoSourceWord &&
			cur.OriginalWordIndex != next.OriginalWordIndex {
			return items
		}
		merged := cur
		merged.Content = cur.Content + next.Content
		merged.CombineWithNext = next.CombineWithNext
		out := make([]Item, 0, len(items)-1)
		out = append(out, items[:index]...)
		out = append(out, merged)
		out = append(out, items[index+2:]...)
		return out
	}

	return items
}
