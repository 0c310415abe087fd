package koquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contents(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Content
	}
	return out
}

func TestToggleSplitsParticleCompound(t *testing.T) {
	seg := NewSegmenter(nil)

	items := []Item{
		{ID: "a", Content: "저는", CombineWithNext: false, OriginalWordIndex: 0},
		{ID: "b", Content: "가요.", CombineWithNext: false, OriginalWordIndex: 1},
	}
	toggled := seg.ToggleItem(items, 0)
	require.Len(t, toggled, 3)
	assert.Equal(t, []string{"저", "는", "가요."}, contents(toggled))
	assert.True(t, toggled[0].CombineWithNext)
	assert.False(t, toggled[1].CombineWithNext)
	assert.Equal(t, 0, toggled[0].OriginalWordIndex)
	assert.Equal(t, 0, toggled[1].OriginalWordIndex)
}

func TestToggleMergesWithinSameWord(t *testing.T) {
	seg := NewSegmenter(nil)

	items := seg.Segment("저는 가요.")
	require.Equal(t, []string{"저", "는", "가요."}, contents(items))

	merged := seg.ToggleItem(items, 0)
	require.Equal(t, []string{"저는", "가요."}, contents(merged))
	// merged item adopts the removed item's spacing flag
	assert.False(t, merged[0].CombineWithNext)
}

func TestToggleRefusesMergeAcrossWords(t *testing.T) {
	seg := NewSegmenter(nil)

	items := []Item{
		{Content: "빨리", CombineWithNext: false, OriginalWordIndex: 0},
		{Content: "가요.", CombineWithNext: false, OriginalWordIndex: 1},
	}
	toggled := seg.ToggleItem(items, 0)
	assert.Equal(t, contents(items), contents(toggled), "merge across source words must be refused")
}

func TestToggleMergeAllowedWithoutSourceWord(t *testing.T) {
	seg := NewSegmenter(nil)

	items := []Item{
		{Content: "빨리", CombineWithNext: false, OriginalWordIndex: NoSourceWord},
		{Content: "가요.", CombineWithNext: false, OriginalWordIndex: 1},
	}
	toggled := seg.ToggleItem(items, 0)
	assert.Equal(t, []string{"빨리가요."}, contents(toggled))
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	seg := NewSegmenter(nil)

	original := seg.Segment("저는 숙제를 끝냈어요.")

	// merge then split restores the content sequence
	merged := seg.ToggleItem(original, 0)
	require.NotEqual(t, contents(original), contents(merged))
	restored := seg.ToggleItem(merged, 0)
	assert.Equal(t, contents(original), contents(restored))

	// split then merge restores too
	compound := []Item{
		{Content: "숙제를", CombineWithNext: false, OriginalWordIndex: 0},
	}
	split := seg.ToggleItem(compound, 0)
	require.Equal(t, []string{"숙제", "를"}, contents(split))
	back := seg.ToggleItem(split, 0)
	assert.Equal(t, contents(compound), contents(back))
}

func TestToggleDoesNotMutateInput(t *testing.T) {
	seg := NewSegmenter(nil)

	items := seg.Segment("저는 가요.")
	before := contents(items)
	_ = seg.ToggleItem(items, 0)
	assert.Equal(t, before, contents(items))
}

func TestToggleOutOfRange(t *testing.T) {
	seg := NewSegmenter(nil)

	items := seg.Segment("가요.")
	assert.Equal(t, contents(items), contents(seg.ToggleItem(items, -1)))
	assert.Equal(t, contents(items), contents(seg.ToggleItem(items, 5)))
}

func TestToggleLastItemWithoutNeighborIsNoop(t *testing.T) {
	seg := NewSegmenter(nil)

	items := []Item{{Content: "가요.", CombineWithNext: false, OriginalWordIndex: 0}}
	assert.Equal(t, contents(items), contents(seg.ToggleItem(items, 0)))
}
