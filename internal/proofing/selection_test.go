package proofing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSingle(t *testing.T) {
	s := NewSelection(6)

	s.ToggleSingle("A")
	assert.Equal(t, []string{"A"}, s.IDs())

	// Clicking a different image replaces the selection.
	s.ToggleMember("B")
	s.ToggleSingle("C")
	assert.Equal(t, []string{"C"}, s.IDs())

	// Clicking the sole selected image clears the set.
	s.ToggleSingle("C")
	assert.Equal(t, 0, s.Len())
}

func TestToggleMember(t *testing.T) {
	s := NewSelection(6)

	s.ToggleMember("A")
	s.ToggleMember("B")
	assert.Equal(t, []string{"A", "B"}, s.IDs())

	s.ToggleMember("A")
	assert.Equal(t, []string{"B"}, s.IDs())
}

func TestExtendRangeInclusiveSpan(t *testing.T) {
	order := []string{"A", "B", "C", "D", "E"}

	// Last selection B, click target D: adds {B,C,D} without removing A.
	s := NewSelection(6)
	s.ToggleMember("A")
	s.ToggleMember("B")
	s.ExtendRange(order, "D")

	assert.Equal(t, []string{"A", "B", "C", "D"}, s.IDs())
}

func TestExtendRangeBackward(t *testing.T) {
	order := []string{"A", "B", "C", "D", "E"}

	s := NewSelection(6)
	s.ToggleMember("D")
	s.ExtendRange(order, "B")

	require.True(t, s.Contains("B"))
	require.True(t, s.Contains("C"))
	require.True(t, s.Contains("D"))
	assert.Equal(t, 3, s.Len())
}

func TestExtendRangeAnchorIsLastAdded(t *testing.T) {
	order := []string{"A", "B", "C", "D", "E"}

	// First selected is A, last added is C; the anchor must be C.
	s := NewSelection(6)
	s.ToggleMember("A")
	s.ToggleMember("C")
	s.ExtendRange(order, "E")

	assert.Equal(t, []string{"A", "C", "D", "E"}, s.IDs())
	assert.False(t, s.Contains("B"))
}

func TestExtendRangeEmptySelectionTogglesMembership(t *testing.T) {
	s := NewSelection(6)
	s.ExtendRange([]string{"A", "B"}, "B")
	assert.Equal(t, []string{"B"}, s.IDs())
}

func TestExtendRangeAnchorFilteredOut(t *testing.T) {
	// Anchor no longer visible under the active filter: degrade to toggle.
	s := NewSelection(6)
	s.ToggleMember("X")
	s.ExtendRange([]string{"A", "B", "C"}, "B")
	assert.Equal(t, []string{"X", "B"}, s.IDs())
}

func TestSelectionNeverExceedsLimit(t *testing.T) {
	order := []string{"A", "B", "C", "D", "E", "F", "G", "H"}

	s := NewSelection(3)
	s.ToggleMember("A")
	s.ExtendRange(order, "H")

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"A", "B", "C"}, s.IDs())

	// Further ctrl-clicks past the cap are silently ignored.
	s.ToggleMember("G")
	assert.Equal(t, 3, s.Len())

	// Interleaving single-select still respects the cap afterwards.
	s.ToggleSingle("H")
	s.ExtendRange(order, "A")
	assert.LessOrEqual(t, s.Len(), 3)
}

func TestSelectionUnbounded(t *testing.T) {
	order := make([]string, 50)
	for i := range order {
		order[i] = string(rune('0' + i%10))
	}
	s := NewSelection(0)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		s.ToggleMember(id)
	}
	assert.Equal(t, 8, s.Len())
}

func TestNewSelectionFromDedupsAndTruncates(t *testing.T) {
	s := NewSelectionFrom([]string{"A", "B", "A", "C", "D"}, 3)
	assert.Equal(t, []string{"A", "B", "C"}, s.IDs())
}

func TestClear(t *testing.T) {
	s := NewSelectionFrom([]string{"A", "B"}, 0)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}
