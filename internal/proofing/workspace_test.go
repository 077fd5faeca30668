package proofing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGalleryNavigationBounded(t *testing.T) {
	w := NewWorkspace()

	// No wraparound at either end.
	w.Prev(4)
	assert.Equal(t, 0, w.Index)
	assert.False(t, w.CanPrev(4))

	w.Next(4)
	w.Next(4)
	w.Next(4)
	assert.Equal(t, 3, w.Index)
	assert.False(t, w.CanNext(4))

	w.Next(4)
	assert.Equal(t, 3, w.Index)
}

func TestSlideshowAdvanceWrapsAround(t *testing.T) {
	// Four images, current index 3 (last), playing: next tick lands on 0.
	w := NewWorkspace()
	w.SetMode(ModeSlideshow, 4, 0)
	w.Index = 3
	w.Play(4)

	w.Advance(4, 1)

	assert.True(t, w.Playing)
	assert.Equal(t, 0, w.Index)

	// And backwards off the front wraps to the end.
	w.Advance(4, -1)
	assert.Equal(t, 3, w.Index)
}

func TestAdvanceNoopForTinySequences(t *testing.T) {
	for _, count := range []int{0, 1} {
		w := NewWorkspace()
		w.Advance(count, 1)
		assert.Equal(t, 0, w.Index, "count %d", count)
	}
}

func TestPlayRefusedForTinySequences(t *testing.T) {
	w := NewWorkspace()
	w.Play(1)
	assert.False(t, w.Playing)

	w.Play(2)
	assert.True(t, w.Playing)

	w.Pause()
	assert.False(t, w.Playing)
}

func TestCompareEnabled(t *testing.T) {
	testCases := []struct {
		selected int
		want     bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{6, true},
		{7, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, CompareEnabled(tc.selected), "selected %d", tc.selected)
	}
}

func TestSetModeCompareRequiresEligibleSelection(t *testing.T) {
	w := NewWorkspace()

	assert.False(t, w.SetMode(ModeCompare, 10, 1))
	assert.Equal(t, ModeGallery, w.Mode)

	assert.True(t, w.SetMode(ModeCompare, 10, 3))
	assert.Equal(t, ModeCompare, w.Mode)
}

func TestLeavingSlideshowStopsPlayback(t *testing.T) {
	w := NewWorkspace()
	w.SetMode(ModeSlideshow, 5, 0)
	w.Play(5)

	w.SetMode(ModeGallery, 5, 0)

	assert.False(t, w.Playing)
	assert.Equal(t, ModeGallery, w.Mode)
}

func TestClampIndexAfterFilterShrink(t *testing.T) {
	w := NewWorkspace()
	w.Index = 7

	w.ClampIndex(3)
	assert.Equal(t, 2, w.Index)

	w.ClampIndex(0)
	assert.Equal(t, 0, w.Index)
}
