package proofing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(ratings ...Rating) []ImageRef {
	out := make([]ImageRef, len(ratings))
	for i, r := range ratings {
		out[i] = ImageRef{ID: fmt.Sprintf("img-%d", i+1), Rating: r}
	}
	return out
}

func TestNormalizeRating(t *testing.T) {
	testCases := []struct {
		in   Rating
		want Rating
	}{
		{RatingYes, RatingYes},
		{RatingMaybe, RatingMaybe},
		{RatingNo, RatingNo},
		{RatingUnrated, RatingUnrated},
		{"", RatingUnrated},
		{"garbage", RatingUnrated},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, NormalizeRating(tc.in), "input %q", tc.in)
	}
}

func TestParseRating(t *testing.T) {
	for _, valid := range []string{"yes", "maybe", "no", "unrated"} {
		r, err := ParseRating(valid)
		require.NoError(t, err)
		assert.Equal(t, Rating(valid), r)
	}
	for _, invalid := range []string{"", "YES", "favorite", "all"} {
		_, err := ParseRating(invalid)
		assert.Error(t, err, "input %q", invalid)
	}
}

func TestFilterAllReturnsOriginalOrder(t *testing.T) {
	images := refs(RatingYes, RatingNo, "", RatingMaybe, RatingUnrated)

	got := Filter(images, FilterAll)

	require.Equal(t, images, got)
	// Must be a fresh slice, not a view of the input.
	got[0].Rating = RatingNo
	assert.Equal(t, RatingYes, images[0].Rating)
}

func TestFilterUnratedMatchesEmptyRating(t *testing.T) {
	images := refs(RatingYes, "", RatingUnrated, RatingNo)

	got := Filter(images, FilterUnrated)

	require.Len(t, got, 2)
	assert.Equal(t, "img-2", got[0].ID)
	assert.Equal(t, "img-3", got[1].ID)
}

func TestFilterIsStable(t *testing.T) {
	images := refs(RatingMaybe, RatingYes, RatingMaybe, RatingMaybe)

	got := Filter(images, FilterMaybe)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"img-1", "img-3", "img-4"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestCountsMatchesFilterLengths(t *testing.T) {
	images := refs(RatingYes, RatingNo, "", RatingMaybe, RatingUnrated, RatingYes, RatingNo, RatingNo)

	counts := Counts(images)

	for _, tag := range FilterTags {
		assert.Equal(t, len(Filter(images, tag)), counts[tag], "tag %q", tag)
	}
}

func TestNextRatingPlainPath(t *testing.T) {
	testCases := []struct {
		current Rating
		clicked Rating
		want    Rating
	}{
		{RatingUnrated, RatingYes, RatingYes},
		{RatingMaybe, RatingNo, RatingNo},
		{RatingYes, RatingYes, RatingYes},
		{"", RatingMaybe, RatingMaybe},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, NextRating(tc.current, tc.clicked, false), "current %q clicked %q", tc.current, tc.clicked)
	}
}

func TestNextRatingTogglePath(t *testing.T) {
	testCases := []struct {
		current Rating
		clicked Rating
		want    Rating
	}{
		{RatingYes, RatingYes, RatingUnrated},
		{RatingMaybe, RatingMaybe, RatingUnrated},
		{RatingYes, RatingNo, RatingNo},
		{RatingUnrated, RatingMaybe, RatingMaybe},
		{"", RatingUnrated, RatingUnrated},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, NextRating(tc.current, tc.clicked, true), "current %q clicked %q", tc.current, tc.clicked)
	}
}

func TestCountsMixedRatings(t *testing.T) {
	// Gallery rated [yes, no, unrated, maybe, unrated].
	images := refs(RatingYes, RatingNo, RatingUnrated, RatingMaybe, RatingUnrated)

	counts := Counts(images)

	assert.Equal(t, 5, counts[FilterAll])
	assert.Equal(t, 1, counts[FilterYes])
	assert.Equal(t, 1, counts[FilterMaybe])
	assert.Equal(t, 1, counts[FilterNo])
	assert.Equal(t, 2, counts[FilterUnrated])
}

func TestBucketsPartitionTheGallery(t *testing.T) {
	images := refs(RatingYes, "", RatingNo, RatingMaybe, RatingUnrated, RatingYes)

	counts := Counts(images)

	sum := counts[FilterYes] + counts[FilterMaybe] + counts[FilterNo] + counts[FilterUnrated]
	assert.Equal(t, counts[FilterAll], sum)

	// Each image falls into exactly one non-all bucket.
	for _, img := range images {
		matched := 0
		for _, tag := range []FilterTag{FilterYes, FilterMaybe, FilterNo, FilterUnrated} {
			if tag.Matches(img.Rating) {
				matched++
			}
		}
		assert.Equal(t, 1, matched, "image %s", img.ID)
	}
}
