package proofing

import "fmt"

// Rating is the proofing tag a client attaches to an image.
type Rating string

const (
	RatingYes     Rating = "yes"
	RatingMaybe   Rating = "maybe"
	RatingNo      Rating = "no"
	RatingUnrated Rating = "unrated"
)

// NormalizeRating maps an absent or unknown rating to "unrated".
// Stored rows predating the rating column come back empty.
func NormalizeRating(r Rating) Rating {
	switch r {
	case RatingYes, RatingMaybe, RatingNo:
		return r
	default:
		return RatingUnrated
	}
}

// NextRating resolves the rating a click produces. The plain path is
// idempotent: re-applying the current rating keeps it. With toggle set
// (the compact-control path), clicking the already-active rating flips
// the image back to unrated.
func NextRating(current, clicked Rating, toggle bool) Rating {
	if toggle && NormalizeRating(current) == clicked {
		return RatingUnrated
	}
	return clicked
}

// ParseRating validates client-supplied rating input.
func ParseRating(s string) (Rating, error) {
	switch Rating(s) {
	case RatingYes, RatingMaybe, RatingNo, RatingUnrated:
		return Rating(s), nil
	}
	return "", fmt.Errorf("invalid rating %q: must be one of yes, maybe, no, unrated", s)
}

// FilterTag selects a visible subset of a gallery.
type FilterTag string

const (
	FilterAll     FilterTag = "all"
	FilterYes     FilterTag = "yes"
	FilterMaybe   FilterTag = "maybe"
	FilterNo      FilterTag = "no"
	FilterUnrated FilterTag = "unrated"
)

// FilterTags lists every tag in display order.
var FilterTags = []FilterTag{FilterAll, FilterYes, FilterMaybe, FilterNo, FilterUnrated}

// ParseFilterTag validates client-supplied filter input.
func ParseFilterTag(s string) (FilterTag, error) {
	switch FilterTag(s) {
	case FilterAll, FilterYes, FilterMaybe, FilterNo, FilterUnrated:
		return FilterTag(s), nil
	}
	return "", fmt.Errorf("invalid filter %q: must be one of all, yes, maybe, no, unrated", s)
}

// ImageRef is the proofing view of an image record. Services map their
// storage rows onto it so storage field names never reach this package.
type ImageRef struct {
	ID     string `json:"id"`
	Rating Rating `json:"rating"`
}

// Matches reports whether an image falls into the tag's bucket.
// "unrated" matches both empty and explicit unrated ratings.
func (t FilterTag) Matches(r Rating) bool {
	switch t {
	case FilterAll:
		return true
	case FilterUnrated:
		return NormalizeRating(r) == RatingUnrated
	default:
		return Rating(t) == r
	}
}

// Filter returns the images matching tag, preserving input order.
// The input slice is never mutated; the result is always a fresh slice.
func Filter(images []ImageRef, tag FilterTag) []ImageRef {
	out := make([]ImageRef, 0, len(images))
	for _, img := range images {
		if tag.Matches(img.Rating) {
			out = append(out, img)
		}
	}
	return out
}

// Counts returns per-tag bucket sizes, recomputed from scratch. Galleries
// are small (tens to low hundreds of images), so no incremental upkeep.
func Counts(images []ImageRef) map[FilterTag]int {
	counts := map[FilterTag]int{
		FilterAll:     len(images),
		FilterYes:     0,
		FilterMaybe:   0,
		FilterNo:      0,
		FilterUnrated: 0,
	}
	for _, img := range images {
		counts[FilterTag(NormalizeRating(img.Rating))]++
	}
	return counts
}
