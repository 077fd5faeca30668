package proofing

// Mode is the active presentation over the filtered image sequence.
type Mode string

const (
	ModeGallery   Mode = "gallery"
	ModeCompare   Mode = "compare"
	ModeSlideshow Mode = "slideshow"
)

// Compare mode needs at least two and at most six selected images.
const (
	CompareMin = 2
	CompareMax = 6
)

// ParseMode validates client-supplied mode input.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeGallery, ModeCompare, ModeSlideshow:
		return Mode(s), true
	}
	return "", false
}

// Workspace owns which image of the filtered sequence is current and which
// presentation mode is active. The sequence length is passed per call
// because the active filter changes it underneath the workspace.
type Workspace struct {
	Mode    Mode `json:"mode"`
	Index   int  `json:"index"`
	Playing bool `json:"playing"`
}

// NewWorkspace starts in gallery mode at the first image.
func NewWorkspace() *Workspace {
	return &Workspace{Mode: ModeGallery}
}

// ClampIndex pins the current index back into [0, count). Called after the
// filter changes shrink the sequence.
func (w *Workspace) ClampIndex(count int) {
	if count <= 0 {
		w.Index = 0
		return
	}
	if w.Index >= count {
		w.Index = count - 1
	}
	if w.Index < 0 {
		w.Index = 0
	}
}

// CanNext reports whether gallery-mode forward navigation is possible.
func (w *Workspace) CanNext(count int) bool { return w.Index < count-1 }

// CanPrev reports whether gallery-mode backward navigation is possible.
func (w *Workspace) CanPrev(count int) bool { return w.Index > 0 }

// Next advances one image, bounded at the end of the sequence.
func (w *Workspace) Next(count int) {
	if w.CanNext(count) {
		w.Index++
	}
}

// Prev steps back one image, bounded at the start of the sequence.
func (w *Workspace) Prev(count int) {
	if w.CanPrev(count) {
		w.Index--
	}
}

// Advance moves by step with wraparound at both ends. Slideshow navigation
// uses this; the auto-advance timer calls it with step 1. A sequence of one
// or zero images never moves.
func (w *Workspace) Advance(count, step int) {
	if count <= 1 {
		return
	}
	w.Index = ((w.Index+step)%count + count) % count
}

// Play starts slideshow auto-advance. Refused for sequences where advancing
// is a no-op anyway.
func (w *Workspace) Play(count int) {
	if count <= 1 {
		return
	}
	w.Playing = true
}

// Pause stops slideshow auto-advance.
func (w *Workspace) Pause() { w.Playing = false }

// SetMode switches presentation mode. Leaving slideshow always stops
// playback; entering compare requires an eligible selection.
func (w *Workspace) SetMode(mode Mode, count, selected int) bool {
	if mode == ModeCompare && !CompareEnabled(selected) {
		return false
	}
	if w.Mode == ModeSlideshow && mode != ModeSlideshow {
		w.Playing = false
	}
	w.Mode = mode
	w.ClampIndex(count)
	return true
}

// CompareEnabled reports whether a selection is eligible for compare mode.
func CompareEnabled(selected int) bool {
	return selected >= CompareMin && selected <= CompareMax
}
