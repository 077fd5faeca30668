package proofing

// Selection is the working set of images chosen for compare or bulk
// operations. Membership is ordered by selection time and duplicate-free.
// One policy applies everywhere: a plain click replaces the selection, a
// ctrl-click toggles membership, a shift-click extends a range from the
// last-added entry.
type Selection struct {
	ids   []string
	limit int
}

// NewSelection creates an empty selection. limit caps membership;
// 0 means unbounded (bulk-rating sessions).
func NewSelection(limit int) *Selection {
	return &Selection{limit: limit}
}

// NewSelectionFrom restores a selection from a stored id list,
// dropping duplicates and anything beyond the limit.
func NewSelectionFrom(ids []string, limit int) *Selection {
	s := &Selection{limit: limit}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Selection) add(id string) bool {
	if s.Contains(id) {
		return false
	}
	if s.limit > 0 && len(s.ids) >= s.limit {
		// At capacity: extra adds are silently ignored.
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

func (s *Selection) remove(id string) {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// ToggleSingle handles a plain click: selecting the sole selected image
// clears the set, anything else replaces the set with that image.
func (s *Selection) ToggleSingle(id string) {
	if len(s.ids) == 1 && s.ids[0] == id {
		s.ids = nil
		return
	}
	s.ids = []string{id}
}

// ToggleMember handles a ctrl-click: add if absent, remove if present.
func (s *Selection) ToggleMember(id string) {
	if s.Contains(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// ExtendRange handles a shift-click. order is the gallery's current visible
// ordering. The anchor is the last-added entry; every image in the inclusive
// span between anchor and target that is not already selected is added, in
// order. Nothing is ever removed in range mode. With an empty selection, or
// when anchor or target are not in the ordering, this degrades to a
// membership toggle.
func (s *Selection) ExtendRange(order []string, id string) {
	if len(s.ids) == 0 {
		s.ToggleMember(id)
		return
	}
	anchor := s.ids[len(s.ids)-1]
	ai, ti := -1, -1
	for i, o := range order {
		if o == anchor {
			ai = i
		}
		if o == id {
			ti = i
		}
	}
	if ai < 0 || ti < 0 {
		s.ToggleMember(id)
		return
	}
	step := 1
	if ti < ai {
		step = -1
	}
	for i := ai; ; i += step {
		s.add(order[i])
		if i == ti {
			break
		}
	}
}

// Clear empties the selection. Callers confirming destructive bulk actions
// are expected to prompt before invoking this on a non-empty set.
func (s *Selection) Clear() {
	s.ids = nil
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Contains reports membership.
func (s *Selection) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected images.
func (s *Selection) Len() int { return len(s.ids) }

// Limit returns the configured membership cap (0 = unbounded).
func (s *Selection) Limit() int { return s.limit }
