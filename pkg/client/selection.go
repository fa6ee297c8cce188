package client

import "sort"

// Selection tracks which rows of a filtered view are checked. It is not safe
// for concurrent use; callers serialise access the way a UI event loop would.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips one id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if _, selected := s.ids[id]; selected {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SelectAll sets the selection to exactly the given filtered ids. If every
// one of them is already selected, it clears instead, so a header checkbox
// toggled twice lands back where it started.
func (s *Selection) SelectAll(filteredIDs []string) {
	if len(filteredIDs) > 0 && s.allSelected(filteredIDs) {
		s.Clear()
		return
	}
	s.ids = make(map[string]struct{}, len(filteredIDs))
	for _, id := range filteredIDs {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) allSelected(ids []string) bool {
	if len(s.ids) != len(ids) {
		return false
	}
	for _, id := range ids {
		if _, found := s.ids[id]; !found {
			return false
		}
	}
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, found := s.ids[id]
	return found
}

// Count returns the number of selected ids.
func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
