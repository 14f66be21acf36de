package scene

// Selection is an ordered, duplicate-free set of object IDs.
type Selection struct {
	ids []ID
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Get returns a copy of the selected IDs in selection order.
func (s *Selection) Get() []ID {
	return append([]ID(nil), s.ids...)
}

// Set replaces the selection, dropping duplicates and empty IDs.
func (s *Selection) Set(ids []ID) {
	s.ids = s.ids[:0]
	for _, id := range ids {
		s.Add(id)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}

// Add appends id unless it is already selected.
func (s *Selection) Add(id ID) {
	if id == "" || s.Contains(id) {
		return
	}
	s.ids = append(s.ids, id)
}

// Remove deselects id.
func (s *Selection) Remove(id ID) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Toggle adds id if absent, removes it otherwise.
func (s *Selection) Toggle(id ID) {
	if s.Contains(id) {
		s.Remove(id)
		return
	}
	s.Add(id)
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id ID) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected IDs.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Equal reports whether the selection holds exactly ids, in any order.
func (s *Selection) Equal(ids []ID) bool {
	set := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
		set[id] = true
	}
	return len(set) == len(s.ids)
}
