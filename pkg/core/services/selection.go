package services

import "sort"

// TagSelection is a set of selected tag names. Tags are selected by name,
// not id.
type TagSelection struct {
	names map[string]struct{}
}

func NewTagSelection(names ...string) *TagSelection {
	s := &TagSelection{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// Toggle adds name if absent and removes it if present. It reports whether
// name is selected afterwards.
func (s *TagSelection) Toggle(name string) bool {
	if _, ok := s.names[name]; ok {
		delete(s.names, name)
		return false
	}
	s.names[name] = struct{}{}
	return true
}

func (s *TagSelection) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s *TagSelection) Clear() {
	s.names = make(map[string]struct{})
}

func (s *TagSelection) Len() int {
	return len(s.names)
}

// Names returns the selection sorted, so equal sets compare equal.
func (s *TagSelection) Names() []string {
	if len(s.names) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
