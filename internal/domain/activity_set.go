package domain

import "encoding/json"

// ActivitySet keeps distinct labels in order of first insertion.
type ActivitySet struct {
	labels []string
	index  map[string]struct{}
}

func NewActivitySet(labels ...string) ActivitySet {
	var s ActivitySet
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add appends label unless it is already present and reports whether it was added.
func (s *ActivitySet) Add(label string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[label]; ok {
		return false
	}
	s.index[label] = struct{}{}
	s.labels = append(s.labels, label)
	return true
}

func (s ActivitySet) Contains(label string) bool {
	_, ok := s.index[label]
	return ok
}

func (s ActivitySet) Len() int {
	return len(s.labels)
}

func (s ActivitySet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s ActivitySet) Clone() ActivitySet {
	return NewActivitySet(s.labels...)
}

func (s ActivitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Labels())
}

func (s *ActivitySet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewActivitySet(labels...)
	return nil
}
