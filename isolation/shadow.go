package isolation

import (
	"encoding/json"
	"slices"
)

// Shadow is a copy-on-write view over a cached object.
// Reads fall through to the original unless the field was overwritten or deleted on the shadow;
// writes only touch the shadow. Values read through Get are the original nested references,
// so mutating them still mutates the cache.
type Shadow struct {
	base    map[string]any
	overlay map[string]any
	deleted map[string]struct{}
}

// NewShadow does not copy base; overlay maps are allocated on first write.
func NewShadow(base map[string]any) *Shadow {
	return &Shadow{base: base}
}

func (s *Shadow) Get(field string) (any, bool) {
	if v, ok := s.overlay[field]; ok {
		return v, true
	}
	if _, ok := s.deleted[field]; ok {
		return nil, false
	}
	v, ok := s.base[field]
	return v, ok
}

func (s *Shadow) Has(field string) bool {
	_, ok := s.Get(field)
	return ok
}

func (s *Shadow) Set(field string, v any) {
	if s.overlay == nil {
		s.overlay = make(map[string]any)
	}
	s.overlay[field] = v
	delete(s.deleted, field)
}

func (s *Shadow) Delete(field string) {
	delete(s.overlay, field)
	if _, ok := s.base[field]; ok {
		if s.deleted == nil {
			s.deleted = make(map[string]struct{})
		}
		s.deleted[field] = struct{}{}
	}
}

// Dirty reports whether the shadow diverged from the original.
func (s *Shadow) Dirty() bool {
	return len(s.overlay) > 0 || len(s.deleted) > 0
}

func (s *Shadow) Len() int {
	n := len(s.base) - len(s.deleted)
	for field := range s.overlay {
		if _, ok := s.base[field]; !ok {
			n++
		}
	}
	return n
}

// Keys returns the visible fields in sorted order.
func (s *Shadow) Keys() []string {
	keys := make([]string, 0, s.Len())
	for field := range s.base {
		if _, gone := s.deleted[field]; gone {
			continue
		}
		if _, over := s.overlay[field]; over {
			continue
		}
		keys = append(keys, field)
	}
	for field := range s.overlay {
		keys = append(keys, field)
	}
	slices.Sort(keys)
	return keys
}

// Map flattens the shadow into a new top-level map. Nested values are still shared.
func (s *Shadow) Map() map[string]any {
	out := make(map[string]any, s.Len())
	for field, v := range s.base {
		if _, gone := s.deleted[field]; !gone {
			out[field] = v
		}
	}
	for field, v := range s.overlay {
		out[field] = v
	}
	return out
}

func (s *Shadow) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}
