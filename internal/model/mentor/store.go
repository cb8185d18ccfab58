package mentor

import "strings"

// Store exposes mentor retrieval for handlers and the session service.
type Store interface {
	List() []Mentor
	FindByID(id string) (Mentor, bool)
	Search(query string) []Mentor
}

// MemoryStore implements Store over an immutable in-memory slice.
type MemoryStore struct {
	items []Mentor
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied mentors.
func NewMemoryStore(items []Mentor) *MemoryStore {
	copied := make([]Mentor, len(items))
	for i, item := range items {
		copied[i] = item.clone()
	}
	return &MemoryStore{items: copied}
}

// List returns the mentor directory.
func (s *MemoryStore) List() []Mentor {
	out := make([]Mentor, len(s.items))
	for i, item := range s.items {
		out[i] = item.clone()
	}
	return out
}

// FindByID looks up a mentor by identifier.
func (s *MemoryStore) FindByID(id string) (Mentor, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item.clone(), true
		}
	}
	return Mentor{}, false
}

// Search matches the query against name, role and expertise tags, ignoring case.
// An empty query returns the full directory.
func (s *MemoryStore) Search(query string) []Mentor {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return s.List()
	}

	out := make([]Mentor, 0, len(s.items))
	for _, item := range s.items {
		if item.matches(needle) {
			out = append(out, item.clone())
		}
	}
	return out
}

func (m Mentor) matches(needle string) bool {
	if strings.Contains(strings.ToLower(m.Name), needle) || strings.Contains(strings.ToLower(m.Role), needle) {
		return true
	}
	for _, tag := range m.Expertise {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// clone detaches the expertise slice so callers cannot mutate the catalog.
func (m Mentor) clone() Mentor {
	m.Expertise = append([]string(nil), m.Expertise...)
	return m
}
