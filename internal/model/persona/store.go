package persona

import "github.com/elliotchance/pie/v2"

// Store exposes persona retrieval for HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore keeps the fixed companion list in memory.
type MemoryStore struct {
	items []Persona
}

func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	idx := pie.FindFirstUsing(s.items, func(p Persona) bool { return p.ID == id })
	if idx < 0 {
		return Persona{}, false
	}
	return s.items[idx], true
}

// Resolve returns the persona for id, falling back to DefaultID and then to
// the first entry.
func (s *MemoryStore) Resolve(id string) (Persona, bool) {
	if p, ok := s.FindByID(id); ok {
		return p, true
	}
	if p, ok := s.FindByID(DefaultID); ok {
		return p, true
	}
	if len(s.items) == 0 {
		return Persona{}, false
	}
	return s.items[0], true
}
