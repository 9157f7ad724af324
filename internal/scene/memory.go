package scene

// Memory is a Provider over an in-memory entity list. Set replaces the list
// wholesale. It is not safe for concurrent use.
type Memory struct {
	entities []Entity
}

// NewMemory returns a provider serving entities.
func NewMemory(entities ...Entity) *Memory {
	return &Memory{entities: entities}
}

// Set replaces the served entities.
func (m *Memory) Set(entities []Entity) {
	m.entities = entities
}

// List returns a copy of the served entities.
func (m *Memory) List() ([]Entity, error) {
	out := make([]Entity, len(m.entities))
	copy(out, m.entities)
	return out, nil
}

// Lookup returns the first entity with the given identifier.
func (m *Memory) Lookup(id string) (Entity, bool, error) {
	for _, e := range m.entities {
		if e.ID == id && id != "" {
			return e, true, nil
		}
	}
	return Entity{}, false, nil
}
