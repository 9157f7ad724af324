// Package scene defines the entity model the inspector reads from a live
// simulation, and the Provider contract hosts implement to expose it.
//
// A Snapshot captures every live entity at one tick. Snapshots are rebuilt
// wholesale on each refresh and never patched in place.
package scene

import (
	"fmt"
	"time"
)

// Vec3 is a three-component vector in world space.
type Vec3 [3]float64

// Physics holds the rigid-body state of an entity with physics enabled.
type Physics struct {
	Mass            float64
	LinearVelocity  Vec3
	AngularVelocity Vec3
}

// Transform is the world-space placement of an entity.
type Transform struct {
	Position    Vec3
	Orientation Quat
	Scale       Vec3
}

// Mesh is one mesh attached to an entity, with its material slots in order.
type Mesh struct {
	Name      string
	Materials []string
}

// Entity is one inspectable object in the live simulation.
//
// PhysicsEnabled reports whether the host runs physics for the entity. When it
// is true Physics is expected to be non-nil; a nil Physics on a physics-enabled
// entity is a host inconsistency and surfaces as a presentation fault.
type Entity struct {
	ID             string
	PhysicsEnabled bool
	Physics        *Physics
	Transform      *Transform
	Properties     map[string]Value
	Meshes         []Mesh
}

// MaterialNames returns the material names of the first mesh, or nil when
// the entity has no mesh.
func (e Entity) MaterialNames() []string {
	if len(e.Meshes) == 0 {
		return nil
	}
	return e.Meshes[0].Materials
}

// Clone returns a deep copy of e. Hosts that mutate entities in place hand
// out clones so snapshots stay immutable.
func (e Entity) Clone() Entity {
	out := e
	if e.Physics != nil {
		p := *e.Physics
		out.Physics = &p
	}
	if e.Transform != nil {
		tr := *e.Transform
		out.Transform = &tr
	}
	if e.Properties != nil {
		out.Properties = make(map[string]Value, len(e.Properties))
		for k, v := range e.Properties {
			if v.Vec != nil {
				v.Vec = append([]float64(nil), v.Vec...)
			}
			out.Properties[k] = v
		}
	}
	if e.Meshes != nil {
		out.Meshes = make([]Mesh, len(e.Meshes))
		for i, m := range e.Meshes {
			out.Meshes[i] = Mesh{Name: m.Name, Materials: append([]string(nil), m.Materials...)}
		}
	}
	return out
}

// Provider supplies the current set of live entities.
//
// Implementations must not block on I/O: List and Lookup run inline on the
// goroutine that also services the user interface.
type Provider interface {
	// List returns every live entity, in host order.
	List() ([]Entity, error)
	// Lookup returns the entity with the given identifier.
	Lookup(id string) (Entity, bool, error)
}

// Snapshot is an immutable view of the scene at one point in time.
type Snapshot struct {
	Entities []Entity
	BuiltAt  time.Time

	index map[string]int
}

// NewSnapshot builds a snapshot over entities. The first entity wins when an
// identifier repeats.
func NewSnapshot(entities []Entity, builtAt time.Time) *Snapshot {
	idx := make(map[string]int, len(entities))
	for i, e := range entities {
		if e.ID == "" {
			continue
		}
		if _, dup := idx[e.ID]; !dup {
			idx[e.ID] = i
		}
	}
	return &Snapshot{Entities: entities, BuiltAt: builtAt, index: idx}
}

// Lookup returns the entity with the given identifier.
func (s *Snapshot) Lookup(id string) (Entity, bool) {
	if s == nil {
		return Entity{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return Entity{}, false
	}
	return s.Entities[i], true
}

// Len returns the number of entities in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entities)
}

// Build acquires a snapshot from p.
func Build(p Provider) (*Snapshot, error) {
	entities, err := p.List()
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return NewSnapshot(entities, time.Now()), nil
}
