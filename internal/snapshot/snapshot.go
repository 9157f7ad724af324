// Package snapshot builds an immutable, fully presented view of a whole
// scene at one point in time.
//
// The interactive overlay only presents the selected entity. A
// SceneSnapshot presents every entity, which is what the --json dump and
// scripted checks want.
package snapshot

import (
	"time"

	"github.com/daviddao/scene_viewer/internal/present"
	"github.com/daviddao/scene_viewer/internal/reconcile"
	"github.com/daviddao/scene_viewer/internal/scene"
)

// EntityView is one entity with all six panels presented.
type EntityView struct {
	ID     string
	Panels []present.Panel
	// Faults holds presentation errors for panels that fell back to a
	// placeholder.
	Faults []error
}

// SceneSnapshot is a self-contained view of the scene.
type SceneSnapshot struct {
	Entities []EntityView

	// Counts.
	TotalEntities  int
	PhysicsEnabled int
	WithTransform  int
	Dropped        int // empty or repeated identifiers
	Faults         int

	// Timestamp of snapshot creation.
	BuiltAt time.Time
}

// Build lists the provider and presents every well-formed entity at the
// given precision. filter narrows the entities the same way the overlay's
// search box does.
func Build(p scene.Provider, filter string, precision int) (*SceneSnapshot, error) {
	entities, err := p.List()
	if err != nil {
		return nil, err
	}

	res := reconcile.Reconcile("", filter, entities)
	snap := &SceneSnapshot{
		Entities:      make([]EntityView, 0, len(res.Entries)),
		TotalEntities: len(res.Entries),
		Dropped:       res.Dropped,
		BuiltAt:       time.Now(),
	}

	byID := make(map[string]scene.Entity, len(entities))
	for _, e := range entities {
		if _, seen := byID[e.ID]; !seen {
			byID[e.ID] = e
		}
	}

	for _, id := range res.Entries {
		e := byID[id]
		if e.PhysicsEnabled {
			snap.PhysicsEnabled++
		}
		if e.Transform != nil {
			snap.WithTransform++
		}
		panels, errs := present.All(e, precision)
		snap.Faults += len(errs)
		snap.Entities = append(snap.Entities, EntityView{ID: id, Panels: panels, Faults: errs})
	}
	return snap, nil
}
