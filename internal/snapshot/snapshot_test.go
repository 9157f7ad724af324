package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/daviddao/scene_viewer/internal/fault"
	"github.com/daviddao/scene_viewer/internal/present"
	"github.com/daviddao/scene_viewer/internal/scene"
)

// newTestScene creates an in-memory scene for testing.
func newTestScene(t *testing.T, entities ...scene.Entity) *scene.Memory {
	t.Helper()
	return scene.NewMemory(entities...)
}

func cube() scene.Entity {
	return scene.Entity{
		ID:             "Cube",
		PhysicsEnabled: true,
		Physics:        &scene.Physics{Mass: 2},
		Transform:      &scene.Transform{Orientation: scene.IdentityQuat, Scale: scene.Vec3{1, 1, 1}},
		Properties:     map[string]scene.Value{"health": scene.Int(42)},
	}
}

func TestBuildEmptyScene(t *testing.T) {
	s := newTestScene(t)

	snap, err := Build(s, "", 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(snap.Entities) != 0 {
		t.Errorf("expected 0 entities, got %d", len(snap.Entities))
	}
	if snap.TotalEntities != 0 || snap.PhysicsEnabled != 0 || snap.Faults != 0 {
		t.Errorf("counts = %+v", snap)
	}
	if snap.BuiltAt.IsZero() {
		t.Error("BuiltAt should be set")
	}
}

func TestBuildPresentsEveryEntity(t *testing.T) {
	s := newTestScene(t, cube(), scene.Entity{ID: "Camera"})

	snap, err := Build(s, "", 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(snap.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(snap.Entities))
	}
	if snap.PhysicsEnabled != 1 || snap.WithTransform != 1 {
		t.Errorf("counts = %+v", snap)
	}

	view := snap.Entities[0]
	if view.ID != "Cube" || len(view.Panels) != len(present.Categories) {
		t.Fatalf("view = %+v", view)
	}
	mass := view.Panels[present.Physics].Rows[0]
	if mass.String() != "Mass: 2.000" {
		t.Errorf("mass row = %q", mass.String())
	}
	props := view.Panels[present.Properties].Rows
	if len(props) != 1 || props[0].String() != "health: 42" {
		t.Errorf("properties = %+v", props)
	}

	cam := snap.Entities[1].Panels[present.Physics].Rows
	if len(cam) != 1 || cam[0].Value != present.NoPhysics {
		t.Errorf("camera physics = %+v", cam)
	}
}

func TestBuildFilter(t *testing.T) {
	s := newTestScene(t, cube(), scene.Entity{ID: "Camera"}, scene.Entity{ID: "CubeSmall"})

	snap, err := Build(s, "cube", 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.TotalEntities != 2 || snap.Entities[1].ID != "CubeSmall" {
		t.Errorf("filtered = %+v", snap.Entities)
	}
}

func TestBuildCountsDroppedAndFaults(t *testing.T) {
	broken := scene.Entity{ID: "Broken", PhysicsEnabled: true}
	s := newTestScene(t, cube(), cube(), scene.Entity{}, broken)

	snap, err := Build(s, "", 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", snap.Dropped)
	}
	if snap.Faults != 1 {
		t.Fatalf("Faults = %d, want 1", snap.Faults)
	}
	view := snap.Entities[1]
	if !fault.Is(view.Faults[0], fault.Presentation) {
		t.Errorf("fault kind = %v", fault.KindOf(view.Faults[0]))
	}
	if got := view.Panels[present.Physics].Rows[0].Value; got != "Physics data unavailable" {
		t.Errorf("fallback = %q", got)
	}
	// Other categories are unaffected.
	if view.Panels[present.Transform].Rows[0].Value != present.NoTransform {
		t.Error("transform panel should be independent of the physics fault")
	}
}

type failingProvider struct{}

func (failingProvider) List() ([]scene.Entity, error) { return nil, errors.New("scene gone") }
func (failingProvider) Lookup(string) (scene.Entity, bool, error) {
	return scene.Entity{}, false, nil
}

func TestBuildProviderError(t *testing.T) {
	if _, err := Build(failingProvider{}, "", 3); err == nil {
		t.Error("expected error from failing provider")
	}
}

func TestBuildTimestamp(t *testing.T) {
	before := time.Now()
	snap, _ := Build(newTestScene(t), "", 3)
	if snap.BuiltAt.Before(before) {
		t.Error("BuiltAt predates Build")
	}
}
