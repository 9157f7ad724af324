package datasource

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/daviddao/scene_viewer/internal/scene"
)

func TestDecodeSample(t *testing.T) {
	entities, err := Decode(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("got %d entities", len(entities))
	}

	cube := entities[0]
	if !cube.PhysicsEnabled || cube.Physics == nil || cube.Physics.Mass != 2 {
		t.Errorf("physics = %v %+v", cube.PhysicsEnabled, cube.Physics)
	}
	if cube.Physics.LinearVelocity != (scene.Vec3{1, 0, 0}) || cube.Physics.AngularVelocity != (scene.Vec3{}) {
		t.Errorf("velocities = %+v", cube.Physics)
	}
	if cube.Transform == nil || cube.Transform.Position != (scene.Vec3{0, 1, 2}) {
		t.Fatalf("transform = %+v", cube.Transform)
	}
	if cube.Transform.Scale != (scene.Vec3{1, 1, 1}) {
		t.Errorf("default scale = %v", cube.Transform.Scale)
	}
	yaw := scene.Degrees(cube.Transform.Orientation.Euler())[2]
	if math.Abs(yaw-90) > 1e-9 {
		t.Errorf("yaw = %v, want 90", yaw)
	}
	if v := cube.Properties["health"]; v.Kind != scene.KindInt || v.Int != 42 {
		t.Errorf("health = %+v", v)
	}
	if v := cube.Properties["tag"]; v.Kind != scene.KindText || v.Text != "boss" {
		t.Errorf("tag = %+v", v)
	}
	if got := cube.MaterialNames(); len(got) != 2 || got[1] != "Rust" {
		t.Errorf("materials = %v", got)
	}

	cam := entities[1]
	if cam.PhysicsEnabled || cam.Transform != nil || cam.Properties != nil || cam.Meshes != nil {
		t.Errorf("bare entity should have no optional attributes: %+v", cam)
	}
}

func TestDecodeEmpty(t *testing.T) {
	entities, err := Decode(strings.NewReader(""))
	if err != nil || len(entities) != 0 {
		t.Errorf("empty document: %v %v", entities, err)
	}
}

func TestDecodeExplicitPhysicsFlag(t *testing.T) {
	doc := "entities:\n  - name: Ghost\n    physics_enabled: true\n"
	entities, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !entities[0].PhysicsEnabled || entities[0].Physics != nil {
		t.Errorf("expected enabled physics without state: %+v", entities[0])
	}
}

func TestDecodeQuaternion(t *testing.T) {
	doc := "entities:\n  - name: Q\n    orientation: [0.7071067811865476, 0.7071067811865476, 0, 0]\n"
	entities, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	roll := scene.Degrees(entities[0].Transform.Orientation.Euler())[0]
	if math.Abs(roll-90) > 1e-9 {
		t.Errorf("roll = %v, want 90", roll)
	}
}

func TestDecodeErrors(t *testing.T) {
	docs := []string{
		"entities: [{name: A, position: [1]}]",
		"entities: [{name: A, orientation: [1, 0, 0]}]",
		"entities: [{name: A, physics: {mass: 1, linear_velocity: [0, 0]}}]",
		"entities: [{name: A, scale: [.nan, 1, 1]}]",
		"entities: {not: a list}",
	}
	for _, doc := range docs {
		if _, err := Decode(strings.NewReader(doc)); err == nil {
			t.Errorf("Decode(%q) expected error", doc)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := []scene.Entity{
		{
			ID:             "Ball",
			PhysicsEnabled: true,
			Physics:        &scene.Physics{Mass: 0.5, LinearVelocity: scene.Vec3{0, 0, -9.8}},
			Transform: &scene.Transform{
				Position:    scene.Vec3{1, 2, 3},
				Orientation: scene.QuatFromAxisAngle(scene.Vec3{0, 0, 1}, math.Pi/2),
				Scale:       scene.Vec3{2, 2, 2},
			},
			Properties: map[string]scene.Value{"bounces": scene.Int(3), "color": scene.Text("red")},
			Meshes:     []scene.Mesh{{Name: "Sphere", Materials: []string{"Rubber"}}},
		},
		{ID: "Broken", PhysicsEnabled: true},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, buf.String())
	}
	if len(out) != 2 {
		t.Fatalf("got %d entities", len(out))
	}
	ball := out[0]
	if ball.ID != "Ball" || ball.Physics.LinearVelocity[2] != -9.8 || ball.Transform.Scale[0] != 2 {
		t.Errorf("ball = %+v", ball)
	}
	if ball.Properties["bounces"].Int != 3 || ball.Properties["color"].Text != "red" {
		t.Errorf("properties = %+v", ball.Properties)
	}
	if !out[1].PhysicsEnabled || out[1].Physics != nil {
		t.Errorf("explicit physics flag lost: %+v", out[1])
	}
}
