package sim

import (
	"math"

	"github.com/daviddao/scene_viewer/internal/scene"
)

// DemoScene returns the entities served in demo mode. It covers every panel
// state: physics on and off, dynamic properties of each kind, multiple
// materials, and an entity without a mesh.
func DemoScene() []scene.Entity {
	return []scene.Entity{
		{
			ID:             "Cube",
			PhysicsEnabled: true,
			Physics: &scene.Physics{
				Mass:            2,
				AngularVelocity: scene.Vec3{0, 0, math.Pi / 4},
			},
			Transform: &scene.Transform{
				Orientation: scene.IdentityQuat,
				Scale:       scene.Vec3{1, 1, 1},
			},
			Properties: map[string]scene.Value{
				"health":  scene.Int(100),
				"speed":   scene.Float(2.5),
				"tag":     scene.Text("boss"),
				"visible": scene.Bool(true),
			},
			Meshes: []scene.Mesh{{Name: "Cube", Materials: []string{"Steel", "Rust"}}},
		},
		{
			ID:             "Ball",
			PhysicsEnabled: true,
			Physics: &scene.Physics{
				Mass:           0.5,
				LinearVelocity: scene.Vec3{1, 0, 0},
			},
			Transform: &scene.Transform{
				Position:    scene.Vec3{-4, 0, 5},
				Orientation: scene.IdentityQuat,
				Scale:       scene.Vec3{0.5, 0.5, 0.5},
			},
			Properties: map[string]scene.Value{
				"bounces": scene.Int(0),
				"spawn":   scene.Vector(-4, 0, 5),
			},
			Meshes: []scene.Mesh{{Name: "Sphere", Materials: []string{"Rubber"}}},
		},
		{
			ID: "Floor",
			Transform: &scene.Transform{
				Orientation: scene.IdentityQuat,
				Scale:       scene.Vec3{20, 20, 0.1},
			},
			Meshes: []scene.Mesh{{Name: "Plane", Materials: []string{"Grass"}}},
		},
		{
			ID: "Camera",
			Transform: &scene.Transform{
				Position:    scene.Vec3{7.36, -6.93, 4.96},
				Orientation: scene.QuatFromEuler(scene.Radians(scene.Vec3{63.6, 0, 46.7})),
				Scale:       scene.Vec3{1, 1, 1},
			},
		},
		{
			ID: "Lamp",
			Transform: &scene.Transform{
				Position:    scene.Vec3{4.08, 1.01, 5.9},
				Orientation: scene.QuatFromEuler(scene.Radians(scene.Vec3{37.3, 3.2, 106.9})),
				Scale:       scene.Vec3{1, 1, 1},
			},
			Properties: map[string]scene.Value{"energy": scene.Float(1000)},
		},
	}
}

// NewDemo returns a world populated with DemoScene.
func NewDemo() *World {
	return New(DemoScene()...)
}
