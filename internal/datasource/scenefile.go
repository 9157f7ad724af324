package datasource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daviddao/scene_viewer/internal/scene"
)

// sceneFile is the on-disk layout of a scene file.
//
//	entities:
//	  - name: Cube
//	    physics: {mass: 1, linear_velocity: [0, 0, 0], angular_velocity: [0, 0, 0]}
//	    position: [0, 0, 0]
//	    rotation: [0, 0, 90]         # XYZ Euler degrees, or
//	    orientation: [1, 0, 0, 0]    # quaternion W, X, Y, Z
//	    scale: [1, 1, 1]
//	    properties: {health: 42, tag: boss}
//	    meshes: [{name: Cube, materials: [Steel]}]
type sceneFile struct {
	Entities []entityRecord `yaml:"entities"`
}

type entityRecord struct {
	Name           string         `yaml:"name"`
	PhysicsEnabled *bool          `yaml:"physics_enabled,omitempty"`
	Physics        *physicsRecord `yaml:"physics,omitempty"`
	Position       []float64      `yaml:"position,omitempty"`
	Rotation       []float64      `yaml:"rotation,omitempty"`
	Orientation    []float64      `yaml:"orientation,omitempty"`
	Scale          []float64      `yaml:"scale,omitempty"`
	Properties     map[string]any `yaml:"properties,omitempty"`
	Meshes         []meshRecord   `yaml:"meshes,omitempty"`
}

type physicsRecord struct {
	Mass            float64   `yaml:"mass"`
	LinearVelocity  []float64 `yaml:"linear_velocity,omitempty"`
	AngularVelocity []float64 `yaml:"angular_velocity,omitempty"`
}

type meshRecord struct {
	Name      string   `yaml:"name"`
	Materials []string `yaml:"materials"`
}

// Load reads and decodes a scene file.
func Load(path string) ([]scene.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses a scene document. An empty document is an empty scene.
func Decode(r io.Reader) ([]scene.Entity, error) {
	var f sceneFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	out := make([]scene.Entity, 0, len(f.Entities))
	for i, rec := range f.Entities {
		e, err := rec.entity()
		if err != nil {
			return nil, fmt.Errorf("entity %d (%q): %w", i, rec.Name, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Encode writes entities as a scene document.
func Encode(w io.Writer, entities []scene.Entity) error {
	f := sceneFile{Entities: make([]entityRecord, 0, len(entities))}
	for _, e := range entities {
		f.Entities = append(f.Entities, recordOf(e))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return err
	}
	return enc.Close()
}

func (rec entityRecord) entity() (scene.Entity, error) {
	e := scene.Entity{ID: rec.Name}

	e.PhysicsEnabled = rec.Physics != nil
	if rec.PhysicsEnabled != nil {
		e.PhysicsEnabled = *rec.PhysicsEnabled
	}
	if rec.Physics != nil {
		lin, err := vec3(rec.Physics.LinearVelocity, scene.Vec3{})
		if err != nil {
			return e, fmt.Errorf("linear_velocity: %w", err)
		}
		ang, err := vec3(rec.Physics.AngularVelocity, scene.Vec3{})
		if err != nil {
			return e, fmt.Errorf("angular_velocity: %w", err)
		}
		e.Physics = &scene.Physics{Mass: rec.Physics.Mass, LinearVelocity: lin, AngularVelocity: ang}
	}

	if rec.Position != nil || rec.Rotation != nil || rec.Orientation != nil || rec.Scale != nil {
		pos, err := vec3(rec.Position, scene.Vec3{})
		if err != nil {
			return e, fmt.Errorf("position: %w", err)
		}
		scale, err := vec3(rec.Scale, scene.Vec3{1, 1, 1})
		if err != nil {
			return e, fmt.Errorf("scale: %w", err)
		}
		orient := scene.IdentityQuat
		switch {
		case rec.Orientation != nil:
			if len(rec.Orientation) != 4 {
				return e, fmt.Errorf("orientation: want 4 components, got %d", len(rec.Orientation))
			}
			o := rec.Orientation
			orient = scene.Quat{W: o[0], X: o[1], Y: o[2], Z: o[3]}
		case rec.Rotation != nil:
			rot, err := vec3(rec.Rotation, scene.Vec3{})
			if err != nil {
				return e, fmt.Errorf("rotation: %w", err)
			}
			orient = scene.QuatFromEuler(scene.Radians(rot))
		}
		e.Transform = &scene.Transform{Position: pos, Orientation: orient, Scale: scale}
	}

	if len(rec.Properties) > 0 {
		e.Properties = make(map[string]scene.Value, len(rec.Properties))
		for k, v := range rec.Properties {
			e.Properties[k] = scene.ValueOf(v)
		}
	}

	for _, m := range rec.Meshes {
		e.Meshes = append(e.Meshes, scene.Mesh{Name: m.Name, Materials: m.Materials})
	}
	return e, nil
}

func recordOf(e scene.Entity) entityRecord {
	rec := entityRecord{Name: e.ID}
	if e.PhysicsEnabled != (e.Physics != nil) {
		enabled := e.PhysicsEnabled
		rec.PhysicsEnabled = &enabled
	}
	if p := e.Physics; p != nil {
		rec.Physics = &physicsRecord{
			Mass:            p.Mass,
			LinearVelocity:  p.LinearVelocity[:],
			AngularVelocity: p.AngularVelocity[:],
		}
	}
	if tr := e.Transform; tr != nil {
		q := tr.Orientation
		rec.Position = tr.Position[:]
		rec.Orientation = []float64{q.W, q.X, q.Y, q.Z}
		rec.Scale = tr.Scale[:]
	}
	if len(e.Properties) > 0 {
		rec.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			rec.Properties[k] = v.Interface()
		}
	}
	for _, m := range e.Meshes {
		rec.Meshes = append(rec.Meshes, meshRecord{Name: m.Name, Materials: m.Materials})
	}
	return rec
}

func vec3(v []float64, def scene.Vec3) (scene.Vec3, error) {
	if v == nil {
		return def, nil
	}
	if len(v) != 3 {
		return scene.Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return scene.Vec3{}, fmt.Errorf("non-finite component %v", x)
		}
	}
	return scene.Vec3{v[0], v[1], v[2]}, nil
}
