// Package present maps one entity's attributes to ordered, human-readable
// rows for each inspector category.
//
// Presenters are pure views: they never mutate the entity, and a missing
// optional attribute yields the category's placeholder row rather than an
// error. Errors are reserved for inconsistent entities, such as a
// physics-enabled entity with no physics state.
package present

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/daviddao/scene_viewer/internal/fault"
	"github.com/daviddao/scene_viewer/internal/format"
	"github.com/daviddao/scene_viewer/internal/scene"
)

// Category identifies one inspector panel.
type Category int

const (
	Physics Category = iota
	Properties
	Transform
	Materials
	Animation
	Sensors
)

// Categories lists every category in panel order.
var Categories = []Category{Physics, Properties, Transform, Materials, Animation, Sensors}

func (c Category) String() string {
	switch c {
	case Physics:
		return "Physics"
	case Properties:
		return "Properties"
	case Transform:
		return "Transform"
	case Materials:
		return "Materials"
	case Animation:
		return "Animation"
	case Sensors:
		return "Sensors"
	}
	return "?"
}

// Placeholder texts.
const (
	NoPhysics   = "No physics properties available"
	NoTransform = "No transform available"
	NoMaterials = "No materials available"
	NoAnimation = "No animation data available"
	NoSensors   = "No logic sensors available"
	NoSelection = "No entity selected"
	Unavailable = "data unavailable"
)

// Row is one displayed property. A placeholder row has no label.
type Row struct {
	Label       string
	Value       string
	Placeholder bool
}

func (r Row) String() string {
	if r.Placeholder || r.Label == "" {
		return r.Value
	}
	return r.Label + ": " + r.Value
}

func placeholder(text string) []Row {
	return []Row{{Value: text, Placeholder: true}}
}

// Panel is the presented output of one category.
type Panel struct {
	Category Category
	Rows     []Row
}

// Presenter renders one category for an entity.
type Presenter func(e scene.Entity, precision int) ([]Row, error)

// Presenters maps each category to its presenter.
var Presenters = map[Category]Presenter{
	Physics:    PresentPhysics,
	Properties: PresentProperties,
	Transform:  PresentTransform,
	Materials:  PresentMaterials,
	Animation:  PresentAnimation,
	Sensors:    PresentSensors,
}

// PresentPhysics renders mass and velocities, or a placeholder when physics
// is disabled.
func PresentPhysics(e scene.Entity, precision int) ([]Row, error) {
	if !e.PhysicsEnabled {
		return placeholder(NoPhysics), nil
	}
	if e.Physics == nil {
		return nil, errors.New("physics enabled but no physics state")
	}
	p := e.Physics
	return []Row{
		{Label: "Mass", Value: format.Float(p.Mass, precision)},
		{Label: "Linear Velocity", Value: format.Triple(p.LinearVelocity, precision)},
		{Label: "Angular Velocity", Value: format.Triple(p.AngularVelocity, precision)},
	}, nil
}

// PresentProperties renders one row per dynamic property, sorted by name.
// An entity without properties yields no rows.
func PresentProperties(e scene.Entity, precision int) ([]Row, error) {
	if len(e.Properties) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(e.Properties))
	for name := range e.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]Row, 0, len(names))
	for _, name := range names {
		v := format.Value(e.Properties[name], precision)
		rows = append(rows, Row{Label: name, Value: format.Render(v, precision)})
	}
	return rows, nil
}

// PresentTransform renders world position, XYZ Euler rotation in degrees, and
// world scale.
func PresentTransform(e scene.Entity, precision int) ([]Row, error) {
	if e.Transform == nil {
		return placeholder(NoTransform), nil
	}
	tr := e.Transform
	if tr.Orientation.Norm() == 0 || math.IsNaN(tr.Orientation.Norm()) {
		return nil, fmt.Errorf("degenerate orientation %+v", tr.Orientation)
	}
	rot := scene.Degrees(tr.Orientation.Euler())
	return []Row{
		{Label: "Position", Value: format.Axes(tr.Position, precision)},
		{Label: "Rotation", Value: format.Axes(rot, precision)},
		{Label: "Scale", Value: format.Axes(tr.Scale, precision)},
	}, nil
}

// PresentMaterials lists the material names of the first mesh.
func PresentMaterials(e scene.Entity, _ int) ([]Row, error) {
	names := e.MaterialNames()
	if len(names) == 0 {
		return placeholder(NoMaterials), nil
	}
	return []Row{{Label: "Materials", Value: strings.Join(names, ", ")}}, nil
}

// PresentAnimation is a stub: animation introspection is not implemented.
func PresentAnimation(scene.Entity, int) ([]Row, error) {
	return placeholder(NoAnimation), nil
}

// PresentSensors is a stub: logic sensor introspection is not implemented.
func PresentSensors(scene.Entity, int) ([]Row, error) {
	return placeholder(NoSensors), nil
}

// All runs every presenter against e in panel order. A presenter that fails
// or panics yields a placeholder panel and one Presentation error; the other
// categories are unaffected.
func All(e scene.Entity, precision int) ([]Panel, []error) {
	panels := make([]Panel, 0, len(Categories))
	var errs []error
	for _, c := range Categories {
		rows, err := run(c, e, precision)
		if err != nil {
			errs = append(errs, err)
			rows = placeholder(c.String() + " " + Unavailable)
		}
		panels = append(panels, Panel{Category: c, Rows: rows})
	}
	return panels, errs
}

func run(c Category, e scene.Entity, precision int) (rows []Row, err error) {
	op := "present " + strings.ToLower(c.String()) + " for " + e.ID
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fault.FromPanic(fault.Presentation, op, r)
		}
	}()
	rows, err = Presenters[c](e, precision)
	if err != nil {
		return nil, fault.New(fault.Presentation, op, err)
	}
	return rows, nil
}

// Empty returns the panels shown when no entity is selected.
func Empty() []Panel {
	panels := make([]Panel, 0, len(Categories))
	for _, c := range Categories {
		panels = append(panels, Panel{Category: c, Rows: placeholder(NoSelection)})
	}
	return panels
}
