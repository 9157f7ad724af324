package scene

import (
	"errors"
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEulerIdentity(t *testing.T) {
	e := IdentityQuat.Euler()
	for i, v := range e {
		if v != 0 {
			t.Errorf("axis %d = %v, want 0", i, v)
		}
	}
}

func TestEulerSingleAxis(t *testing.T) {
	tests := []struct {
		axis Vec3
		deg  float64
		idx  int
	}{
		{Vec3{1, 0, 0}, 90, 0},
		{Vec3{0, 0, 1}, 90, 2},
		{Vec3{1, 0, 0}, -45, 0},
		{Vec3{0, 1, 0}, 30, 1},
		{Vec3{0, 0, 1}, 170, 2},
	}
	for _, tt := range tests {
		q := QuatFromAxisAngle(tt.axis, tt.deg*math.Pi/180)
		got := Degrees(q.Euler())
		for i := range got {
			want := 0.0
			if i == tt.idx {
				want = tt.deg
			}
			if math.Abs(got[i]-want) > 1e-9 {
				t.Errorf("axis %v %v°: euler[%d] = %v, want %v", tt.axis, tt.deg, i, got[i], want)
			}
		}
	}
}

func TestEulerGimbalLock(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)
	got := Degrees(q.Euler())
	if math.Abs(got[1]-90) > 1e-6 {
		t.Errorf("pitch = %v, want 90", got[1])
	}
	if math.Abs(got[0]) > 1e-6 || math.Abs(got[2]) > 1e-6 {
		t.Errorf("gimbal lock should zero roll and yaw, got %v", got)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	in := Vec3{0.3, -0.7, 1.2}
	out := QuatFromEuler(in).Euler()
	for i := range in {
		if !approx(in[i], out[i]) {
			t.Errorf("round trip axis %d: %v -> %v", i, in[i], out[i])
		}
	}
}

func TestEulerUnnormalizedQuat(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	q = Quat{W: q.W * 3, X: q.X * 3, Y: q.Y * 3, Z: q.Z * 3}
	got := Degrees(q.Euler())
	if math.Abs(got[2]-90) > 1e-9 {
		t.Errorf("yaw = %v, want 90", got[2])
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/4)
	b := a.Mul(a)
	got := Degrees(b.Euler())
	if math.Abs(got[2]-90) > 1e-9 {
		t.Errorf("two 45° turns = %v, want 90 about Z", got)
	}
}

func TestQuatFromAxisAngleZeroAxis(t *testing.T) {
	if QuatFromAxisAngle(Vec3{}, 1) != IdentityQuat {
		t.Error("zero axis should give identity")
	}
}

func TestDegreesRadians(t *testing.T) {
	v := Vec3{math.Pi, math.Pi / 2, -math.Pi}
	d := Degrees(v)
	want := Vec3{180, 90, -180}
	for i := range want {
		if !approx(d[i], want[i]) {
			t.Errorf("Degrees = %v, want %v", d, want)
		}
	}
	r := Radians(d)
	for i := range v {
		if !approx(r[i], v[i]) {
			t.Errorf("Radians[%d] = %v, want %v", i, r[i], v[i])
		}
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		in   any
		kind Kind
		str  string
	}{
		{42, KindInt, "42"},
		{int64(-3), KindInt, "-3"},
		{uint64(7), KindInt, "7"},
		{uint64(18446744073709551615), KindFloat, "1.8446744073709552e+19"},
		{1.5, KindFloat, "1.5"},
		{"boss", KindText, "boss"},
		{true, KindBool, "true"},
		{[]any{1, 2.5, 3}, KindVector, "[1 2.5 3]"},
		{[]any{1, "x"}, KindOther, "[1 x]"},
		{Vec3{1, 2, 3}, KindVector, "[1 2 3]"},
		{map[string]int{"a": 1}, KindOther, "map[a:1]"},
	}
	for _, tt := range tests {
		v := ValueOf(tt.in)
		if v.Kind != tt.kind {
			t.Errorf("ValueOf(%v).Kind = %v, want %v", tt.in, v.Kind, tt.kind)
		}
		if v.String() != tt.str {
			t.Errorf("ValueOf(%v).String() = %q, want %q", tt.in, v.String(), tt.str)
		}
	}
}

func TestSnapshotLookup(t *testing.T) {
	snap := NewSnapshot([]Entity{{ID: "A"}, {ID: ""}, {ID: "B", PhysicsEnabled: true}, {ID: "A", PhysicsEnabled: true}}, time.Now())
	if snap.Len() != 4 {
		t.Errorf("Len = %d", snap.Len())
	}
	a, ok := snap.Lookup("A")
	if !ok || a.PhysicsEnabled {
		t.Errorf("Lookup(A) should return the first A, got %+v %v", a, ok)
	}
	if _, ok := snap.Lookup(""); ok {
		t.Error("empty identifier should not be found")
	}
	var nilSnap *Snapshot
	if _, ok := nilSnap.Lookup("A"); ok || nilSnap.Len() != 0 {
		t.Error("nil snapshot should be empty")
	}
}

type failingProvider struct{}

func (failingProvider) List() ([]Entity, error) { return nil, errors.New("scene gone") }
func (failingProvider) Lookup(string) (Entity, bool, error) { return Entity{}, false, nil }

func TestBuild(t *testing.T) {
	snap, err := Build(NewMemory(Entity{ID: "Cube"}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.Len() != 1 || snap.BuiltAt.IsZero() {
		t.Errorf("snapshot = %+v", snap)
	}
	if _, err := Build(failingProvider{}); err == nil {
		t.Error("Build should propagate provider errors")
	}
}

func TestMemoryProvider(t *testing.T) {
	m := NewMemory(Entity{ID: "A"})
	list, _ := m.List()
	list[0].ID = "mutated"
	if e, ok, _ := m.Lookup("A"); !ok || e.ID != "A" {
		t.Error("List should return a copy")
	}
	m.Set([]Entity{{ID: "B"}})
	if _, ok, _ := m.Lookup("A"); ok {
		t.Error("Set should replace entities")
	}
}

func TestMaterialNames(t *testing.T) {
	e := Entity{Meshes: []Mesh{{Materials: []string{"a", "b"}}, {Materials: []string{"c"}}}}
	if got := e.MaterialNames(); len(got) != 2 || got[0] != "a" {
		t.Errorf("MaterialNames = %v", got)
	}
	if (Entity{}).MaterialNames() != nil {
		t.Error("no meshes should give nil")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Entity{
		ID:         "A",
		Physics:    &Physics{Mass: 1},
		Transform:  &Transform{Position: Vec3{1, 2, 3}},
		Properties: map[string]Value{"v": Vector(1, 2)},
		Meshes:     []Mesh{{Name: "m", Materials: []string{"x"}}},
	}
	c := orig.Clone()
	c.Physics.Mass = 5
	c.Transform.Position[0] = 9
	c.Properties["v"].Vec[0] = 7
	c.Properties["new"] = Int(1)
	c.Meshes[0].Materials[0] = "y"

	if orig.Physics.Mass != 1 || orig.Transform.Position[0] != 1 {
		t.Error("clone shares physics or transform")
	}
	if orig.Properties["v"].Vec[0] != 1 || len(orig.Properties) != 1 {
		t.Error("clone shares properties")
	}
	if orig.Meshes[0].Materials[0] != "x" {
		t.Error("clone shares materials")
	}
	if (Entity{ID: "bare"}).Clone().Physics != nil {
		t.Error("nil physics should stay nil")
	}
}
