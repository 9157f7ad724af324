package scene

import "math"

// Quat is a rotation quaternion stored as W, X, Y, Z.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat is the zero rotation.
var IdentityQuat = Quat{W: 1}

// QuatFromAxisAngle returns the rotation of angle radians about axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if n == 0 {
		return IdentityQuat
	}
	s := math.Sin(angle/2) / n
	return Quat{W: math.Cos(angle / 2), X: axis[0] * s, Y: axis[1] * s, Z: axis[2] * s}
}

// QuatFromEuler builds a quaternion from XYZ Euler angles in radians
// (X applied first, then Y, then Z).
func QuatFromEuler(e Vec3) Quat {
	cx, sx := math.Cos(e[0]/2), math.Sin(e[0]/2)
	cy, sy := math.Cos(e[1]/2), math.Sin(e[1]/2)
	cz, sz := math.Cos(e[2]/2), math.Sin(e[2]/2)
	return Quat{
		W: cx*cy*cz + sx*sy*sz,
		X: sx*cy*cz - cx*sy*sz,
		Y: cx*sy*cz + sx*cy*sz,
		Z: cx*cy*sz - sx*sy*cz,
	}
}

// Norm returns the quaternion length.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Mul returns the Hamilton product q*r (apply r, then q).
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Normalized returns q scaled to unit length. A zero quaternion is returned
// unchanged.
func (q Quat) Normalized() Quat {
	n := q.Norm()
	if n == 0 {
		return q
	}
	return Quat{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// gimbalEpsilon matches single-precision 16*FLT_EPSILON used by the host's
// matrix to Euler decomposition.
const gimbalEpsilon = 16 * 1.1920928955078125e-07

// Euler converts q to XYZ Euler angles in radians.
//
// The decomposition goes through the rotation matrix so that a pitch of
// ±90° (gimbal lock) collapses the Z angle to zero instead of producing
// ±180° artefacts from near-zero denominators.
func (q Quat) Euler() Vec3 {
	q = q.Normalized()
	const sqrt2 = math.Sqrt2
	q0, q1, q2, q3 := sqrt2*q.W, sqrt2*q.X, sqrt2*q.Y, sqrt2*q.Z

	qda, qdb, qdc := q0*q1, q0*q2, q0*q3
	qaa, qab, qac := q1*q1, q1*q2, q1*q3
	qbb, qbc, qcc := q2*q2, q2*q3, q3*q3

	// Column-major: m[col][row].
	var m [3][3]float64
	m[0][0] = 1 - qbb - qcc
	m[0][1] = qdc + qab
	m[0][2] = -qdb + qac
	m[1][0] = -qdc + qab
	m[1][1] = 1 - qaa - qcc
	m[1][2] = qda + qbc
	m[2][0] = qdb + qac
	m[2][1] = -qda + qbc
	m[2][2] = 1 - qaa - qbb

	cy := math.Hypot(m[0][0], m[0][1])
	if cy > gimbalEpsilon {
		return Vec3{
			math.Atan2(m[1][2], m[2][2]),
			math.Atan2(-m[0][2], cy),
			math.Atan2(m[0][1], m[0][0]),
		}
	}
	return Vec3{
		math.Atan2(-m[2][1], m[1][1]),
		math.Atan2(-m[0][2], cy),
		0,
	}
}

// Degrees converts each component from radians to degrees.
func Degrees(v Vec3) Vec3 {
	const k = 180 / math.Pi
	return Vec3{v[0] * k, v[1] * k, v[2] * k}
}

// Radians converts each component from degrees to radians.
func Radians(v Vec3) Vec3 {
	const k = math.Pi / 180
	return Vec3{v[0] * k, v[1] * k, v[2] * k}
}
