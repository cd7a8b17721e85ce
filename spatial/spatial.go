// Package spatial provides stateless vector and rotation math for camera
// pose handling: axis-angle rotations, optical center derivation, viewing
// direction, and angle normalization.
//
// All functions are pure and safe for concurrent use. Rotations are given
// in axis-angle form: a 3-vector whose direction is the rotation axis and
// whose magnitude is the rotation angle in radians.
package spatial

import "math"

// Vec3 is a 3-component vector
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + u
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{v.X + u.X, v.Y + u.Y, v.Z + u.Z}
}

// Sub returns v - u
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z}
}

// Scale returns v scaled by s
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Negate returns -v. Negating an axis-angle rotation inverts it: the
// magnitude (rotation angle) is preserved while the axis direction flips.
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product of v and u
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Norm returns the Euclidean length of v
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Mat4 is a 4x4 homogeneous transform in row-major order
type Mat4 [16]float64

// Identity returns the identity transform
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Apply transforms v by m (w assumed 1, no perspective divide)
func (m Mat4) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// RotationMatrix builds the homogeneous rotation matrix for an axis-angle
// rotation. The zero vector yields the identity rotation; the normalize
// step must not divide by a zero magnitude.
func RotationMatrix(angleAxis Vec3) Mat4 {
	angle := angleAxis.Norm()
	if angle == 0 {
		return Identity()
	}

	// Rodrigues rotation formula on the normalized axis
	x := angleAxis.X / angle
	y := angleAxis.Y / angle
	z := angleAxis.Z / angle

	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c

	return Mat4{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y, 0,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x, 0,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// Rotate applies the axis-angle rotation to v
func Rotate(v Vec3, angleAxis Vec3) Vec3 {
	return RotationMatrix(angleAxis).Apply(v)
}

// OpticalCenter returns the camera center in world space, C = -R^T * t.
// Rotation matrices are orthogonal (R^T = R^-1), so the inverse rotation
// is obtained by negating the axis-angle vector.
func OpticalCenter(rotation Vec3, translation Vec3) Vec3 {
	return Rotate(translation.Negate(), rotation.Negate())
}

// ViewingDirection returns the world-space direction the camera faces:
// the canonical forward vector (0, 0, 1) taken through the inverse rotation.
func ViewingDirection(rotation Vec3) Vec3 {
	return Rotate(Vec3{0, 0, 1}, rotation.Negate())
}

// WrapAngle normalizes an angle in radians to (-pi, pi]
func WrapAngle(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// AngleToPlane returns the signed angle between a direction vector and the
// plane with the given normal. Used to derive elevation from a viewing
// direction against the horizontal plane.
func AngleToPlane(direction Vec3, planeNormal Vec3) float64 {
	dLen := direction.Norm()
	nLen := planeNormal.Norm()
	if dLen == 0 || nLen == 0 {
		return 0
	}
	sine := direction.Dot(planeNormal) / (dLen * nLen)
	// Clamp against floating error before asin
	sine = math.Max(-1, math.Min(1, sine))
	return math.Asin(sine)
}
