// Package quat implements the small amount of rotation math the scene
// host needs to read transform channels: quaternion composition, euler
// decomposition in any rotation order, and swing-twist splitting.
package quat

import "math"

// Quat is a rotation quaternion stored (w, x, y, z). Value type for zero
// heap allocation.
type Quat [4]float64

// Identity returns the no-rotation quaternion.
func Identity() Quat {
	return Quat{1, 0, 0, 0}
}

// Mul returns a composed with b (b applied first).
func Mul(a, b Quat) Quat {
	return Quat{
		a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3],
		a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2],
		a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1],
		a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0],
	}
}

// Conjugate returns the inverse rotation for a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{q[0], -q[1], -q[2], -q[3]}
}

// Normalize scales q to unit length. The zero quaternion normalizes to
// identity.
func (q Quat) Normalize() Quat {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n == 0 {
		return Identity()
	}
	return Quat{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

// Dot returns the 4D dot product.
func Dot(a, b Quat) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// AxisAngle builds a rotation of angle radians around the given unit
// axis (0=x, 1=y, 2=z).
func AxisAngle(axis int, angle float64) Quat {
	q := Quat{math.Cos(angle / 2)}
	q[1+axis] = math.Sin(angle / 2)
	return q
}

// FromEuler composes per-axis rotations in the given order. The order
// string names which axis is applied first ("xyz" applies x, then y,
// then z).
func FromEuler(order string, x, y, z float64) Quat {
	angles := [3]float64{x, y, z}
	q := Identity()
	for _, c := range order {
		axis := int(c - 'x')
		q = Mul(AxisAngle(axis, angles[axis]), q)
	}
	return q
}

// ToEuler decomposes a unit quaternion into euler angles for the given
// rotation order, returned as (x, y, z) regardless of order.
func ToEuler(q Quat, order string) (x, y, z float64) {
	m := toMat3(q)

	// Tait-Bryan extraction: for order abc (a applied first), the matrix
	// is R(c)R(b)R(a) and the middle angle comes off a single element.
	var i, j, k int
	switch order {
	case "xzy":
		i, j, k = 0, 2, 1
	case "yxz":
		i, j, k = 1, 0, 2
	case "yzx":
		i, j, k = 1, 2, 0
	case "zxy":
		i, j, k = 2, 0, 1
	case "zyx":
		i, j, k = 2, 1, 0
	default: // xyz
		i, j, k = 0, 1, 2
	}

	even := ((j - i + 3) % 3) == 1 // even permutation of xyz

	var a, b, c float64
	sj := m[k*3+i]
	if even {
		sj = -sj
	}
	sj = clamp(sj, -1, 1)
	b = math.Asin(sj)

	if math.Abs(sj) < 1-1e-9 {
		if even {
			a = math.Atan2(m[k*3+j], m[k*3+k])
			c = math.Atan2(m[j*3+i], m[i*3+i])
		} else {
			a = math.Atan2(-m[k*3+j], m[k*3+k])
			c = math.Atan2(-m[j*3+i], m[i*3+i])
		}
	} else {
		// Gimbal lock: fold the third rotation into the first.
		if even {
			a = math.Atan2(-m[j*3+k], m[j*3+j])
		} else {
			a = math.Atan2(m[j*3+k], m[j*3+j])
		}
		c = 0
	}

	var out [3]float64
	out[i], out[j], out[k] = a, b, c
	return out[0], out[1], out[2]
}

// SwingTwist splits q into a swing rotation followed by a twist around
// the given axis (0=x, 1=y, 2=z), with q = swing * twist.
func SwingTwist(q Quat, axis int) (swing Quat, twist Quat) {
	component := q[1+axis]
	twist = Quat{q[0]}
	twist[1+axis] = component
	twist = twist.Normalize()
	if q[0] < 0 {
		// Keep the twist on the short arc.
		twist = Quat{-twist[0], -twist[1], -twist[2], -twist[3]}
	}
	swing = Mul(q, twist.Conjugate())
	return swing, twist
}

// SwingAngle is the rotation angle of the swing component that aims the
// given axis.
func SwingAngle(q Quat, axis int) float64 {
	swing, _ := SwingTwist(q, axis)
	return 2 * math.Acos(clamp(math.Abs(swing[0]), 0, 1))
}

// TwistAngle is the signed rotation angle around the given axis.
func TwistAngle(q Quat, axis int) float64 {
	_, twist := SwingTwist(q, axis)
	return 2 * math.Atan2(twist[1+axis], twist[0])
}

// Rotate applies the rotation to a vector.
func Rotate(q Quat, v [3]float64) [3]float64 {
	m := toMat3(q)
	return [3]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Difference is the absolute angle between two unit rotations.
func Difference(a, b Quat) float64 {
	d := clamp(math.Abs(Dot(a, b)), -1, 1)
	return 2 * math.Acos(d)
}

// toMat3 converts a unit quaternion to a row-major 3x3 rotation matrix.
func toMat3(q Quat) [9]float64 {
	w, x, y, z := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return [9]float64{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
