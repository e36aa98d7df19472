package math

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle creates a quaternion from a normalized axis and an angle in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s := Sin(angle / 2)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: Cos(angle / 2)}
}

// Normalize returns a unit quaternion; degenerate input yields identity.
func (q Quat) Normalize() Quat {
	l := Sqrt(q.Dot(q))
	if l < 1e-6 {
		return QuatIdentity()
	}
	inv := 1 / l
	return Quat{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// Dot returns the 4D dot product.
func (q Quat) Dot(o Quat) float32 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Slerp performs spherical linear interpolation along the shorter arc.
func (q Quat) Slerp(o Quat, t float32) Quat {
	dot := q.Dot(o)
	if dot < 0 {
		o = Quat{X: -o.X, Y: -o.Y, Z: -o.Z, W: -o.W}
		dot = -dot
	}

	// Nearly parallel: fall back to nlerp.
	if dot > 0.9995 {
		return Quat{
			X: q.X + t*(o.X-q.X),
			Y: q.Y + t*(o.Y-q.Y),
			Z: q.Z + t*(o.Z-q.Z),
			W: q.W + t*(o.W-q.W),
		}.Normalize()
	}

	theta0 := Acos(dot)
	sin0 := Sin(theta0)
	s0 := Sin((1-t)*theta0) / sin0
	s1 := Sin(t*theta0) / sin0

	return Quat{
		X: q.X*s0 + o.X*s1,
		Y: q.Y*s0 + o.Y*s1,
		Z: q.Z*s0 + o.Z*s1,
		W: q.W*s0 + o.W*s1,
	}
}

// Mul composes two rotations (q applied after o).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// ToMat4 converts the quaternion to a rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx, xy, xz, xw := q.X*q.X, q.X*q.Y, q.X*q.Z, q.X*q.W
	yy, yz, yw := q.Y*q.Y, q.Y*q.Z, q.Y*q.W
	zz, zw := q.Z*q.Z, q.Z*q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// QuatFromMat4 extracts the rotation of a pure rotation matrix.
func QuatFromMat4(m Mat4) Quat {
	r00, r10, r20 := m[0], m[1], m[2]
	r01, r11, r21 := m[4], m[5], m[6]
	r02, r12, r22 := m[8], m[9], m[10]

	var q Quat
	switch trace := r00 + r11 + r22; {
	case trace > 0:
		s := Sqrt(trace+1) * 2
		q = Quat{X: (r21 - r12) / s, Y: (r02 - r20) / s, Z: (r10 - r01) / s, W: s / 4}
	case r00 > r11 && r00 > r22:
		s := Sqrt(1+r00-r11-r22) * 2
		q = Quat{X: s / 4, Y: (r01 + r10) / s, Z: (r02 + r20) / s, W: (r21 - r12) / s}
	case r11 > r22:
		s := Sqrt(1+r11-r00-r22) * 2
		q = Quat{X: (r01 + r10) / s, Y: s / 4, Z: (r12 + r21) / s, W: (r02 - r20) / s}
	default:
		s := Sqrt(1+r22-r00-r11) * 2
		q = Quat{X: (r02 + r20) / s, Y: (r12 + r21) / s, Z: s / 4, W: (r10 - r01) / s}
	}
	return q.Normalize()
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return q.ToMat4().TransformDirection(v)
}
