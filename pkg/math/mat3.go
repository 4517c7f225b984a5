package math

// Mat3 is a 3x3 matrix in row-major order:
//
//	[m0 m1 m2]
//	[m3 m4 m5]
//	[m6 m7 m8]
//
// This matches the layout of rotation matrices in scene file formats that
// store nine floats one row at a time.
type Mat3 [9]float32

// Identity3 returns an identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			result[row*3+col] =
				m[row*3+0]*other[0*3+col] +
					m[row*3+1]*other[1*3+col] +
					m[row*3+2]*other[2*3+col]
		}
	}
	return result
}

// MulVec3 multiplies the matrix by a column vector.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transposed returns the transpose.
func (m Mat3) Transposed() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// IsIdentity reports whether all elements are within eps of the identity.
func (m Mat3) IsIdentity(eps float32) bool {
	id := Identity3()
	for i := range m {
		d := m[i] - id[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}

// Mat4 expands the matrix to a 4x4 column-major matrix with no translation.
func (m Mat3) Mat4() Mat4 {
	return Mat4{
		m[0], m[3], m[6], 0,
		m[1], m[4], m[7], 0,
		m[2], m[5], m[8], 0,
		0, 0, 0, 1,
	}
}
