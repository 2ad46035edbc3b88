package types

// A 4x4 matrix stored as a flat column-major array. Used for positioning
// mesh instances inside the scene.
type Mat4 [16]float32

// Create an identity matrix.
func Mat4Ident() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Create a translation matrix.
func Translation(v Vec3) Mat4 {
	m := Mat4Ident()
	m[12] = v[0]
	m[13] = v[1]
	m[14] = v[2]
	return m
}

// Create a non-uniform scaling matrix.
func Scaling(v Vec3) Mat4 {
	m := Mat4Ident()
	m[0] = v[0]
	m[5] = v[1]
	m[10] = v[2]
	return m
}

// Multiply two matrices. The result applies m2 first and m after it.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * m2[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Transform a point by the matrix, applying the translation part.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14],
	}
}

// Transform a direction by the matrix, ignoring the translation part.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}
