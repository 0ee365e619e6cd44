package bfres

type Vec2 [2]float32

type Vec3 [3]float32

type Vec4 [4]float32

// Matrix4x3 is four rows of three columns, stored row by row.
type Matrix4x3 [4][3]float32

// Matrix2x3 is two rows of three columns. Material parameters store it
// column by column.
type Matrix2x3 [2][3]float32

func (d *decoder) matrix4x3() Matrix4x3 {
	var m Matrix4x3
	for r := range m {
		for c := range m[r] {
			m[r][c] = d.f32()
		}
	}
	return m
}
