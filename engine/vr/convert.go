package vr

// ConvertPose converts a runtime 3x4 pose into a column-major 4x4 engine transform.
// The runtime is right-handed and the engine left-handed, so every term touching
// the z axis exactly once is negated.
//
// Parameters:
//   - m: the runtime pose
//
// Returns:
//   - [16]float32: the engine transform (column-major)
func ConvertPose(m HmdMatrix34) [16]float32 {
	return [16]float32{
		m.M[0][0], m.M[1][0], -m.M[2][0], 0,
		m.M[0][1], m.M[1][1], -m.M[2][1], 0,
		-m.M[0][2], -m.M[1][2], m.M[2][2], 0,
		m.M[0][3], m.M[1][3], -m.M[2][3], 1,
	}
}

// ConvertProjection converts a runtime 4x4 projection into a column-major engine projection,
// negating the z column.
//
// Parameters:
//   - m: the runtime projection, built with ProjectionNear and ProjectionFar
//
// Returns:
//   - [16]float32: the engine projection (column-major)
func ConvertProjection(m HmdMatrix44) [16]float32 {
	return [16]float32{
		m.M[0][0], m.M[1][0], m.M[2][0], m.M[3][0],
		m.M[0][1], m.M[1][1], m.M[2][1], m.M[3][1],
		-m.M[0][2], -m.M[1][2], -m.M[2][2], -m.M[3][2],
		m.M[0][3], m.M[1][3], m.M[2][3], m.M[3][3],
	}
}
