package vr

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/stretchr/testify/assert"
)

// rowMul multiplies two matrices read as row-major arrays. A column-major matrix M
// read that way is its transpose, so rowMul(a, b) holds (BA) in column-major order.
func rowMul(a, b [16]float32) [16]float32 {
	var out [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[r*4+k] * b[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

func rigidTransform(rotate func([]float32, float32), radians, x, y, z float32) [16]float32 {
	var m [16]float32
	rotate(m[:], radians)
	m[12], m[13], m[14] = x, y, z
	return m
}

func TestEyeWorldComposesEyeHeadBase(t *testing.T) {
	s := &sessionImpl{}
	s.headPose = rigidTransform(common.RotationY, 0.7, 0.1, 1.6, 0.2)
	s.eyeOffset[EyeLeft] = rigidTransform(common.RotationX, 0.1, -0.032, 0, 0.015)
	s.eyeOffset[EyeRight] = rigidTransform(common.RotationX, -0.1, 0.032, 0, 0.015)
	base := rigidTransform(common.RotationX, 0.7, 3, 0, -4)

	for _, eye := range [...]Eye{EyeLeft, EyeRight} {
		want := rowMul(rowMul(s.eyeOffset[eye], s.headPose), base)
		got := s.eyeWorld(eye, base)
		assert.True(t, common.ApproxEqual4(want[:], got[:], 1e-5), "%s eye: got %v want %v", eye, got, want)

		var swapped, tmp [16]float32
		common.Mul4(tmp[:], base[:], s.eyeOffset[eye][:])
		common.Mul4(swapped[:], tmp[:], s.headPose[:])
		assert.False(t, common.ApproxEqual4(swapped[:], got[:], 1e-3), "%s eye matches head applied after eye offset", eye)
	}
}

func TestEyeWorldIdentityHeadIsOffsetFromBase(t *testing.T) {
	s := &sessionImpl{headPose: common.IdentityMatrix()}
	common.Translation(s.eyeOffset[EyeLeft][:], -0.032, 0, 0)
	base := rigidTransform(common.RotationY, 1.2, 0, 0, 0)

	got := s.eyeWorld(EyeLeft, base)
	pos := common.TransformPoint(got[:], [3]float32{0, 0, 0})
	want := common.TransformPoint(base[:], [3]float32{-0.032, 0, 0})
	assert.InDeltaSlice(t, want[:], pos[:], 1e-6)
}
