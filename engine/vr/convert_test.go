package vr

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/stretchr/testify/assert"
)

func TestConvertPoseIdentity(t *testing.T) {
	m := HmdMatrix34{M: [3][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}}
	assert.Equal(t, common.IdentityMatrix(), ConvertPose(m))
}

func TestConvertPoseLayout(t *testing.T) {
	m := HmdMatrix34{M: [3][4]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}}
	want := [16]float32{
		1, 5, -9, 0,
		2, 6, -10, 0,
		-3, -7, 11, 0,
		4, 8, -12, 1,
	}
	assert.Equal(t, want, ConvertPose(m))
	// Pure function of its input.
	assert.Equal(t, ConvertPose(m), ConvertPose(m))
}

func TestConvertPoseFlipsTranslationZ(t *testing.T) {
	m := HmdMatrix34{M: [3][4]float32{
		{1, 0, 0, 0.5},
		{0, 1, 0, 1.7},
		{0, 0, 1, -2},
	}}
	out := ConvertPose(m)
	p := common.TransformPoint(out[:], [3]float32{0, 0, 0})
	assert.Equal(t, [3]float32{0.5, 1.7, 2}, p)
}

func TestConvertProjectionLayout(t *testing.T) {
	m := HmdMatrix44{M: [4][4]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}}
	want := [16]float32{
		1, 5, 9, 13,
		2, 6, 10, 14,
		-3, -7, -11, -15,
		4, 8, 12, 16,
	}
	assert.Equal(t, want, ConvertProjection(m))
}
