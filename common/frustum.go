package common

import (
	"math"
)

// Plane is the set of points p with Dot3(Normal, p) + Distance = 0.
// Points with a positive value are on the inner side.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the four side planes of a view volume.
// Depth planes are left out: eye projections may use reversed or negated depth,
// where row-combination near and far planes do not hold.
type Frustum struct {
	Planes [4]Plane // Left, Right, Bottom, Top
}

const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
)

// ExtractFrustumFromMatrix extracts the side planes of a view-projection matrix
// (Gribb/Hartmann).
//
// Parameters:
//   - viewProj: the view-projection matrix (16 elements, column-major)
//
// Returns:
//   - Frustum: the frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	var f Frustum

	// Row i of a column-major matrix is (m[i], m[4+i], m[8+i], m[12+i]).
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	w := row(3)
	for i, sign := range [...]struct {
		row  int
		sign float32
	}{
		FrustumLeft:   {0, 1},
		FrustumRight:  {0, -1},
		FrustumBottom: {1, 1},
		FrustumTop:    {1, -1},
	} {
		r := row(sign.row)
		f.Planes[i] = normalizePlane(Plane{
			Normal:   [3]float32{w[0] + sign.sign*r[0], w[1] + sign.sign*r[1], w[2] + sign.sign*r[2]},
			Distance: w[3] + sign.sign*r[3],
		})
	}
	return f
}

// IntersectsSphere reports whether a sphere is at least partly inside every side plane.
//
// Parameters:
//   - center: the sphere center in world space
//   - radius: the sphere radius
//
// Returns:
//   - bool: false if the sphere is entirely outside one plane
func (f Frustum) IntersectsSphere(center [3]float32, radius float32) bool {
	for _, p := range f.Planes {
		if Dot3(p.Normal, center)+p.Distance < -radius {
			return false
		}
	}
	return true
}

func normalizePlane(p Plane) Plane {
	length := float32(math.Sqrt(float64(Dot3(p.Normal, p.Normal))))
	if length == 0 {
		return p
	}
	inv := 1 / length
	p.Normal = [3]float32{p.Normal[0] * inv, p.Normal[1] * inv, p.Normal[2] * inv}
	p.Distance *= inv
	return p
}
