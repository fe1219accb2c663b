// Package geom provides the small set of cylindrical-coordinate helpers
// shared by every stage of the graph construction pipeline.
package geom

import "math"

// DeltaPhi returns phi2-phi1 wrapped into (-pi, pi].
func DeltaPhi(phi1, phi2 float64) float64 {
	dphi := phi2 - phi1
	if dphi > math.Pi {
		dphi -= 2 * math.Pi
	}
	if dphi < -math.Pi {
		dphi += 2 * math.Pi
	}
	return dphi
}

// Eta returns the pseudorapidity of a point at cylindrical radius r and
// longitudinal coordinate z.
func Eta(r, z float64) float64 {
	theta := math.Atan2(r, z)
	return -math.Log(math.Tan(theta / 2))
}

// Polar converts cartesian x,y into cylindrical radius and azimuth.
func Polar(x, y float64) (r, phi float64) {
	return math.Hypot(x, y), math.Atan2(y, x)
}

// Linspace returns n+1 evenly spaced boundary values covering [lo, hi].
// Used to build sector boundary arrays.
func Linspace(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := 0; i <= n; i++ {
		edges[i] = lo + float64(i)*step
	}
	edges[n] = hi
	return edges
}
