package core

import "math"

// MeanEarthRadiusKm is the mean Earth radius used for great-circle
// distances (kilometres).
const MeanEarthRadiusKm = 6371.0

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// clampCos keeps an almost-unit dot product inside acos's domain.
func clampCos(c float64) float64 {
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}
