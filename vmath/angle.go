package vmath

import "math"

// Degree based helpers, bullet directions are authored in degrees

func Radians(deg float64) float64 { return deg * math.Pi / 180 }
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// NormalizeDegrees wraps deg into (-180, 180]
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Heading returns the unit vector for a direction in degrees
// 0 points toward the top of the playfield and angles grow clockwise
// yDown selects screen coordinates where "up" is negative y
func Heading(deg float64, yDown bool) Vec2 {
	r := Radians(deg)
	s, c := math.Sincos(r)
	if yDown {
		return Vec2{s, -c}
	}
	return Vec2{s, c}
}

// DirectionTo is the inverse of Heading for the vector from -> to
func DirectionTo(from, to Vec2, yDown bool) float64 {
	d := to.Sub(from)
	if yDown {
		return Degrees(math.Atan2(d.X, -d.Y))
	}
	return Degrees(math.Atan2(d.X, d.Y))
}
