// Package camera provides an orbit camera that circles a target point.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxPitch keeps the camera off the poles so the up vector stays valid.
const maxPitch = math.Pi/2 - 0.01

// Camera orbits Target at Distance. Yaw turns about +Y, Pitch tilts toward it.
type Camera struct {
	Target   r3.Vec
	Yaw      float64 // Radians
	Pitch    float64 // Radians, clamped to (-π/2, π/2)
	Distance float64

	// Field of view in degrees
	Fovy float64

	// Zoom constraints
	MinDistance, MaxDistance float64

	// Radians per second applied by Advance
	AutoRotate float64

	home pose // Restored by Reset
}

type pose struct {
	yaw, pitch, distance float64
}

// New creates a camera looking at target from distance along +Z.
func New(target r3.Vec, distance float64) *Camera {
	c := &Camera{
		Target:      target,
		Pitch:       0.3,
		Distance:    distance,
		Fovy:        45,
		MinDistance: distance * 0.3,
		MaxDistance: distance * 4,
	}
	c.home = pose{yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
	return c
}

// Position returns the camera eye in world coordinates.
func (c *Camera) Position() r3.Vec {
	cp := math.Cos(c.Pitch)
	offset := r3.Vec{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
	return r3.Add(c.Target, offset)
}

// Forward returns the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return r3.Unit(r3.Sub(c.Target, c.Position()))
}

// Rotate orbits by the given yaw and pitch deltas in radians.
func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the orbit radius, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by factor, so factors above 1 move closer.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Advance applies auto rotation for dt seconds.
func (c *Camera) Advance(dt float64) {
	if c.AutoRotate != 0 {
		c.Rotate(c.AutoRotate*dt, 0)
	}
}

// Reset returns the camera to its initial pose.
func (c *Camera) Reset() {
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
	c.Distance = c.home.distance
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
