package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	PlayerEyeHeight = 1.62
	// FallSpeed is how far the observer drops per tick while gravity is on.
	FallSpeed = 0.5
)

// Observer is the entity whose position drives chunk streaming.
type Observer struct {
	Position mgl32.Vec3 // feet
	CamYaw   float64
	CamPitch float64
	Enabled  bool
	Gravity  bool
	OnGround bool
}

// New returns a disabled observer at pos with gravity off, the first phase of
// a spawn.
func New(pos mgl32.Vec3) *Observer {
	return &Observer{Position: pos}
}

// Look turns the camera by the given offsets in degrees.
func (o *Observer) Look(dyaw, dpitch float64) {
	o.CamYaw += dyaw
	o.CamPitch += dpitch

	// Constrain pitch
	if o.CamPitch > 89.0 {
		o.CamPitch = 89.0
	}
	if o.CamPitch < -89.0 {
		o.CamPitch = -89.0
	}
}

// GetFrontVector returns the unit view direction.
func (o *Observer) GetFrontVector() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(o.CamYaw))
	pt := mgl32.DegToRad(float32(o.CamPitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(pt)))
	fy := float32(math.Sin(float64(pt)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(pt)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

func (o *Observer) GetEyePosition() mgl32.Vec3 {
	return o.Position.Add(mgl32.Vec3{0, PlayerEyeHeight, 0})
}

// Fall moves the observer down by at most FallSpeed, stopping on ground when
// one was found below it. Without ground it keeps falling.
func (o *Observer) Fall(ground float32, hasGround bool) {
	if !o.Gravity || !o.Enabled {
		return
	}
	next := o.Position.Y() - FallSpeed
	if hasGround && next <= ground {
		o.Position[1] = ground
		o.OnGround = true
		return
	}
	o.Position[1] = next
	o.OnGround = false
}
