package movement

import (
	"shoprun.game/internal/sim/world/logic/mathx"
)

// Keys is the held-key set sampled each frame.
type Keys struct {
	Forward   bool
	Back      bool
	Left      bool
	Right     bool
	TurnLeft  bool
	TurnRight bool
	Sprint    bool
}

type Params struct {
	EyeHeight       float64
	WalkSpeed       float64
	SprintSpeed     float64
	TurnSpeed       float64
	LookSensitivity float64
	PitchLimit      float64
	JumpSpeed       float64
	Gravity         float64

	BoundsMin [2]float64
	BoundsMax [2]float64
}

// Body is the player's camera rig.
type Body struct {
	Pos   mathx.Vec3
	Yaw   float64
	Pitch float64
	VY    float64
}

func (b *Body) Grounded(p Params) bool {
	return b.VY == 0 && b.Pos.Y <= p.EyeHeight
}

func (b *Body) Look() mathx.Vec3 { return mathx.LookDir(b.Yaw, b.Pitch) }

// Walk applies held movement keys. Diagonals are normalized so speed is the
// same in every direction. The body stays inside the store bounds.
func Walk(b *Body, k Keys, p Params, dt float64) {
	fwd := mathx.Forward(b.Yaw)
	right := mathx.Right(b.Yaw)
	var v mathx.Vec3
	if k.Forward {
		v = v.Add(fwd)
	}
	if k.Back {
		v = v.Sub(fwd)
	}
	if k.Right {
		v = v.Add(right)
	}
	if k.Left {
		v = v.Sub(right)
	}
	speed := p.WalkSpeed
	if k.Sprint {
		speed = p.SprintSpeed
	}
	b.Pos = b.Pos.Add(v.Normalize().Scale(speed * dt))
	b.Pos.X = mathx.Clamp(b.Pos.X, p.BoundsMin[0], p.BoundsMax[0])
	b.Pos.Z = mathx.Clamp(b.Pos.Z, p.BoundsMin[1], p.BoundsMax[1])
}

// Fall integrates vertical velocity and lands the body at eye height.
func Fall(b *Body, p Params, dt float64) {
	if b.VY == 0 && b.Pos.Y <= p.EyeHeight {
		b.Pos.Y = p.EyeHeight
		return
	}
	b.VY -= p.Gravity * dt
	b.Pos.Y += b.VY * dt
	if b.Pos.Y <= p.EyeHeight {
		b.Pos.Y = p.EyeHeight
		b.VY = 0
	}
}

// Jump reports false while airborne.
func Jump(b *Body, p Params) bool {
	if !b.Grounded(p) {
		return false
	}
	b.VY = p.JumpSpeed
	return true
}

func Turn(b *Body, k Keys, p Params, dt float64) {
	if k.TurnLeft {
		b.Yaw += p.TurnSpeed * dt
	}
	if k.TurnRight {
		b.Yaw -= p.TurnSpeed * dt
	}
}

// Look applies a pointer delta in pixels.
func Look(b *Body, dx, dy float64, p Params) {
	b.Yaw -= dx * p.LookSensitivity
	b.Pitch -= dy * p.LookSensitivity
	b.Pitch = mathx.Clamp(b.Pitch, -p.PitchLimit, p.PitchLimit)
}
