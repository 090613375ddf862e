package world

import (
	"math"

	"shoprun.game/internal/sim/world/logic/mathx"
)

// Place moves the camera rig directly. Harnesses and bots use it to stage
// scenarios; it bypasses bounds and is never driven by client input.
func (s *Session) Place(pos mathx.Vec3, yaw, pitch float64) {
	s.body.Pos = pos
	s.body.Yaw = yaw
	s.body.Pitch = mathx.Clamp(pitch, -s.tun.Player.PitchLimit, s.tun.Player.PitchLimit)
	s.body.VY = 0
}

// AimAt points the camera at target from the current position.
func (s *Session) AimAt(target mathx.Vec3) {
	d := target.Sub(s.body.Pos)
	yaw := math.Atan2(-d.X, -d.Z)
	pitch := math.Atan2(d.Y, math.Hypot(d.X, d.Z))
	s.Place(s.body.Pos, yaw, pitch)
}
