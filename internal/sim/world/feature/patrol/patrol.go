package patrol

import (
	"math"

	"shoprun.game/internal/sim/entities"
)

// Advance walks every NPC along z. An NPC that crosses the track end is
// clamped back onto it, turned around, and its facing rotated by π.
func Advance(npcs []*entities.NPC, minZ, maxZ, dt float64) {
	for _, n := range npcs {
		n.Pos.Z += n.Dir * n.Speed * dt
		switch {
		case n.Pos.Z > maxZ:
			n.Pos.Z = maxZ
		case n.Pos.Z < minZ:
			n.Pos.Z = minZ
		default:
			continue
		}
		n.Dir = -n.Dir
		n.Facing = normalizeAngle(n.Facing + math.Pi)
	}
}

// FacingFor is the yaw an NPC walking in dir starts with.
func FacingFor(dir float64) float64 {
	if dir < 0 {
		return math.Pi
	}
	return 0
}

func normalizeAngle(a float64) float64 {
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	for a < 0 {
		a += 2 * math.Pi
	}
	return a
}
