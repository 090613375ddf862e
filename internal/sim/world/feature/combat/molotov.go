package combat

import (
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world/logic/mathx"
)

type MolotovParams struct {
	Gravity         float64
	GravityScale    float64
	GroundThreshold float64
	BlastRadius     float64
	TorsoHeight     float64

	// Molotovs outside these planar bounds are dropped without a blast.
	BoundsMin [2]float64
	BoundsMax [2]float64
}

// Detonation reports one molotov leaving play. Victim is set when an NPC
// was caught in the blast; Culled means it left the store and made no blast.
type Detonation struct {
	Molotov *entities.Molotov
	Pos     mathx.Vec3
	Victim  *entities.NPC
	Culled  bool
}

// Throw builds a molotov leaving origin along dir with an upward lift.
func Throw(origin, dir mathx.Vec3, speed, lift float64) *entities.Molotov {
	v := dir.Normalize().Scale(speed)
	v.Y += lift
	return &entities.Molotov{Pos: origin, Vel: v}
}

// AdvanceMolotovs integrates every live molotov and resolves detonations.
// Detonated molotovs and their victims are removed from reg. Each molotov
// takes at most one NPC, the first in registry order.
func AdvanceMolotovs(reg *entities.Registry, p MolotovParams, dt float64) []Detonation {
	if len(reg.Molotovs) == 0 {
		return nil
	}
	var out []Detonation
	blastSq := p.BlastRadius * p.BlastRadius
	torso := mathx.V(0, p.TorsoHeight, 0)

	reg.Molotovs, _ = entities.Filter(reg.Molotovs, func(m *entities.Molotov) bool {
		m.Vel.Y -= p.Gravity * dt * p.GravityScale
		m.Pos = m.Pos.Add(m.Vel.Scale(dt))

		for _, n := range reg.NPCs {
			if mathx.DistSq(m.Pos, n.Pos.Add(torso)) < blastSq {
				out = append(out, Detonation{Molotov: m, Pos: m.Pos, Victim: n})
				reg.RemoveNPC(n.ID)
				return false
			}
		}
		if m.Pos.Y <= p.GroundThreshold {
			out = append(out, Detonation{Molotov: m, Pos: m.Pos})
			return false
		}
		if outside(m.Pos, p.BoundsMin, p.BoundsMax) {
			out = append(out, Detonation{Molotov: m, Pos: m.Pos, Culled: true})
			return false
		}
		return true
	})
	return out
}

func outside(p mathx.Vec3, lo, hi [2]float64) bool {
	if lo == hi {
		return false
	}
	return p.X < lo[0] || p.X > hi[0] || p.Z < lo[1] || p.Z > hi[1]
}
