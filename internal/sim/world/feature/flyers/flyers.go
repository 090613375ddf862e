package flyers

import (
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world/logic/mathx"
)

type RNG interface {
	Float64() float64
}

type Params struct {
	MinInterval float64
	MaxInterval float64
	TTL         float64
	PigShare    float64
	MinHeight   float64
	MaxHeight   float64
	MinSpeed    float64
	MaxSpeed    float64

	// Sky box on the floor plane. Flyers enter on one x edge and leave on the other.
	BoundsMin [2]float64
	BoundsMax [2]float64
}

// Spawner counts down to the next flyer. The zero value spawns on the first advance.
type Spawner struct {
	Until float64
}

func between(rng RNG, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// Advance moves live flyers, despawns expired or escaped ones, and spawns a
// new one when the timer fires.
func Advance(reg *entities.Registry, sp *Spawner, rng RNG, p Params, dt float64) (spawned *entities.Flyer, dropped []*entities.Flyer) {
	reg.Flyers, dropped = entities.Filter(reg.Flyers, func(f *entities.Flyer) bool {
		f.Pos = f.Pos.Add(f.Vel.Scale(dt))
		f.TTL -= dt
		if f.TTL <= 0 {
			return false
		}
		return !escaped(f.Pos, p)
	})

	sp.Until -= dt
	if sp.Until > 0 {
		return nil, dropped
	}
	sp.Until = between(rng, p.MinInterval, p.MaxInterval)

	kind := entities.FlyerCloud
	if rng.Float64() < p.PigShare {
		kind = entities.FlyerPig
	}
	speed := between(rng, p.MinSpeed, p.MaxSpeed)
	x, vx := p.BoundsMin[0], speed
	if rng.Float64() < 0.5 {
		x, vx = p.BoundsMax[0], -speed
	}
	spawned = reg.AddFlyer(&entities.Flyer{
		Kind: kind,
		Pos:  mathx.V(x, between(rng, p.MinHeight, p.MaxHeight), between(rng, p.BoundsMin[1], p.BoundsMax[1])),
		Vel:  mathx.V(vx, 0, 0),
		TTL:  p.TTL,
	})
	return spawned, dropped
}

func escaped(pos mathx.Vec3, p Params) bool {
	return pos.X < p.BoundsMin[0] || pos.X > p.BoundsMax[0] || pos.Z < p.BoundsMin[1] || pos.Z > p.BoundsMax[1]
}
