package combat

import (
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world/feature/proximity"
	"shoprun.game/internal/sim/world/logic/mathx"
)

type FireParams struct {
	Range       float64
	TorsoHeight float64
	HitRadius   float64
	BulletSpeed float64
	BulletTTL   float64
}

type Shot struct {
	Victim *entities.NPC
	Dist   float64
	Bullet *entities.Bullet
}

// Fire resolves a shot at once: the nearest NPC on the ray is removed from
// reg. The returned bullet is cosmetic and already registered.
func Fire(reg *entities.Registry, muzzle, dir mathx.Vec3, p FireParams) Shot {
	dir = dir.Normalize()
	var s Shot
	s.Victim, s.Dist = proximity.RayNPC(muzzle, dir, reg.NPCs, p.TorsoHeight, p.HitRadius, p.Range)
	if s.Victim != nil {
		reg.RemoveNPC(s.Victim.ID)
	}
	s.Bullet = reg.AddBullet(&entities.Bullet{
		Pos: muzzle,
		Vel: dir.Scale(p.BulletSpeed),
		TTL: p.BulletTTL,
	})
	return s
}

// AdvanceBullets moves bullets and drops those past their lifetime or travel cap.
func AdvanceBullets(reg *entities.Registry, maxDist, dt float64) []*entities.Bullet {
	var dropped []*entities.Bullet
	reg.Bullets, dropped = entities.Filter(reg.Bullets, func(b *entities.Bullet) bool {
		step := b.Vel.Scale(dt)
		b.Pos = b.Pos.Add(step)
		b.Travelled += step.Len()
		b.TTL -= dt
		if b.TTL <= 0 {
			return false
		}
		return maxDist <= 0 || b.Travelled < maxDist
	})
	return dropped
}

// AgeEffects counts effects down and returns the expired ones.
func AgeEffects(reg *entities.Registry, dt float64) []*entities.Effect {
	var dropped []*entities.Effect
	reg.Effects, dropped = entities.Filter(reg.Effects, func(e *entities.Effect) bool {
		e.TTL -= dt
		return e.TTL > 0
	})
	return dropped
}
