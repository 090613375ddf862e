package world

import (
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world/feature/combat"
	"shoprun.game/internal/sim/world/feature/flyers"
	"shoprun.game/internal/sim/world/feature/movement"
	"shoprun.game/internal/sim/world/logic/mathx"
)

// params are the feature parameter blocks, derived once per session.
type params struct {
	move    movement.Params
	molotov combat.MolotovParams
	fire    combat.FireParams
	flyers  flyers.Params

	checkout    zone
	shopCounter zone
	vending     zone
}

type zone struct {
	pos    mathx.Vec3
	radius float64
}

func zoneOf(z catalogs.Zone) zone {
	return zone{pos: mathx.FromArray(z.Pos), radius: z.Radius}
}

func deriveParams(t tuning.Tuning, st *catalogs.Store) params {
	pl, c, f := t.Player, t.Combat, t.Flyers
	return params{
		move: movement.Params{
			EyeHeight:       pl.EyeHeight,
			WalkSpeed:       pl.WalkSpeed,
			SprintSpeed:     pl.SprintSpeed,
			TurnSpeed:       pl.TurnSpeed,
			LookSensitivity: pl.LookSensitivity,
			PitchLimit:      pl.PitchLimit,
			JumpSpeed:       pl.JumpSpeed,
			Gravity:         pl.Gravity,
			BoundsMin:       st.Bounds.Min,
			BoundsMax:       st.Bounds.Max,
		},
		molotov: combat.MolotovParams{
			Gravity:         pl.Gravity,
			GravityScale:    c.MolotovGravityScale,
			GroundThreshold: c.GroundThreshold,
			BlastRadius:     c.BlastRadius,
			TorsoHeight:     c.NPCTorsoHeight,
			BoundsMin:       st.Bounds.Min,
			BoundsMax:       st.Bounds.Max,
		},
		fire: combat.FireParams{
			Range:       c.FireRange,
			TorsoHeight: c.NPCTorsoHeight,
			HitRadius:   c.NPCHitRadius,
			BulletSpeed: c.BulletSpeed,
			BulletTTL:   c.BulletTTLSec,
		},
		flyers: flyers.Params{
			MinInterval: f.MinIntervalSec,
			MaxInterval: f.MaxIntervalSec,
			TTL:         f.TTLSec,
			PigShare:    f.PigShare,
			MinHeight:   f.MinHeight,
			MaxHeight:   f.MaxHeight,
			MinSpeed:    f.MinSpeed,
			MaxSpeed:    f.MaxSpeed,
			BoundsMin:   st.Bounds.Min,
			BoundsMax:   st.Bounds.Max,
		},
		checkout:    zoneOf(st.Zones.Checkout),
		shopCounter: zoneOf(st.Zones.ShopCounter),
		vending:     zoneOf(st.Zones.Vending),
	}
}
