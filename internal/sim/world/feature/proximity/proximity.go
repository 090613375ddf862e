package proximity

import (
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world/logic/mathx"
)

// IsNear compares planar (x,z) squared distance against radius².
func IsNear(p, anchor mathx.Vec3, radius float64) bool {
	return mathx.PlanarDistSq(p, anchor) < radius*radius
}

// NearestNPC returns the closest NPC strictly within maxDist on the floor
// plane. Ties keep the earlier NPC.
func NearestNPC(p mathx.Vec3, npcs []*entities.NPC, maxDist float64) *entities.NPC {
	var best *entities.NPC
	bestD := maxDist * maxDist
	for _, n := range npcs {
		d := mathx.PlanarDistSq(p, n.Pos)
		if d < bestD {
			best, bestD = n, d
		}
	}
	return best
}

// NearestFreeItem returns the closest paid-for item within radius (3D).
func NearestFreeItem(p mathx.Vec3, items []*entities.Item, radius float64) *entities.Item {
	var best *entities.Item
	bestD := 0.0
	for _, it := range items {
		if !it.Paid {
			continue
		}
		d := mathx.DistSq(p, it.Pos)
		if d > radius*radius {
			continue
		}
		if best == nil || d < bestD {
			best, bestD = it, d
		}
	}
	return best
}

// LookedAtItem casts a ray against item boxes and returns the nearest hit.
// reach <= 0 means unlimited.
func LookedAtItem(origin, dir mathx.Vec3, items []*entities.Item, reach float64) *entities.Item {
	var best *entities.Item
	bestT := 0.0
	for _, it := range items {
		lo, hi := it.Bounds()
		t, ok := mathx.RayAABB(origin, dir, lo, hi)
		if !ok {
			continue
		}
		if reach > 0 && t > reach {
			continue
		}
		if best == nil || t < bestT {
			best, bestT = it, t
		}
	}
	return best
}

// RayNPC returns the nearest NPC whose torso sphere the ray hits within maxDist,
// along with the hit distance.
func RayNPC(origin, dir mathx.Vec3, npcs []*entities.NPC, torsoY, radius, maxDist float64) (*entities.NPC, float64) {
	var best *entities.NPC
	bestT := 0.0
	for _, n := range npcs {
		c := n.Pos.Add(mathx.V(0, torsoY, 0))
		t, ok := mathx.RaySphere(origin, dir, c, radius)
		if !ok {
			continue
		}
		if maxDist > 0 && t > maxDist {
			continue
		}
		if best == nil || t < bestT {
			best, bestT = n, t
		}
	}
	return best, bestT
}
