package patrol

import (
	"math"
	"testing"

	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world/logic/mathx"
)

func TestAdvance_MovesAlongZ(t *testing.T) {
	n := &entities.NPC{Dir: 1, Speed: 1, Pos: mathx.V(4, 0, 0)}
	Advance([]*entities.NPC{n}, -14, 14, 0.5)
	if n.Pos.Z != 0.5 || n.Pos.X != 4 || n.Dir != 1 {
		t.Fatalf("npc=%+v", n)
	}
}

func TestAdvance_TurnsAtBoundary(t *testing.T) {
	up := &entities.NPC{Dir: 1, Speed: 1.4, Pos: mathx.V(0, 0, 13.99), Facing: FacingFor(1)}
	down := &entities.NPC{Dir: -1, Speed: 0.8, Pos: mathx.V(0, 0, -13.99), Facing: FacingFor(-1)}
	Advance([]*entities.NPC{up, down}, -14, 14, 0.033)
	if up.Pos.Z != 14 || up.Dir != -1 || math.Abs(up.Facing-math.Pi) > 1e-9 {
		t.Fatalf("up=%+v", up)
	}
	if down.Pos.Z != -14 || down.Dir != 1 || math.Abs(down.Facing) > 1e-9 {
		t.Fatalf("down=%+v", down)
	}
	// Next frame walks back inside.
	Advance([]*entities.NPC{up}, -14, 14, 0.033)
	if up.Pos.Z >= 14 || up.Dir != -1 {
		t.Fatalf("did not walk back: %+v", up)
	}
}

func TestAdvance_StaysOnTrack(t *testing.T) {
	n := &entities.NPC{Dir: 1, Speed: 1.4, Pos: mathx.V(0, 0, 0)}
	for i := 0; i < 10000; i++ {
		Advance([]*entities.NPC{n}, -14, 14, 0.033)
		if n.Pos.Z < -14 || n.Pos.Z > 14 {
			t.Fatalf("frame %d: z=%v", i, n.Pos.Z)
		}
	}
}
