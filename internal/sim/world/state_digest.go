package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"

	"shoprun.game/internal/sim/world/logic/mathx"
)

// Digest fingerprints the simulation state for replay verification.
func (s *Session) Digest() string { return s.stateDigest() }

func (s *Session) stateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, s.frame)
	digestWriteU64(h, &tmp, s.reg.NextID())
	digestWriteVec(h, &tmp, s.body.Pos)
	digestWriteF64(h, &tmp, s.body.Yaw)
	digestWriteF64(h, &tmp, s.body.Pitch)
	digestWriteF64(h, &tmp, s.body.VY)
	h.Write([]byte{boolByte(s.menu)})

	e := s.econ
	digestWriteI64(h, &tmp, int64(e.Money))
	digestWriteI64(h, &tmp, int64(e.CartTotal))
	digestWriteI64(h, &tmp, int64(e.Molotovs))
	digestWriteI64(h, &tmp, int64(e.Ammo))
	h.Write([]byte{boolByte(e.HasWeapon)})
	for _, le := range e.List() {
		h.Write([]byte(le.Name))
		digestWriteI64(h, &tmp, int64(e.Bought(le.Name)))
	}

	tags := make([]string, 0, len(s.warned))
	for t := range s.warned {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	for _, t := range tags {
		h.Write([]byte(t))
	}

	r := s.reg
	for _, it := range r.Items {
		h.Write([]byte(it.ID))
		digestWriteVec(h, &tmp, it.Pos)
	}
	for _, n := range r.NPCs {
		h.Write([]byte(n.ID))
		digestWriteI64(h, &tmp, int64(n.Wallet))
		digestWriteF64(h, &tmp, n.Dir)
		digestWriteVec(h, &tmp, n.Pos)
	}
	for _, m := range r.Molotovs {
		h.Write([]byte(m.ID))
		digestWriteVec(h, &tmp, m.Pos)
		digestWriteVec(h, &tmp, m.Vel)
	}
	for _, b := range r.Bullets {
		h.Write([]byte(b.ID))
		digestWriteVec(h, &tmp, b.Pos)
	}
	for _, fx := range r.Effects {
		h.Write([]byte(fx.ID))
		digestWriteF64(h, &tmp, fx.TTL)
	}
	for _, f := range r.Flyers {
		h.Write([]byte(f.ID))
		digestWriteVec(h, &tmp, f.Pos)
	}
	digestWriteF64(h, &tmp, s.spawn.Until)

	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteF64(h hashWriter, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func digestWriteVec(h hashWriter, tmp *[8]byte, v mathx.Vec3) {
	digestWriteF64(h, tmp, v.X)
	digestWriteF64(h, tmp, v.Y)
	digestWriteF64(h, tmp, v.Z)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
