package world

import (
	"testing"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/tuning"
)

// seqRNG replays fixed values; exhausted sequences repeat their last value.
type seqRNG struct {
	ints   []int
	floats []float64
}

func (r *seqRNG) Intn(n int) int {
	v := 0
	if len(r.ints) > 0 {
		v = r.ints[0]
		if len(r.ints) > 1 {
			r.ints = r.ints[1:]
		}
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func (r *seqRNG) Float64() float64 {
	v := 0.0
	if len(r.floats) > 0 {
		v = r.floats[0]
		if len(r.floats) > 1 {
			r.floats = r.floats[1:]
		}
	}
	return v
}

func loadStore(t *testing.T) *catalogs.Store {
	t.Helper()
	st, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return st
}

func newTestSession(t *testing.T, rng RNG, tweak func(*tuning.Tuning)) *Session {
	t.Helper()
	tun := tuning.Defaults()
	tun.Features.Flyers = false
	if tweak != nil {
		tweak(&tun)
	}
	if rng == nil {
		rng = &seqRNG{}
	}
	s, err := New(SessionConfig{ID: "S-test", Seed: 1, Tuning: tun, Store: loadStore(t), RNG: rng})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func act(name string) protocol.ActionReq { return protocol.ActionReq{ID: "K_" + name, Name: name} }

func itemNamed(s *Session, name string) *entities.Item {
	for _, it := range s.reg.Items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

type recScene struct {
	added   []entities.Ref
	removed []entities.Ref
}

func (r *recScene) Add(ref entities.Ref)    { r.added = append(r.added, ref) }
func (r *recScene) Remove(ref entities.Ref) { r.removed = append(r.removed, ref) }

type recHUD struct {
	last   protocol.HUDView
	toasts []string
}

func (h *recHUD) Update(v protocol.HUDView) { h.last = v }
func (h *recHUD) Toast(msg string)          { h.toasts = append(h.toasts, msg) }
