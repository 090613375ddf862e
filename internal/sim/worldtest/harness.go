package worldtest

import (
	"fmt"
	"testing"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	world "shoprun.game/internal/sim/world"
	"shoprun.game/internal/sim/world/logic/mathx"
)

// FrameDT is the step the harness advances by; it matches a 30 Hz display.
const FrameDT = 0.033

// Harness is a small black-box test helper for driving a session via exported APIs:
// - Do()/Select() dispatch actions and advance one frame
// - Hold() keeps keys down for a number of frames
// - Place/AimAt stage deterministic preconditions
//
// It intentionally avoids touching session internals so tests can live outside the world package.
type Harness struct {
	T     *testing.T
	Store *catalogs.Store
	S     *world.Session

	last     protocol.FrameMsg
	lastAcks []protocol.AckMsg
	seq      uint64
}

func NewHarness(t *testing.T, tun tuning.Tuning, seed int64) *Harness {
	t.Helper()
	store, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	s, err := world.New(world.SessionConfig{ID: "harness", Seed: seed, Tuning: tun, Store: store})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	h := &Harness{T: t, Store: store, S: s}
	h.StepNoop()
	return h
}

// Quiet returns default tuning with the random decorations switched off.
func Quiet() tuning.Tuning {
	t := tuning.Defaults()
	t.Features.Flyers = false
	return t
}

func (h *Harness) step(in protocol.InputMsg) protocol.FrameMsg {
	h.T.Helper()
	h.seq++
	in.Type = protocol.TypeInput
	in.ProtocolVersion = protocol.Version
	in.Seq = h.seq
	h.lastAcks = h.S.ApplyInput(in)
	h.S.Step(FrameDT)
	h.last = h.S.FrameView(FrameDT)
	return h.last
}

func (h *Harness) StepNoop() protocol.FrameMsg {
	h.T.Helper()
	return h.step(protocol.InputMsg{})
}

// Do dispatches the named actions in order within one frame and returns the last ack.
func (h *Harness) Do(names ...string) protocol.AckMsg {
	h.T.Helper()
	reqs := make([]protocol.ActionReq, 0, len(names))
	for i, n := range names {
		reqs = append(reqs, protocol.ActionReq{ID: actionID(h.seq+1, i), Name: n})
	}
	h.step(protocol.InputMsg{Actions: reqs})
	if len(h.lastAcks) == 0 {
		return protocol.AckMsg{}
	}
	return h.lastAcks[len(h.lastAcks)-1]
}

func (h *Harness) Select(option int) protocol.AckMsg {
	h.T.Helper()
	h.step(protocol.InputMsg{Actions: []protocol.ActionReq{{Name: protocol.ActionMenuSelect, Option: option}}})
	return h.lastAcks[0]
}

// Hold presses keys for n frames, then releases them.
func (h *Harness) Hold(keys protocol.HeldKeys, n int) protocol.FrameMsg {
	h.T.Helper()
	for i := 0; i < n; i++ {
		in := protocol.InputMsg{}
		if i == 0 {
			in.Keys = &keys
		}
		h.step(in)
	}
	return h.step(protocol.InputMsg{Keys: &protocol.HeldKeys{}})
}

func (h *Harness) Place(pos [3]float64, yaw, pitch float64) {
	h.S.Place(mathx.FromArray(pos), yaw, pitch)
}

func (h *Harness) AimAt(pos [3]float64) { h.S.AimAt(mathx.FromArray(pos)) }

func (h *Harness) LastFrame() protocol.FrameMsg { return h.last }

func (h *Harness) Acks() []protocol.AckMsg { return h.lastAcks }

// Entities lists live entities of a kind from the last frame.
func (h *Harness) Entities(kind string) []protocol.EntityView {
	var out []protocol.EntityView
	for _, e := range h.last.Entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Item finds a shelf item by label in the last frame.
func (h *Harness) Item(label string) (protocol.EntityView, bool) {
	for _, e := range h.Entities("ITEM") {
		if e.Label == label {
			return e, true
		}
	}
	return protocol.EntityView{}, false
}

// BuyItem walks up to the named item, looks at it and interacts.
func (h *Harness) BuyItem(label string) protocol.AckMsg {
	h.T.Helper()
	it, ok := h.Item(label)
	if !ok {
		h.T.Fatalf("no %s on the shelves", label)
	}
	h.Place([3]float64{it.Pos[0], 1.6, it.Pos[2] + 2}, 0, 0)
	h.AimAt(it.Pos)
	return h.Do(protocol.ActionInteract)
}

func actionID(seq uint64, i int) string {
	return fmt.Sprintf("K_%d_%d", seq, i)
}
