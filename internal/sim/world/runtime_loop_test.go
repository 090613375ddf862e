package world

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world/logic/mathx"
)

func TestFrame_ClampsElapsedTime(t *testing.T) {
	s := newTestSession(t, nil, nil)
	t0 := time.Unix(1000, 0)
	if dt := s.Frame(t0); dt != 0 {
		t.Fatalf("first frame dt=%v", dt)
	}
	if dt := s.Frame(t0.Add(16 * time.Millisecond)); dt < 0.0159 || dt > 0.0161 {
		t.Fatalf("dt=%v", dt)
	}
	if dt := s.Frame(t0.Add(5 * time.Second)); dt != 0.033 {
		t.Fatalf("backgrounded dt=%v", dt)
	}
	if dt := s.Frame(t0); dt != 0 {
		t.Fatalf("clock went backwards, dt=%v", dt)
	}
	if s.CurrentFrame() != 4 {
		t.Fatalf("frame=%d", s.CurrentFrame())
	}
}

func TestStep_HeldKeysMovePlayer(t *testing.T) {
	s := newTestSession(t, nil, nil)
	s.ApplyInput(protocol.InputMsg{Keys: &protocol.HeldKeys{Forward: true, Sprint: true}})
	s.Step(0.1)
	if z := s.Body().Pos.Z; z < 7.349 || z > 7.351 {
		t.Fatalf("z=%v want 7.35", z)
	}
	// Omitted keys keep the held set.
	s.ApplyInput(protocol.InputMsg{Look: [2]float64{0, -100000}})
	s.Step(0.1)
	if s.Body().Pitch != 1.2 {
		t.Fatalf("pitch=%v", s.Body().Pitch)
	}
	if z := s.Body().Pos.Z; z > 6.71 {
		t.Fatalf("keys were dropped: z=%v", z)
	}
	s.ApplyInput(protocol.InputMsg{Keys: &protocol.HeldKeys{}})
	before := s.Body().Pos
	s.Step(0.1)
	if s.Body().Pos != before {
		t.Fatalf("released keys still move the player")
	}
}

func TestStep_MolotovKillReachesSceneAndFrame(t *testing.T) {
	s := newTestSession(t, nil, nil)
	sc := &recScene{}
	s.SetScene(sc)
	npc := s.reg.NPCs[0]
	s.reg.AddMolotov(&entities.Molotov{Pos: npc.Pos.Add(mathx.V(0, 0.9, 0))})
	s.Step(0.001)

	if s.reg.NPC(npc.ID) != nil || s.Stats().Kills != 1 {
		t.Fatalf("npc survived the blast")
	}
	var sawNPC bool
	for _, ref := range sc.removed {
		if ref == npc.Ref() {
			sawNPC = true
		}
	}
	if !sawNPC {
		t.Fatalf("scene removals=%v", sc.removed)
	}
	v := s.FrameView(0.001)
	var kills int
	for _, ev := range v.Events {
		if ev["type"] == "KILL" {
			kills++
		}
	}
	if kills != 1 {
		t.Fatalf("events=%v", v.Events)
	}
	var explosions int
	for _, e := range v.Entities {
		if e.Kind == "EFFECT" && e.Label == "EXPLOSION" {
			explosions++
		}
	}
	if explosions != 1 {
		t.Fatalf("entities=%+v", v.Entities)
	}
	// Deltas are drained once read.
	if again := s.FrameView(0); len(again.Removed) != 0 || len(again.Events) != 0 {
		t.Fatalf("frame deltas not drained")
	}
}

func TestStep_EffectsExpire(t *testing.T) {
	s := newTestSession(t, nil, nil)
	s.toast("hello")
	if s.HUD().Toast != "hello" {
		t.Fatalf("toast=%q", s.HUD().Toast)
	}
	for i := 0; i < 40; i++ {
		s.Step(0.033)
	}
	if s.HUD().Toast != "" || len(s.reg.Effects) != 0 {
		t.Fatalf("toast outlived its ttl: %q", s.HUD().Toast)
	}
}

func TestStep_FlyersSpawnWhenEnabled(t *testing.T) {
	s := newTestSession(t, nil, func(tu *tuning.Tuning) { tu.Features.Flyers = true })
	s.Step(0.016)
	if len(s.reg.Flyers) != 1 {
		t.Fatalf("flyers=%d", len(s.reg.Flyers))
	}
}

func TestStepOnce_DeterministicForSeed(t *testing.T) {
	store := loadStore(t)
	tun := tuning.Defaults()
	run := func() []string {
		s, err := New(SessionConfig{ID: "S1", Seed: 99, Tuning: tun, Store: store})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		inputs := [][]protocol.InputMsg{
			{{Keys: &protocol.HeldKeys{Forward: true}}},
			nil,
			{{Look: [2]float64{120, 30}, Actions: []protocol.ActionReq{{Name: protocol.ActionMug}, {Name: protocol.ActionJump}}}},
			nil,
		}
		var digests []string
		for i := 0; i < 300; i++ {
			_, d := s.StepOnce(inputs[i%len(inputs)], 0.033)
			digests = append(digests, d)
		}
		return digests
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d digest mismatch", i)
		}
	}
}

func TestRun_StreamsFramesAndAcks(t *testing.T) {
	s := newTestSession(t, nil, func(tu *tuning.Tuning) { tu.TickRateHz = 50 })
	out := make(chan []byte, 64)
	s.SetOutput(out, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.Inputs() <- protocol.InputMsg{Type: protocol.TypeInput, Seq: 1, Actions: []protocol.ActionReq{{ID: "K1", Name: protocol.ActionThrow}}}

	var gotAck, gotFrame bool
	deadline := time.After(2 * time.Second)
	for !gotAck || !gotFrame {
		select {
		case b := <-out:
			base, err := protocol.DecodeBase(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			switch base.Type {
			case protocol.TypeAck:
				var ack protocol.AckMsg
				if err := json.Unmarshal(b, &ack); err != nil {
					t.Fatalf("ack: %v", err)
				}
				if ack.AckFor != "K1" || ack.Accepted || ack.Code != protocol.ErrNoMolotovs {
					t.Fatalf("ack=%+v", ack)
				}
				gotAck = true
			case protocol.TypeFrame:
				gotFrame = true
			}
		case <-deadline:
			t.Fatalf("ack=%v frame=%v before deadline", gotAck, gotFrame)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("session.Run did not exit")
	}
	if m := s.Metrics(); m.Frame == 0 || m.SessionID != "S-test" {
		t.Fatalf("metrics=%+v", m)
	}
}

type memFrameLog struct{ entries []FrameLogEntry }

func (m *memFrameLog) WriteFrame(e FrameLogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

type memAuditLog struct{ entries []AuditEntry }

func (m *memAuditLog) WriteAudit(e AuditEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func TestTick_LogsFramesAndAudits(t *testing.T) {
	s := newTestSession(t, nil, nil)
	fl, al := &memFrameLog{}, &memAuditLog{}
	s.SetFrameLogger(fl)
	s.SetAuditLogger(al)
	s.Place(mathx.V(0, 1.6, -8), 0, 0)
	s.AimAt(s.reg.Items[1].Pos)

	now := time.Unix(0, 0)
	s.tick(now, []protocol.InputMsg{{Actions: []protocol.ActionReq{{Name: protocol.ActionInteract}}}})
	s.tick(now.Add(20*time.Millisecond), nil)

	if len(fl.entries) != 2 || fl.entries[0].Frame != 0 || len(fl.entries[0].Inputs) != 1 || fl.entries[1].DT != 0.02 {
		t.Fatalf("frame log=%+v", fl.entries)
	}
	if fl.entries[1].Digest != s.Digest() {
		t.Fatalf("logged digest differs from state")
	}
	if len(al.entries) != 1 || al.entries[0].Action != "PURCHASE" || al.entries[0].Delta != -3 || al.entries[0].Money != 17 {
		t.Fatalf("audit=%+v", al.entries)
	}
}
