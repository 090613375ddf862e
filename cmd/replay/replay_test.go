package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	persistlog "shoprun.game/internal/persistence/log"
	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world"
)

// recordRun drives a session the way the live loop logs it and returns the
// session dir.
func recordRun(t *testing.T, frames int, corruptAt int) (string, tuning.Tuning, *catalogs.Store) {
	t.Helper()
	store, err := catalogs.Load("../../configs")
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	tun := tuning.Defaults()
	s, err := world.New(world.SessionConfig{ID: "S-replay", Seed: 2024, Tuning: tun, Store: store})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	dir := t.TempDir()
	fl := persistlog.NewFrameLogger(dir)

	script := [][]protocol.InputMsg{
		{{Keys: &protocol.HeldKeys{Forward: true, TurnLeft: true}}},
		nil,
		{{Look: [2]float64{40, -10}, Actions: []protocol.ActionReq{{ID: "K1", Name: protocol.ActionJump}, {ID: "K2", Name: protocol.ActionInteract}}}},
		{{Keys: &protocol.HeldKeys{Back: true, Sprint: true}}},
		nil,
		{{Actions: []protocol.ActionReq{{ID: "K3", Name: protocol.ActionMug}}}},
	}
	for i := 0; i < frames; i++ {
		inputs := script[i%len(script)]
		dt := 0.016
		if i == 0 {
			dt = 0
		}
		frame, digest := s.StepOnce(inputs, dt)
		if i == corruptAt {
			digest = "bogus"
		}
		if err := fl.WriteFrame(world.FrameLogEntry{SessionID: s.ID(), Seed: s.Seed(), Frame: frame, DT: dt, Inputs: inputs, Digest: digest}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return dir, tun, store
}

func TestReplaySession_ReproducesDigests(t *testing.T) {
	dir, tun, store := recordRun(t, 600, -1)
	res, err := replaySession(filepath.Join(dir, "frames"), tun, store, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Checked != 600 || res.Seed != 2024 || res.SessionID != "S-replay" {
		t.Fatalf("res=%+v", res)
	}
}

func TestReplaySession_StopsAtFrame(t *testing.T) {
	dir, tun, store := recordRun(t, 50, -1)
	res, err := replaySession(filepath.Join(dir, "frames"), tun, store, 9)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Checked != 10 {
		t.Fatalf("checked=%d", res.Checked)
	}
}

func TestReplaySession_DetectsDivergence(t *testing.T) {
	dir, tun, store := recordRun(t, 40, 17)
	_, err := replaySession(filepath.Join(dir, "frames"), tun, store, 0)
	if err == nil || !strings.Contains(err.Error(), "frame 17") {
		t.Fatalf("err=%v", err)
	}
}

func TestReplaySession_MissingLogs(t *testing.T) {
	store, _ := catalogs.Load("../../configs")
	dir := filepath.Join(t.TempDir(), "frames")
	_ = os.MkdirAll(dir, 0o755)
	if _, err := replaySession(dir, tuning.Defaults(), store, 0); err == nil {
		t.Fatalf("expected error")
	}
}
