package log

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/world"
)

func TestFrameLogger_RoundTripsEntries(t *testing.T) {
	dir := t.TempDir()
	l := NewFrameLogger(dir)
	for i := 0; i < 3; i++ {
		e := world.FrameLogEntry{SessionID: "S1", Seed: 7, Frame: uint64(i), DT: 0.016, Digest: "d"}
		if i == 1 {
			e.Inputs = []protocol.InputMsg{{Type: protocol.TypeInput, Seq: 1, Actions: []protocol.ActionReq{{ID: "K1", Name: protocol.ActionJump}}}}
		}
		if err := l.WriteFrame(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got []world.FrameLogEntry
	if err := ReadFrames(filepath.Join(dir, "frames"), func(e world.FrameLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 || got[2].Frame != 2 || got[0].Seed != 7 {
		t.Fatalf("got=%+v", got)
	}
	if len(got[1].Inputs) != 1 || got[1].Inputs[0].Actions[0].Name != protocol.ActionJump {
		t.Fatalf("inputs lost: %+v", got[1])
	}
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "audit")
	now := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.SetClock(func() time.Time { return now })

	if err := w.Write(map[string]int{"n": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"n": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(map[string]int{"n": 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(dir, "audit")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "audit-2026-03-01-10.jsonl.zst" {
		t.Fatalf("files=%v", files)
	}
	var ns []int
	for _, f := range files {
		if err := ScanFile(f, func(line []byte) error {
			var v map[string]int
			if err := json.Unmarshal(line, &v); err != nil {
				return err
			}
			ns = append(ns, v["n"])
			return nil
		}); err != nil {
			t.Fatalf("scan: %v", err)
		}
	}
	if len(ns) != 3 || ns[0] != 1 || ns[2] != 3 || w.Lines() != 3 {
		t.Fatalf("ns=%v lines=%d", ns, w.Lines())
	}
}

func TestReadFrames_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := ReadFrames(dir, func(world.FrameLogEntry) error { return nil }); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
