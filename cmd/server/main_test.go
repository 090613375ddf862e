package main

import (
	"bytes"
	"strings"
	"testing"

	"shoprun.game/internal/sim/world"
	"shoprun.game/internal/transport/ws"
)

func TestWriteMetrics_SessionsAndCounters(t *testing.T) {
	var buf bytes.Buffer
	writeMetrics(&buf, ws.Stats{Connects: 3, Rejected: 1, Active: 1}, []world.SessionMetrics{
		{SessionID: "abc", Frame: 120, Money: 13, NPCs: 3},
	}, nil)
	out := buf.String()
	for _, want := range []string{
		"shoprun_sessions_active 1\n",
		`shoprun_ws_total{event="connect"} 3`,
		`shoprun_ws_total{event="rejected"} 1`,
		`shoprun_session_frame{session="abc"} 120`,
		`shoprun_session_money{session="abc"} 13`,
		`shoprun_session_entities{session="abc",kind="npc"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "shoprun_index_") {
		t.Fatalf("index metrics without an index")
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:1234": true,
		"[::1]:80":       true,
		"10.0.0.2:5555":  false,
		"garbage":        false,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("isLoopbackRemote(%q)=%v want %v", in, got, want)
		}
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("SHOPRUN_TEST_FLAG", "true")
	if !envBool("SHOPRUN_TEST_FLAG", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("SHOPRUN_TEST_FLAG", "nope")
	if envBool("SHOPRUN_TEST_FLAG", false) {
		t.Fatalf("bad value should fall back to default")
	}
}

type countingFrames struct{ n int }

func (c *countingFrames) WriteFrame(world.FrameLogEntry) error { c.n++; return nil }

func TestMultiFrameLogger_ToleratesNil(t *testing.T) {
	c := &countingFrames{}
	m := multiFrameLogger{a: nil, b: c}
	_ = m.WriteFrame(world.FrameLogEntry{})
	if c.n != 1 {
		t.Fatalf("n=%d", c.n)
	}
}
