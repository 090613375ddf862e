package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
)

func main() {
	var (
		sessionDir = flag.String("session", "", "session dir containing frames/frames-*.jsonl.zst")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		toFrame    = flag.Uint64("to_frame", 0, "stop after frame (inclusive, optional)")
	)
	flag.Parse()

	if *sessionDir == "" {
		fmt.Fprintln(os.Stderr, "missing -session")
		os.Exit(2)
	}

	store, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load store:", err)
		os.Exit(1)
	}
	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tun, err := tuning.Load(tp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}

	res, err := replaySession(filepath.Join(*sessionDir, "frames"), tun, store, *toFrame)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: session=%s seed=%d checked=%d frames final=%s\n", res.SessionID, res.Seed, res.Checked, res.FinalDigest)
}
