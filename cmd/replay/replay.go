package main

import (
	"errors"
	"fmt"

	persistlog "shoprun.game/internal/persistence/log"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world"
)

type replayResult struct {
	SessionID   string
	Seed        int64
	Checked     uint64
	FinalDigest string
}

var errStop = errors.New("stop")

// replaySession rebuilds a session from the seed in its first logged frame
// and re-applies every frame, failing on the first digest that differs.
func replaySession(framesDir string, tun tuning.Tuning, store *catalogs.Store, toFrame uint64) (replayResult, error) {
	var (
		res replayResult
		s   *world.Session
	)
	err := persistlog.ReadFrames(framesDir, func(e world.FrameLogEntry) error {
		if toFrame != 0 && e.Frame > toFrame {
			return errStop
		}
		if s == nil {
			if e.Frame != 0 {
				return fmt.Errorf("log starts at frame %d; need frame 0", e.Frame)
			}
			var err error
			s, err = world.New(world.SessionConfig{ID: e.SessionID, Seed: e.Seed, Tuning: tun, Store: store})
			if err != nil {
				return err
			}
			res.SessionID, res.Seed = e.SessionID, e.Seed
		}
		if e.Frame != s.CurrentFrame() {
			return fmt.Errorf("frame mismatch: want=%d got=%d", s.CurrentFrame(), e.Frame)
		}
		frame, digest := s.StepOnce(e.Inputs, e.DT)
		if digest != e.Digest {
			return fmt.Errorf("digest mismatch at frame %d: got=%s want=%s", frame, digest, e.Digest)
		}
		res.Checked++
		res.FinalDigest = digest
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return res, err
	}
	return res, nil
}
