package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"

	persistlog "shoprun.game/internal/persistence/log"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world"
)

func main() {
	var (
		configDir = flag.String("configs", "./configs", "config directory")
		seed      = flag.Int64("seed", 0, "session seed (0 picks one from the clock)")
		logDir    = flag.String("log_dir", "", "write frame/audit logs under this dir (optional)")
		scale     = flag.Float64("scale", 18, "pixels per meter")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[play] ", log.LstdFlags|log.Lmicroseconds)

	store, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load store: %v", err)
	}
	tun, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		logger.Printf("load tuning: %v; using defaults", err)
		tun = tuning.Defaults()
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	s, err := world.New(world.SessionConfig{ID: uuid.NewString(), Seed: *seed, Tuning: tun, Store: store})
	if err != nil {
		logger.Fatalf("session: %v", err)
	}
	if *logDir != "" {
		dir := filepath.Join(*logDir, s.ID())
		fl, al := persistlog.NewFrameLogger(dir), persistlog.NewAuditLogger(dir)
		defer fl.Close()
		defer al.Close()
		s.SetFrameLogger(fl)
		s.SetAuditLogger(al)
		logger.Printf("logging session %s to %s", s.ID(), dir)
	}

	g := newGame(s, *scale, logger)
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Shop Run")
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		logger.Fatalf("run: %v", err)
	}
	st := s.Stats()
	logger.Printf("bye: frames=%d wins=%d kills=%d stolen=$%d", s.CurrentFrame(), st.Wins, st.Kills, st.Stolen)
}
