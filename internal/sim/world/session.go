package world

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world/feature/economy"
	"shoprun.game/internal/sim/world/feature/flyers"
	"shoprun.game/internal/sim/world/feature/movement"
	"shoprun.game/internal/sim/world/feature/patrol"
	"shoprun.game/internal/sim/world/logic/mathx"
)

type SessionConfig struct {
	ID     string
	Seed   int64
	Tuning tuning.Tuning
	Store  *catalogs.Store
	// RNG overrides the seeded source (tests).
	RNG RNG
}

// Session is one player's run through the store.
// All state must be accessed only from the session loop goroutine.
type Session struct {
	cfg    SessionConfig
	tun    tuning.Tuning
	store  *catalogs.Store
	rng    RNG
	params params

	frame uint64

	body   movement.Body
	keys   movement.Keys
	econ   *economy.State
	reg    *entities.Registry
	spawn  flyers.Spawner
	menu   bool
	warned map[string]bool
	stats  SessionStats

	// Frame scheduler: only the previous timestamp survives between frames.
	last    time.Time
	hasLast bool

	// Pending frame output, drained by FrameView.
	added   []string
	removed []string
	events  []protocol.Event

	scene Scene
	hud   HUD

	inbox chan protocol.InputMsg
	out   chan []byte
	acks  bool

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	frameLogger FrameLogger
	auditLogger AuditLogger

	metrics atomic.Value
}

// SessionStats are the tallies written to the index when a session ends.
type SessionStats struct {
	Wins      int `json:"wins"`
	Kills     int `json:"kills"`
	Stolen    int `json:"stolen"`
	Purchases int `json:"purchases"`
}

func New(cfg SessionConfig) (*Session, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("session: nil store")
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	rng := cfg.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	s := &Session{
		cfg:    cfg,
		tun:    cfg.Tuning,
		store:  cfg.Store,
		rng:    rng,
		econ:   economy.New(cfg.Tuning.Economy.StartingMoney, cfg.Store.ShoppingList),
		reg:    entities.NewRegistry(),
		warned: map[string]bool{},
		inbox:  make(chan protocol.InputMsg, 256),
	}
	s.params = deriveParams(cfg.Tuning, cfg.Store)
	s.body = movement.Body{Pos: mathx.FromArray(cfg.Tuning.Player.Spawn)}

	for _, def := range cfg.Store.Items {
		s.reg.AddItem(&entities.Item{
			Name:  def.Name,
			Price: def.Price,
			Paid:  def.Paid,
			Warn:  def.Warn,
			Pos:   mathx.FromArray(def.Pos),
			Size:  cfg.Store.ItemSize,
		})
	}
	n := cfg.Tuning.NPC
	for _, sp := range cfg.Store.NPCs {
		dir := -1.0
		if s.rng.Float64() > 0.5 {
			dir = 1
		}
		s.reg.AddNPC(&entities.NPC{
			Wallet: n.MinWallet + s.rng.Intn(n.MaxWallet-n.MinWallet+1),
			Dir:    dir,
			Speed:  n.MinSpeed + s.rng.Float64()*(n.MaxSpeed-n.MinSpeed),
			Pos:    mathx.FromArray(sp.Pos),
			Facing: patrol.FacingFor(dir),
		})
	}
	s.publishMetrics(0)
	return s, nil
}

func (s *Session) SetFrameLogger(l FrameLogger) { s.frameLogger = l }
func (s *Session) SetAuditLogger(l AuditLogger) { s.auditLogger = l }
func (s *Session) SetHUD(h HUD)                 { s.hud = h }

// SetScene attaches a scene and announces every live entity to it.
func (s *Session) SetScene(sc Scene) {
	s.scene = sc
	if sc == nil {
		return
	}
	for _, ref := range s.liveRefs() {
		sc.Add(ref)
	}
}

// SetOutput routes FRAME (and, with acks, ACK) messages produced by Run.
func (s *Session) SetOutput(out chan []byte, acks bool) {
	s.out = out
	s.acks = acks
}

func (s *Session) Inputs() chan<- protocol.InputMsg { return s.inbox }

func (s *Session) ID() string                   { return s.cfg.ID }
func (s *Session) Seed() int64                  { return s.cfg.Seed }
func (s *Session) CurrentFrame() uint64         { return s.frame }
func (s *Session) Economy() *economy.State      { return s.econ }
func (s *Session) Registry() *entities.Registry { return s.reg }
func (s *Session) Body() movement.Body          { return s.body }
func (s *Session) MenuOpen() bool               { return s.menu }
func (s *Session) Stats() SessionStats          { return s.stats }
func (s *Session) Store() *catalogs.Store       { return s.store }

// Welcome describes the session to a freshly connected client.
func (s *Session) Welcome() protocol.WelcomeMsg {
	z := s.store.Zones
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       s.cfg.ID,
		Seed:            s.cfg.Seed,
		StoreDigest:     s.store.Digest,
		TuningDigest:    s.tun.Digest(),
		WorldParams: protocol.WorldParams{
			TickRateHz: s.tun.TickRateHz,
			MaxStepSec: s.tun.MaxStepSec,
			BoundsMin:  s.store.Bounds.Min,
			BoundsMax:  s.store.Bounds.Max,
			Zones: []protocol.ZoneView{
				{Name: "CHECKOUT", Pos: z.Checkout.Pos, Radius: z.Checkout.Radius},
				{Name: "SHOP_COUNTER", Pos: z.ShopCounter.Pos, Radius: z.ShopCounter.Radius},
				{Name: "VENDING", Pos: z.Vending.Pos, Radius: z.Vending.Radius},
			},
		},
	}
}

func (s *Session) liveRefs() []entities.Ref {
	var refs []entities.Ref
	for _, it := range s.reg.Items {
		refs = append(refs, it.Ref())
	}
	for _, n := range s.reg.NPCs {
		refs = append(refs, n.Ref())
	}
	for _, m := range s.reg.Molotovs {
		refs = append(refs, m.Ref())
	}
	for _, b := range s.reg.Bullets {
		refs = append(refs, b.Ref())
	}
	for _, e := range s.reg.Effects {
		if sceneEffect(e) {
			refs = append(refs, e.Ref())
		}
	}
	for _, f := range s.reg.Flyers {
		refs = append(refs, f.Ref())
	}
	return refs
}
