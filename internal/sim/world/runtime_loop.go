package world

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world/feature/combat"
	"shoprun.game/internal/sim/world/feature/flyers"
	"shoprun.game/internal/sim/world/feature/movement"
	"shoprun.game/internal/sim/world/feature/patrol"
)

func (s *Session) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.tun.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []protocol.InputMsg

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-s.inbox:
			pending = append(pending, in)
		case now := <-ticker.C:
			s.tick(now, pending)
			pending = pending[:0]
		}
	}
}

// StepOnce applies recorded inputs and advances by dt using the same ordering
// as the live loop. It is intended for deterministic replays and tests.
func (s *Session) StepOnce(inputs []protocol.InputMsg, dt float64) (frame uint64, digest string) {
	frame = s.frame
	for _, in := range inputs {
		s.ApplyInput(in)
	}
	s.Step(clampStep(dt, s.tun.MaxStepSec))
	s.resetPending()
	return frame, s.stateDigest()
}

func (s *Session) tick(now time.Time, inputs []protocol.InputMsg) {
	stepStart := time.Now()
	var acks []protocol.AckMsg
	for _, in := range inputs {
		acks = append(acks, s.ApplyInput(in)...)
	}
	nowFrame := s.frame
	dt := s.Frame(now)
	digest := s.stateDigest()

	if s.frameLogger != nil {
		// Run reuses the pending buffer; loggers may hold the entry.
		var logged []protocol.InputMsg
		if len(inputs) > 0 {
			logged = append(logged, inputs...)
		}
		_ = s.frameLogger.WriteFrame(FrameLogEntry{
			SessionID: s.cfg.ID,
			Seed:      s.cfg.Seed,
			Frame:     nowFrame,
			DT:        dt,
			Inputs:    logged,
			Digest:    digest,
		})
	}

	view := s.FrameView(dt)
	if s.out != nil {
		if s.acks {
			for _, a := range acks {
				a.Frame = nowFrame
				if b, err := json.Marshal(a); err == nil {
					sendLatest(s.out, b)
				}
			}
		}
		if b, err := json.Marshal(view); err == nil {
			sendLatest(s.out, b)
		}
	}
	s.publishMetrics(float64(time.Since(stepStart).Microseconds()) / 1000.0)
}

// ApplyInput replaces the held keys, applies the look delta, then dispatches
// the actions in order.
func (s *Session) ApplyInput(in protocol.InputMsg) []protocol.AckMsg {
	if k := in.Keys; k != nil {
		s.keys = movement.Keys{
			Forward:   k.Forward,
			Back:      k.Back,
			Left:      k.Left,
			Right:     k.Right,
			TurnLeft:  k.TurnLeft,
			TurnRight: k.TurnRight,
			Sprint:    k.Sprint,
		}
	}
	if finite(in.Look[0]) && finite(in.Look[1]) {
		movement.Look(&s.body, in.Look[0], in.Look[1], s.params.move)
	}
	acks := make([]protocol.AckMsg, 0, len(in.Actions))
	for _, a := range in.Actions {
		r := s.Dispatch(a)
		acks = append(acks, protocol.AckMsg{
			Type:            protocol.TypeAck,
			ProtocolVersion: protocol.Version,
			AckFor:          a.ID,
			Accepted:        r.Accepted,
			Code:            r.Code,
			Message:         r.Message,
		})
	}
	return acks
}

// Frame advances by the wall time since the previous call, clamped to the
// max step. The first call only records the timestamp. It returns the dt used.
func (s *Session) Frame(now time.Time) float64 {
	dt := 0.0
	if s.hasLast {
		dt = now.Sub(s.last).Seconds()
	}
	s.last, s.hasLast = now, true
	dt = clampStep(dt, s.tun.MaxStepSec)
	s.Step(dt)
	return dt
}

func clampStep(dt, max float64) float64 {
	if dt < 0 || !finite(dt) {
		return 0
	}
	if dt > max {
		return max
	}
	return dt
}

// Step runs one frame with an explicit dt: player, NPCs, projectiles,
// effects, flyers, then the HUD.
func (s *Session) Step(dt float64) {
	mp := s.params.move
	movement.Walk(&s.body, s.keys, mp, dt)
	movement.Fall(&s.body, mp, dt)
	movement.Turn(&s.body, s.keys, mp, dt)

	patrol.Advance(s.reg.NPCs, s.store.NPCTrack.MinZ, s.store.NPCTrack.MaxZ, dt)

	for _, d := range combat.AdvanceMolotovs(s.reg, s.params.molotov, dt) {
		s.announceRemove(d.Molotov.Ref())
		if d.Culled {
			continue
		}
		s.addEffect(&entities.Effect{Kind: entities.EffectExplosion, Pos: d.Pos, TTL: s.tun.Combat.ExplosionTTLSec})
		if d.Victim != nil {
			s.kill(d.Victim, "MOLOTOV")
		}
	}

	for _, b := range combat.AdvanceBullets(s.reg, s.tun.Combat.BulletMaxDistance, dt) {
		s.announceRemove(b.Ref())
	}
	for _, e := range combat.AgeEffects(s.reg, dt) {
		s.dropEffect(e)
	}

	if s.tun.Features.Flyers {
		spawned, gone := flyers.Advance(s.reg, &s.spawn, s.rng, s.params.flyers, dt)
		for _, f := range gone {
			s.announceRemove(f.Ref())
		}
		if spawned != nil {
			s.announceAdd(spawned.Ref())
		}
	}

	s.frame++
	if s.hud != nil {
		s.hud.Update(s.hudView())
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
