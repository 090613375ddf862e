package world

import (
	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/entities"
)

// Toasts and warnings live in the HUD, not in the scene.
func sceneEffect(e *entities.Effect) bool {
	return e.Kind != entities.EffectToast && e.Kind != entities.EffectWarning
}

func (s *Session) announceAdd(ref entities.Ref) {
	s.added = append(s.added, ref.ID)
	if s.scene != nil {
		s.scene.Add(ref)
	}
}

func (s *Session) announceRemove(ref entities.Ref) {
	s.removed = append(s.removed, ref.ID)
	if s.scene != nil {
		s.scene.Remove(ref)
	}
}

func (s *Session) addEffect(e *entities.Effect) *entities.Effect {
	s.reg.AddEffect(e)
	if sceneEffect(e) {
		s.announceAdd(e.Ref())
	}
	return e
}

func (s *Session) dropEffect(e *entities.Effect) {
	if sceneEffect(e) {
		s.announceRemove(e.Ref())
	}
}

// toast replaces any live toast with msg.
func (s *Session) toast(msg string) {
	if msg == "" {
		return
	}
	s.reg.Effects, _ = entities.Filter(s.reg.Effects, func(e *entities.Effect) bool {
		return e.Kind != entities.EffectToast
	})
	s.addEffect(&entities.Effect{Kind: entities.EffectToast, Text: msg, TTL: s.tun.Effects.ToastTTLSec})
	if s.hud != nil {
		s.hud.Toast(msg)
	}
}

func (s *Session) emit(ev protocol.Event) {
	ev["frame"] = s.frame
	s.events = append(s.events, ev)
}

func (s *Session) audit(action, target string, delta int, reason string) {
	if s.auditLogger == nil {
		return
	}
	_ = s.auditLogger.WriteAudit(AuditEntry{
		SessionID: s.cfg.ID,
		Frame:     s.frame,
		Action:    action,
		Target:    target,
		Delta:     delta,
		Money:     s.econ.Money,
		Cart:      s.econ.CartTotal,
		Reason:    reason,
	})
}
