package world

import (
	"fmt"
	"strings"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/entities"
)

func (s *Session) hudView() protocol.HUDView {
	e := s.econ
	v := protocol.HUDView{
		Money:    fmt.Sprintf("Money: $%d", e.Money),
		Cart:     fmt.Sprintf("Cart: $%d", e.CartTotal),
		List:     listLine(s),
		Molotovs: fmt.Sprintf("Molotovs: %d", e.Molotovs),
		Weapon:   "Weapon: none",
	}
	if e.HasWeapon {
		v.Weapon = fmt.Sprintf("Ammo: %d", e.Ammo)
	}
	for _, fx := range s.reg.Effects {
		switch fx.Kind {
		case entities.EffectToast:
			v.Toast = fx.Text
		case entities.EffectWarning:
			v.Warning = fx.Text
		}
	}
	return v
}

// HUD returns the status strings for the current state.
func (s *Session) HUD() protocol.HUDView { return s.hudView() }

func listLine(s *Session) string {
	parts := make([]string, 0, len(s.econ.List()))
	for _, le := range s.econ.List() {
		parts = append(parts, fmt.Sprintf("%s x%d", le.Name, s.econ.Remaining(le.Name)))
	}
	return "List: " + strings.Join(parts, ", ")
}

// FrameView builds the FRAME message and drains the pending scene deltas
// and events.
func (s *Session) FrameView(dt float64) protocol.FrameMsg {
	b := s.body
	msg := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Frame:           s.frame,
		DT:              dt,
		Player: protocol.PlayerView{
			Pos:      b.Pos.ToArray(),
			Yaw:      b.Yaw,
			Pitch:    b.Pitch,
			Grounded: b.Grounded(s.params.move),
		},
		HUD:      s.hudView(),
		Entities: s.entityViews(),
		Added:    s.added,
		Removed:  s.removed,
		Events:   s.events,
	}
	if s.menu {
		mv := &protocol.MenuView{}
		for i, o := range s.offers() {
			mv.Options = append(mv.Options, protocol.MenuOption{Option: i + 1, Kind: o.Kind, Label: o.Label, Cost: o.Cost})
		}
		msg.Menu = mv
	}
	s.added, s.removed, s.events = nil, nil, nil
	return msg
}

func (s *Session) resetPending() {
	s.added, s.removed, s.events = s.added[:0], s.removed[:0], s.events[:0]
}

func (s *Session) entityViews() []protocol.EntityView {
	r := s.reg
	out := make([]protocol.EntityView, 0, len(r.Items)+len(r.NPCs)+len(r.Molotovs)+len(r.Bullets)+len(r.Effects)+len(r.Flyers))
	for _, it := range r.Items {
		out = append(out, protocol.EntityView{ID: it.ID, Kind: entities.KindItem.String(), Pos: it.Pos.ToArray(), Label: it.Name})
	}
	for _, n := range r.NPCs {
		out = append(out, protocol.EntityView{ID: n.ID, Kind: entities.KindNPC.String(), Pos: n.Pos.ToArray(), Yaw: n.Facing})
	}
	for _, m := range r.Molotovs {
		out = append(out, protocol.EntityView{ID: m.ID, Kind: entities.KindMolotov.String(), Pos: m.Pos.ToArray()})
	}
	for _, b := range r.Bullets {
		out = append(out, protocol.EntityView{ID: b.ID, Kind: entities.KindBullet.String(), Pos: b.Pos.ToArray()})
	}
	for _, e := range r.Effects {
		if !sceneEffect(e) {
			continue
		}
		out = append(out, protocol.EntityView{ID: e.ID, Kind: entities.KindEffect.String(), Pos: e.Pos.ToArray(), Label: e.Kind.String()})
	}
	for _, f := range r.Flyers {
		out = append(out, protocol.EntityView{ID: f.ID, Kind: entities.KindFlyer.String(), Pos: f.Pos.ToArray(), Label: f.Kind.String()})
	}
	return out
}
