package world

import (
	"fmt"
	"strings"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world/feature/combat"
	"shoprun.game/internal/sim/world/feature/movement"
	"shoprun.game/internal/sim/world/feature/proximity"
	"shoprun.game/internal/sim/world/logic/mathx"
)

// Dispatch applies one discrete action. It performs at most one state
// transition and raises at most one toast.
func (s *Session) Dispatch(a protocol.ActionReq) ActionResult {
	var r ActionResult
	switch a.Name {
	case protocol.ActionInteract:
		r = s.interact()
	case protocol.ActionMug:
		r = s.mug()
	case protocol.ActionJump:
		r = s.jump()
	case protocol.ActionThrow:
		r = s.throw()
	case protocol.ActionFire:
		r = s.fire()
	case protocol.ActionMenuSelect:
		r = s.menuSelect(a.Option)
	default:
		return rejected(protocol.ErrProtoBadRequest, "")
	}
	s.toast(r.Message)
	return r
}

// interact resolves the context action. The first matching rule wins.
func (s *Session) interact() ActionResult {
	if s.menu {
		s.menu = false
		return accepted("")
	}
	pos := s.body.Pos
	if it := proximity.NearestFreeItem(pos, s.reg.Items, s.tun.Player.PickupRadius); it != nil {
		return s.take(it)
	}
	if it := proximity.LookedAtItem(pos, s.body.Look(), s.reg.Items, s.tun.Player.InteractReach); it != nil {
		return s.take(it)
	}
	p := s.params
	switch {
	case proximity.IsNear(pos, p.shopCounter.pos, p.shopCounter.radius):
		s.menu = true
		return accepted(s.menuPrompt())
	case proximity.IsNear(pos, p.checkout.pos, p.checkout.radius):
		return s.checkout()
	case s.tun.Features.Vending && proximity.IsNear(pos, p.vending.pos, p.vending.radius):
		return s.vend()
	}
	return rejected(protocol.ErrNoTarget, "")
}

func (s *Session) take(it *entities.Item) ActionResult {
	before := s.econ.Money
	ok, code, msg := s.econ.Purchase(it)
	if !ok {
		return rejected(code, msg)
	}
	s.reg.RemoveItem(it.ID)
	s.announceRemove(it.Ref())
	s.stats.Purchases++
	s.emit(protocol.Event{"type": "PURCHASE", "item": it.Name, "price": before - s.econ.Money})
	s.audit("PURCHASE", it.Name, s.econ.Money-before, "")
	s.maybeWarn(it.Warn)
	return accepted(msg)
}

// maybeWarn raises a tag's warning once per session.
func (s *Session) maybeWarn(tag string) {
	if tag == "" || !s.tun.Features.Warning || s.warned[tag] {
		return
	}
	text, ok := s.store.Warnings[tag]
	if !ok {
		return
	}
	s.warned[tag] = true
	s.addEffect(&entities.Effect{Kind: entities.EffectWarning, Text: text, TTL: s.tun.Effects.WarningTTLSec})
	s.emit(protocol.Event{"type": "WARNING", "tag": tag, "text": text})
}

func (s *Session) checkout() ActionResult {
	paid := s.econ.CartTotal
	ok, code, msg := s.econ.Checkout()
	if !ok {
		return rejected(code, msg)
	}
	s.stats.Wins++
	s.emit(protocol.Event{"type": "WIN", "paid": paid})
	s.audit("CHECKOUT", "", 0, fmt.Sprintf("paid %d", paid))
	return accepted(msg)
}

func (s *Session) vend() ActionResult {
	ok, code, msg := s.econ.Vend(s.tun.Economy.VendPrice)
	if !ok {
		return rejected(code, msg)
	}
	vi := s.store.VendItem
	it := s.reg.AddItem(&entities.Item{
		Name: vi.Name,
		Paid: true,
		Warn: vi.Warn,
		Pos:  s.params.vending.pos.Add(mathx.FromArray(vi.Offset)),
		Size: s.store.ItemSize,
	})
	s.announceAdd(it.Ref())
	s.audit("VEND", vi.Name, -s.tun.Economy.VendPrice, "")
	return accepted(msg)
}

func (s *Session) menuPrompt() string {
	var b strings.Builder
	b.WriteString("Shop:")
	for i, o := range s.offers() {
		fmt.Fprintf(&b, " %d) %s $%d", i+1, o.Label, o.Cost)
	}
	return b.String()
}

// offers lists what the counter sells with the current features.
func (s *Session) offers() []catalogs.Offer {
	out := make([]catalogs.Offer, 0, len(s.store.Offers))
	for _, o := range s.store.Offers {
		if o.Kind != catalogs.OfferMolotov && !s.tun.Features.Weapon {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (s *Session) menuSelect(option int) ActionResult {
	if !s.menu {
		return rejected(protocol.ErrMenuClosed, "")
	}
	offers := s.offers()
	if option < 1 || option > len(offers) {
		return rejected(protocol.ErrBadOption, "No such option.")
	}
	o := offers[option-1]
	ok, code, msg := s.econ.BuyConsumable(o)
	if !ok {
		return rejected(code, msg)
	}
	s.audit("BUY", o.Kind, -o.Cost, "")
	return accepted(msg)
}

func (s *Session) mug() ActionResult {
	npc := proximity.NearestNPC(s.body.Pos, s.reg.NPCs, s.tun.Mug.Radius)
	roll := 0
	if npc != nil && npc.Wallet > 0 {
		m := s.tun.Mug
		roll = m.MinSteal + s.rng.Intn(m.MaxSteal-m.MinSteal+1)
	}
	amount, ok, code, msg := s.econ.Mug(npc, roll)
	if !ok {
		return rejected(code, msg)
	}
	s.stats.Stolen += amount
	s.emit(protocol.Event{"type": "MUG", "npc": npc.ID, "amount": amount})
	s.audit("MUG", npc.ID, amount, "")
	return accepted(msg)
}

func (s *Session) jump() ActionResult {
	if !s.tun.Features.Jump {
		return rejected(protocol.ErrDisabled, "")
	}
	if !movement.Jump(&s.body, s.params.move) {
		return rejected(protocol.ErrGrounded, "")
	}
	return accepted("")
}

func (s *Session) throw() ActionResult {
	ok, code, msg := s.econ.TakeMolotov()
	if !ok {
		return rejected(code, msg)
	}
	c := s.tun.Combat
	b := s.body
	hand := b.Pos.Add(mathx.ToView(b.Yaw, b.Pitch, mathx.FromArray(c.ThrowOffset)))
	m := s.reg.AddMolotov(combat.Throw(hand, b.Look(), c.MolotovSpeed, c.MolotovLift))
	s.announceAdd(m.Ref())
	s.audit("THROW", m.ID, 0, "")
	return accepted(msg)
}

func (s *Session) fire() ActionResult {
	if !s.tun.Features.Weapon {
		return rejected(protocol.ErrDisabled, "")
	}
	ok, code, msg := s.econ.SpendRound()
	if !ok {
		return rejected(code, msg)
	}
	b := s.body
	muzzle := b.Pos.Add(mathx.ToView(b.Yaw, b.Pitch, mathx.FromArray(s.tun.Combat.MuzzleOffset)))
	shot := combat.Fire(s.reg, muzzle, b.Look(), s.params.fire)
	s.announceAdd(shot.Bullet.Ref())
	s.addEffect(&entities.Effect{Kind: entities.EffectMuzzle, Pos: muzzle, TTL: s.tun.Combat.BulletTTLSec / 2})
	if shot.Victim != nil {
		s.kill(shot.Victim, "FIRE")
	}
	return accepted(msg)
}

func (s *Session) kill(n *entities.NPC, by string) {
	s.announceRemove(n.Ref())
	s.stats.Kills++
	s.emit(protocol.Event{"type": "KILL", "npc": n.ID, "by": by})
	s.audit("KILL", n.ID, 0, by)
}
