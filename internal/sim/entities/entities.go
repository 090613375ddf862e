package entities

import (
	"fmt"

	"shoprun.game/internal/sim/world/logic/mathx"
)

type Kind uint8

const (
	KindItem Kind = iota + 1
	KindNPC
	KindMolotov
	KindBullet
	KindEffect
	KindFlyer
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "ITEM"
	case KindNPC:
		return "NPC"
	case KindMolotov:
		return "MOLOTOV"
	case KindBullet:
		return "BULLET"
	case KindEffect:
		return "EFFECT"
	case KindFlyer:
		return "FLYER"
	default:
		return fmt.Sprintf("KIND_%d", uint8(k))
	}
}

func (k Kind) idPrefix() string {
	switch k {
	case KindItem:
		return "I"
	case KindNPC:
		return "N"
	case KindMolotov:
		return "M"
	case KindBullet:
		return "B"
	case KindEffect:
		return "E"
	case KindFlyer:
		return "F"
	default:
		return "X"
	}
}

// Ref is the handle the scene collaborator sees for add/remove calls.
type Ref struct {
	Kind Kind
	ID   string
}

type Item struct {
	ID    string
	Name  string
	Price int
	// Paid items are free to take (pre-paid vending drinks).
	Paid bool
	// Warn names a one-shot warning raised the first time such an item is taken.
	Warn string
	Pos  mathx.Vec3
	Size float64
}

func (it *Item) Ref() Ref { return Ref{Kind: KindItem, ID: it.ID} }

// Bounds is the item's axis-aligned box.
func (it *Item) Bounds() (mathx.Vec3, mathx.Vec3) {
	h := it.Size / 2
	d := mathx.V(h, h, h)
	return it.Pos.Sub(d), it.Pos.Add(d)
}

type NPC struct {
	ID     string
	Wallet int
	Dir    float64 // +1 or -1 along the patrol axis
	Speed  float64
	Pos    mathx.Vec3
	Facing float64
}

func (n *NPC) Ref() Ref { return Ref{Kind: KindNPC, ID: n.ID} }

type Molotov struct {
	ID  string
	Pos mathx.Vec3
	Vel mathx.Vec3
}

func (m *Molotov) Ref() Ref { return Ref{Kind: KindMolotov, ID: m.ID} }

type Bullet struct {
	ID        string
	Pos       mathx.Vec3
	Vel       mathx.Vec3
	TTL       float64
	Travelled float64
}

func (b *Bullet) Ref() Ref { return Ref{Kind: KindBullet, ID: b.ID} }

type EffectKind uint8

const (
	EffectExplosion EffectKind = iota + 1
	EffectMuzzle
	EffectToast
	EffectWarning
)

func (k EffectKind) String() string {
	switch k {
	case EffectExplosion:
		return "EXPLOSION"
	case EffectMuzzle:
		return "MUZZLE"
	case EffectToast:
		return "TOAST"
	case EffectWarning:
		return "WARNING"
	default:
		return fmt.Sprintf("EFFECT_%d", uint8(k))
	}
}

// Effect is a transient visual with a remaining lifetime, aged by the frame.
type Effect struct {
	ID       string
	Kind     EffectKind
	Pos      mathx.Vec3
	Text     string
	TTL      float64
	Duration float64
}

func (e *Effect) Ref() Ref { return Ref{Kind: KindEffect, ID: e.ID} }

// Alpha fades linearly from 1 to 0 over the effect's duration.
func (e *Effect) Alpha() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return mathx.Clamp(e.TTL/e.Duration, 0, 1)
}

type FlyerKind uint8

const (
	FlyerPig FlyerKind = iota + 1
	FlyerCloud
)

func (k FlyerKind) String() string {
	if k == FlyerPig {
		return "PIG"
	}
	return "CLOUD"
}

type Flyer struct {
	ID   string
	Kind FlyerKind
	Pos  mathx.Vec3
	Vel  mathx.Vec3
	TTL  float64
}

func (f *Flyer) Ref() Ref { return Ref{Kind: KindFlyer, ID: f.ID} }
