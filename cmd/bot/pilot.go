package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"shoprun.game/internal/protocol"
)

// pilot walks the shopping list: it aims straight at the next wanted item,
// walks until it is within reach, buys it, then heads to checkout.
type pilot struct {
	sensitivity float64
	reach       float64
	checkout    [3]float64

	seq      uint64
	cooldown int
	done     bool
}

func newPilot(w protocol.WelcomeMsg, sensitivity float64) *pilot {
	p := &pilot{sensitivity: sensitivity, reach: 1.8}
	for _, z := range w.WorldParams.Zones {
		if z.Name == "CHECKOUT" {
			p.checkout = z.Pos
			p.reach = math.Min(p.reach, z.Radius*0.8)
		}
	}
	return p
}

// wanted parses "List: Apple x2, Milk x0" into the names still needed.
func wanted(list string) []string {
	list = strings.TrimPrefix(list, "List: ")
	var out []string
	for _, part := range strings.Split(list, ", ") {
		i := strings.LastIndex(part, " x")
		if i < 0 {
			continue
		}
		if n, err := strconv.Atoi(part[i+2:]); err == nil && n > 0 {
			out = append(out, part[:i])
		}
	}
	return out
}

// target picks the closest shelf item that is still on the list; with
// nothing left it returns the checkout.
func (p *pilot) target(f protocol.FrameMsg) (pos [3]float64, label string, ok bool) {
	need := map[string]bool{}
	for _, n := range wanted(f.HUD.List) {
		need[n] = true
	}
	if len(need) == 0 {
		return p.checkout, "CHECKOUT", true
	}
	best := math.Inf(1)
	for _, e := range f.Entities {
		if e.Kind != "ITEM" || !need[e.Label] {
			continue
		}
		d := math.Hypot(e.Pos[0]-f.Player.Pos[0], e.Pos[2]-f.Player.Pos[2])
		if d < best {
			best, pos, label, ok = d, e.Pos, e.Label, true
		}
	}
	return pos, label, ok
}

// next builds the input for one frame, or nil when there is nothing to send.
func (p *pilot) next(f protocol.FrameMsg) *protocol.InputMsg {
	if p.done {
		return nil
	}
	for _, ev := range f.Events {
		if ev["type"] == "WIN" {
			p.done = true
			return &protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version, Seq: p.nextSeq(), Keys: &protocol.HeldKeys{}}
		}
	}
	if p.cooldown > 0 {
		p.cooldown--
		return nil
	}
	goal, label, ok := p.target(f)
	if !ok {
		return nil
	}

	me := f.Player.Pos
	dx, dy, dz := goal[0]-me[0], goal[1]-me[1], goal[2]-me[2]
	if label == "CHECKOUT" {
		dy = 0
	}
	yaw := math.Atan2(-dx, -dz)
	pitch := math.Atan2(dy, math.Hypot(dx, dz))
	in := &protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Seq:             p.nextSeq(),
		Look: [2]float64{
			-wrapAngle(yaw-f.Player.Yaw) / p.sensitivity,
			-(pitch - f.Player.Pitch) / p.sensitivity,
		},
	}
	if math.Hypot(dx, dz) > p.reach {
		in.Keys = &protocol.HeldKeys{Forward: true}
		return in
	}
	in.Keys = &protocol.HeldKeys{}
	in.Actions = []protocol.ActionReq{{ID: fmt.Sprintf("K_%s_%d", label, in.Seq), Name: protocol.ActionInteract}}
	p.cooldown = 3
	return in
}

func (p *pilot) nextSeq() uint64 {
	p.seq++
	return p.seq
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
