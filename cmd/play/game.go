package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/entities"
	"shoprun.game/internal/sim/world"
)

const hudHeight = 96

var (
	colFloor    = color.RGBA{R: 0x2b, G: 0x2f, B: 0x36, A: 0xff}
	colZone     = color.RGBA{R: 0x44, G: 0x88, B: 0x44, A: 0x80}
	colItem     = color.RGBA{R: 0xe0, G: 0xc0, B: 0x40, A: 0xff}
	colPaid     = color.RGBA{R: 0x40, G: 0xc0, B: 0xe0, A: 0xff}
	colNPC      = color.RGBA{R: 0xd0, G: 0x70, B: 0x70, A: 0xff}
	colPlayer   = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	colMolotov  = color.RGBA{R: 0xff, G: 0x80, B: 0x20, A: 0xff}
	colBullet   = color.RGBA{R: 0xff, G: 0xff, B: 0x80, A: 0xff}
	colBlast    = color.RGBA{R: 0xff, G: 0x50, B: 0x10, A: 0xa0}
	colFlyer    = color.RGBA{R: 0xf0, G: 0xa0, B: 0xc0, A: 0x90}
	colWarning  = color.RGBA{R: 0xa0, G: 0x20, B: 0x20, A: 0xff}
	colHUDPanel = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// game hosts a session in-process: ebiten's Update drives the frame
// scheduler and Draw renders a top-down view of the last frame.
type game struct {
	s      *world.Session
	log    *log.Logger
	scale  float64
	seq    uint64
	frame  protocol.FrameMsg
	toasts []string
	live   map[entities.Ref]bool

	cursor   [2]int
	captured bool
}

func newGame(s *world.Session, scale float64, logger *log.Logger) *game {
	g := &game{s: s, log: logger, scale: scale, live: map[entities.Ref]bool{}}
	s.SetHUD(hudSink{g})
	s.SetScene(sceneSink{g})
	return g
}

type sceneSink struct{ g *game }

func (s sceneSink) Add(ref entities.Ref)    { s.g.live[ref] = true }
func (s sceneSink) Remove(ref entities.Ref) { delete(s.g.live, ref) }

type hudSink struct{ g *game }

func (h hudSink) Update(protocol.HUDView) {}

// Toast keeps a short history; the HUD line itself comes from the frame.
func (h hudSink) Toast(msg string) {
	h.g.toasts = append(h.g.toasts, msg)
	if len(h.g.toasts) > 3 {
		h.g.toasts = h.g.toasts[1:]
	}
}

func (g *game) input() protocol.InputMsg {
	g.seq++
	in := protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version, Seq: g.seq}
	in.Keys = &protocol.HeldKeys{
		Forward:   ebiten.IsKeyPressed(ebiten.KeyW),
		Back:      ebiten.IsKeyPressed(ebiten.KeyS),
		Left:      ebiten.IsKeyPressed(ebiten.KeyA),
		Right:     ebiten.IsKeyPressed(ebiten.KeyD),
		TurnLeft:  ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		TurnRight: ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Sprint:    ebiten.IsKeyPressed(ebiten.KeyShift),
	}

	mx, my := ebiten.CursorPosition()
	if g.captured {
		in.Look = [2]float64{float64(mx - g.cursor[0]), float64(my - g.cursor[1])}
	}
	g.cursor = [2]int{mx, my}

	act := func(name string, option int) {
		in.Actions = append(in.Actions, protocol.ActionReq{ID: fmt.Sprintf("L%d_%d", g.seq, len(in.Actions)), Name: name, Option: option})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		act(protocol.ActionInteract, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		act(protocol.ActionMug, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		act(protocol.ActionJump, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		act(protocol.ActionThrow, 0)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && g.captured {
		act(protocol.ActionFire, 0)
	}
	for i, k := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3} {
		if inpututil.IsKeyJustPressed(k) {
			act(protocol.ActionMenuSelect, i+1)
		}
	}
	return in
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if !g.captured {
			return ebiten.Termination
		}
		g.captured = false
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
	if !g.captured && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.captured = true
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		g.cursor[0], g.cursor[1] = ebiten.CursorPosition()
	}

	for _, ack := range g.s.ApplyInput(g.input()) {
		if !ack.Accepted && ack.Code != "" && ack.Message == "" {
			g.log.Printf("%s rejected: %s", ack.AckFor, ack.Code)
		}
	}
	dt := g.s.Frame(time.Now())
	g.frame = g.s.FrameView(dt)
	for _, ev := range g.frame.Events {
		if ev["type"] == "WIN" {
			g.log.Printf("won at frame %d", g.frame.Frame)
		}
	}
	return nil
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	min, max := g.s.Store().Bounds.Min, g.s.Store().Bounds.Max
	w := int((max[0] - min[0]) * g.scale)
	h := int((max[1]-min[1])*g.scale) + hudHeight
	return w, h
}

func (g *game) toScreen(x, z float64) (float32, float32) {
	min := g.s.Store().Bounds.Min
	return float32((x - min[0]) * g.scale), float32((z - min[1]) * g.scale)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colFloor)
	f := g.frame
	r := float32(g.scale)

	for _, z := range g.s.Welcome().WorldParams.Zones {
		x, y := g.toScreen(z.Pos[0], z.Pos[2])
		vector.DrawFilledCircle(screen, x, y, float32(z.Radius)*r, colZone, true)
		ebitenutil.DebugPrintAt(screen, z.Name, int(x)-24, int(y)-6)
	}

	for _, e := range f.Entities {
		x, y := g.toScreen(e.Pos[0], e.Pos[2])
		switch e.Kind {
		case "ITEM":
			c := colItem
			if e.Label == g.s.Store().VendItem.Name {
				c = colPaid
			}
			vector.DrawFilledRect(screen, x-r/4, y-r/4, r/2, r/2, c, false)
			ebitenutil.DebugPrintAt(screen, e.Label, int(x)+6, int(y)-6)
		case "NPC":
			vector.DrawFilledCircle(screen, x, y, r*0.45, colNPC, true)
			fx, fy := -math.Sin(e.Yaw), -math.Cos(e.Yaw)
			vector.StrokeLine(screen, x, y, x+float32(fx)*r*0.7, y+float32(fy)*r*0.7, 2, colNPC, true)
		case "MOLOTOV":
			vector.DrawFilledCircle(screen, x, y, 3, colMolotov, true)
		case "BULLET":
			vector.DrawFilledCircle(screen, x, y, 2, colBullet, true)
		case "EFFECT":
			if e.Label == "EXPLOSION" {
				vector.DrawFilledCircle(screen, x, y, r*1.4, colBlast, true)
			} else {
				vector.DrawFilledCircle(screen, x, y, 4, colBullet, true)
			}
		case "FLYER":
			vector.DrawFilledCircle(screen, x, y, r*0.8, colFlyer, true)
		}
	}

	p := f.Player
	px, py := g.toScreen(p.Pos[0], p.Pos[2])
	vector.DrawFilledCircle(screen, px, py, r*0.35, colPlayer, true)
	lx, lz := -math.Sin(p.Yaw), -math.Cos(p.Yaw)
	vector.StrokeLine(screen, px, py, px+float32(lx)*r*1.5, py+float32(lz)*r*1.5, 2, colPlayer, true)

	g.drawHUD(screen)
}

func (g *game) drawHUD(screen *ebiten.Image) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	top := sh - hudHeight
	vector.DrawFilledRect(screen, 0, float32(top), float32(sw), hudHeight, colHUDPanel, false)

	h := g.frame.HUD
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s   %s   %s   %s   [%d in scene]", h.Money, h.Cart, h.Molotovs, h.Weapon, len(g.live)), 8, top+4)
	ebitenutil.DebugPrintAt(screen, h.List, 8, top+20)
	if h.Toast != "" {
		ebitenutil.DebugPrintAt(screen, h.Toast, 8, top+36)
	}
	for i, t := range g.toasts {
		ebitenutil.DebugPrintAt(screen, t, sw-260, top+4+16*i)
	}
	if h.Warning != "" {
		vector.DrawFilledRect(screen, 0, 0, float32(sw), 20, colWarning, false)
		ebitenutil.DebugPrintAt(screen, h.Warning, 8, 3)
	}
	if m := g.frame.Menu; m != nil {
		line := ""
		for _, o := range m.Options {
			line += fmt.Sprintf("%d) %s $%d  ", o.Option, o.Label, o.Cost)
		}
		ebitenutil.DebugPrintAt(screen, line, 8, top+52)
	}
	help := "WASD move  arrows turn  E interact  R mug  G throw  click fire  1-3 menu  Esc quit"
	if !g.captured {
		help = "click to capture the mouse  " + help
	}
	ebitenutil.DebugPrintAt(screen, help, 8, top+72)
}
