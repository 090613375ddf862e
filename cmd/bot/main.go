package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"shoprun.game/internal/protocol"
)

func main() {
	var (
		url         = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name        = flag.String("name", "bot", "player name")
		seed        = flag.Int64("seed", 0, "session seed (0 lets the server pick)")
		sensitivity = flag.Float64("look_sensitivity", 0.0022, "server look sensitivity (radians per pixel)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 16, Acks: true},
	}
	if *seed != 0 {
		hello.Seed = seed
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	var p *pilot
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s seed=%d tick_rate=%d", w.SessionID, w.Seed, w.WorldParams.TickRateHz)
			p = newPilot(w, *sensitivity)

		case protocol.TypeAck:
			var a protocol.AckMsg
			if err := json.Unmarshal(msg, &a); err != nil {
				continue
			}
			if a.Message != "" || !a.Accepted {
				logger.Printf("ACK %s accepted=%v code=%s %s", a.AckFor, a.Accepted, a.Code, a.Message)
			}

		case protocol.TypeFrame:
			if p == nil {
				continue
			}
			var f protocol.FrameMsg
			if err := json.Unmarshal(msg, &f); err != nil {
				continue
			}
			if in := p.next(f); in != nil {
				if err := conn.WriteJSON(in); err != nil {
					return
				}
			}
			if p.done {
				logger.Printf("won at frame=%d %s", f.Frame, f.HUD.Money)
				return
			}
		}
	}
}
