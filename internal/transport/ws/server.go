package ws

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world"
	"shoprun.game/internal/transport/rates"
)

// DefaultMaxInputsPerSec caps INPUT messages per connection.
const DefaultMaxInputsPerSec = 240

// AttachFunc runs after a session is created and before it starts. The
// returned func (may be nil) runs once the session has stopped.
type AttachFunc func(s *world.Session, remote string) (detach func())

type Options struct {
	Tuning tuning.Tuning
	Store  *catalogs.Store
	Attach AttachFunc
	// Seed picks a seed when the client does not ask for one.
	Seed func() int64
	// MaxInputsPerSec drops INPUT messages above this rate. 0 uses the
	// default, negative disables the limit.
	MaxInputsPerSec int
}

// Server hosts one session per websocket connection.
type Server struct {
	opts Options
	log  *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*world.Session

	connects atomic.Uint64
	rejected atomic.Uint64
	finished atomic.Uint64
	inputs   atomic.Uint64
	badInput atomic.Uint64
	throttle atomic.Uint64
}

type Stats struct {
	Connects uint64 `json:"connects_total"`
	Rejected uint64 `json:"rejected_total"`
	Finished uint64 `json:"finished_total"`
	Inputs   uint64 `json:"inputs_total"`
	BadInput uint64 `json:"bad_input_total"`
	Throttle uint64 `json:"throttled_total"`
	Active   int    `json:"active"`
}

func NewServer(opts Options, logger *log.Logger) *Server {
	if opts.Seed == nil {
		opts.Seed = func() int64 { return rand.Int63() }
	}
	if opts.MaxInputsPerSec == 0 {
		opts.MaxInputsPerSec = DefaultMaxInputsPerSec
	}
	return &Server{
		opts:     opts,
		log:      logger,
		sessions: map[string]*world.Session{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	active := len(s.sessions)
	s.mu.Unlock()
	return Stats{
		Connects: s.connects.Load(),
		Rejected: s.rejected.Load(),
		Finished: s.finished.Load(),
		Inputs:   s.inputs.Load(),
		BadInput: s.badInput.Load(),
		Throttle: s.throttle.Load(),
		Active:   active,
	}
}

// Sessions snapshots the metrics of every live session, ordered by id.
func (s *Server) Sessions() []world.SessionMetrics {
	s.mu.Lock()
	out := make([]world.SessionMetrics, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Metrics())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		s.connects.Add(1)

		sess, out := s.handshake(conn)
		if sess == nil {
			s.rejected.Add(1)
			return
		}

		var detach func()
		if s.opts.Attach != nil {
			detach = s.opts.Attach(sess, r.RemoteAddr)
		}
		s.track(sess, true)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Unblock the reader on shutdown or a failed write.
		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()

		runDone := make(chan struct{})
		go func() {
			defer close(runDone)
			_ = sess.Run(ctx)
		}()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		s.readInputs(ctx, conn, sess)
		cancel()
		<-runDone

		s.track(sess, false)
		s.finished.Add(1)
		if detach != nil {
			detach()
		}
		if s.log != nil {
			m := sess.Metrics()
			s.log.Printf("session %s closed: frames=%d money=%d wins=%d kills=%d", m.SessionID, m.Frame, m.Money, m.Stats.Wins, m.Stats.Kills)
		}
	}
}

func (s *Server) readInputs(ctx context.Context, conn *websocket.Conn, sess *world.Session) {
	var win rates.Window
	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeInput {
			s.badInput.Add(1)
			continue
		}
		var in protocol.InputMsg
		if err := json.Unmarshal(msg, &in); err != nil || in.ProtocolVersion != protocol.Version {
			s.badInput.Add(1)
			continue
		}
		if ok, _ := win.Allow(time.Now(), time.Second, s.opts.MaxInputsPerSec); !ok {
			s.throttle.Add(1)
			continue
		}
		select {
		case sess.Inputs() <- in:
			s.inputs.Add(1)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) track(sess *world.Session, live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if live {
		s.sessions[sess.ID()] = sess
	} else {
		delete(s.sessions, sess.ID())
	}
}

func (s *Server) handshake(conn *websocket.Conn) (*world.Session, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return nil, nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, "bad HELLO")
		return nil, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return nil, nil
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}

	seed := s.opts.Seed()
	if hello.Seed != nil {
		seed = *hello.Seed
	}
	sess, err := world.New(world.SessionConfig{
		ID:     uuid.NewString(),
		Seed:   seed,
		Tuning: s.opts.Tuning,
		Store:  s.opts.Store,
	})
	if err != nil {
		if s.log != nil {
			s.log.Printf("new session: %v", err)
		}
		closeWith(conn, "session unavailable")
		return nil, nil
	}
	out := make(chan []byte, maxQ)
	sess.SetOutput(out, hello.Capabilities.Acks)

	if err := writeJSON(conn, sess.Welcome()); err != nil {
		return nil, nil
	}
	if s.log != nil {
		s.log.Printf("session %s opened for %q seed=%d", sess.ID(), hello.PlayerName, seed)
	}
	return sess, out
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
