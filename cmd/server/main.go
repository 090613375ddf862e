package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "shoprun.game/internal/persistence/log"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world"
	"shoprun.game/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite session index")
		noLogs     = flag.Bool("disable_logs", false, "disable per-session frame/audit logs")
		maxInputs  = flag.Int("max_inputs_per_sec", ws.DefaultMaxInputsPerSec, "per-connection INPUT limit (negative disables)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	store, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load store: %v", err)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	// Optional read model; sessions never wait on it.
	idx, err := openRuntimeIndex(*dataDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertConfigs(*configDir, store, tune); err != nil {
			logger.Printf("index backend: upsert configs: %v", err)
		}
	}

	sessionsDir := filepath.Join(*dataDir, "sessions")
	attach := func(s *world.Session, remote string) func() {
		var (
			frames world.FrameLogger
			audits world.AuditLogger
			closers []func() error
		)
		if !*noLogs {
			dir := filepath.Join(sessionsDir, s.ID())
			fl, al := persistlog.NewFrameLogger(dir), persistlog.NewAuditLogger(dir)
			frames, audits = fl, al
			closers = append(closers, fl.Close, al.Close)
		}
		if idx != nil {
			idx.RecordSessionStart(s.ID(), s.Seed(), remote)
			s.SetFrameLogger(multiFrameLogger{a: frames, b: idx})
			s.SetAuditLogger(multiAuditLogger{a: audits, b: idx})
		} else if frames != nil {
			s.SetFrameLogger(frames)
			s.SetAuditLogger(audits)
		}
		return func() {
			if idx != nil {
				idx.RecordSessionEnd(s.Metrics())
			}
			for _, c := range closers {
				if err := c(); err != nil {
					logger.Printf("session %s: close log: %v", s.ID(), err)
				}
			}
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	wsSrv := ws.NewServer(ws.Options{Tuning: tune, Store: store, Attach: attach, MaxInputsPerSec: *maxInputs}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, wsSrv.Stats(), wsSrv.Sessions(), idx)
	})

	enableAdminHTTP := envBool("SHOPRUN_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("SHOPRUN_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		mux.HandleFunc("/admin/v1/sessions", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				Stats    ws.Stats               `json:"stats"`
				Sessions []world.SessionMetrics `json:"sessions"`
			}{Stats: wsSrv.Stats(), Sessions: wsSrv.Sessions()}
			_ = json.NewEncoder(rw).Encode(resp)
		})
	} else {
		logger.Printf("admin endpoints disabled (SHOPRUN_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (SHOPRUN_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (store=%s tuning=%s)", *addr, store.Name, tune.Digest()[:12])
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

type multiFrameLogger struct {
	a world.FrameLogger
	b world.FrameLogger
}

func (m multiFrameLogger) WriteFrame(entry world.FrameLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteFrame(entry)
	}
	if m.b != nil {
		_ = m.b.WriteFrame(entry)
	}
	return nil
}

type multiAuditLogger struct {
	a world.AuditLogger
	b world.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return nil
}
