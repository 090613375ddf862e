package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/tuning"
	"shoprun.game/internal/sim/world"
)

// SQLiteIndex is a queryable read model of sessions, frames and audits.
// Writes are queued and applied by one goroutine; the compressed JSONL logs
// stay the source of truth, so a full queue drops rows instead of stalling
// a session.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropFrame   atomic.Uint64
	dropAudit   atomic.Uint64
	dropSession atomic.Uint64
}

type reqKind int

const (
	reqFrame reqKind = iota + 1
	reqAudit
	reqSessionStart
	reqSessionEnd
)

type req struct {
	kind reqKind

	frame   world.FrameLogEntry
	audit   world.AuditEntry
	session SessionRow
}

// SessionRow is one session's summary. End fields are zero while it runs.
type SessionRow struct {
	ID        string `json:"id"`
	Seed      int64  `json:"seed"`
	Remote    string `json:"remote,omitempty"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	Frames    uint64 `json:"frames"`
	Money     int    `json:"money"`
	Wins      int    `json:"wins"`
	Kills     int    `json:"kills"`
	Stolen    int    `json:"stolen"`
	Purchases int    `json:"purchases"`
}

type QueueStats struct {
	DropFrameTotal   uint64 `json:"drop_frame_total"`
	DropAuditTotal   uint64 `json:"drop_audit_total"`
	DropSessionTotal uint64 `json:"drop_session_total"`
	QueueDepth       int    `json:"queue_depth"`
	QueueCapacity    int    `json:"queue_capacity"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Sessions log a frame per display refresh; leave room for a few
		// seconds of backlog across all of them.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS configs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			remote TEXT,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			frames INTEGER NOT NULL DEFAULT 0,
			money INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			kills INTEGER NOT NULL DEFAULT 0,
			stolen INTEGER NOT NULL DEFAULT 0,
			purchases INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS frames (
			session_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			dt REAL NOT NULL,
			inputs INTEGER NOT NULL,
			actions INTEGER NOT NULL,
			digest TEXT NOT NULL,
			PRIMARY KEY (session_id, frame)
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			session_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			action TEXT NOT NULL,
			target TEXT,
			delta INTEGER NOT NULL,
			money INTEGER NOT NULL,
			cart INTEGER NOT NULL,
			reason TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (session_id, frame, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_action ON audits(action, session_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

func (s *SQLiteIndex) WriteFrame(entry world.FrameLogEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqFrame, frame: entry}, &s.dropFrame)
	return nil
}

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqAudit, audit: entry}, &s.dropAudit)
	return nil
}

func (s *SQLiteIndex) RecordSessionStart(id string, seed int64, remote string) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSessionStart, session: SessionRow{
		ID:        id,
		Seed:      seed,
		Remote:    remote,
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}}, &s.dropSession)
}

// RecordSessionEnd stores the final tallies taken from the session metrics.
func (s *SQLiteIndex) RecordSessionEnd(m world.SessionMetrics) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSessionEnd, session: SessionRow{
		ID:        m.SessionID,
		EndedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		Frames:    m.Frame,
		Money:     m.Money,
		Wins:      m.Stats.Wins,
		Kills:     m.Stats.Kills,
		Stolen:    m.Stats.Stolen,
		Purchases: m.Stats.Purchases,
	}}, &s.dropSession)
}

func (s *SQLiteIndex) Stats() QueueStats {
	if s == nil {
		return QueueStats{}
	}
	return QueueStats{
		DropFrameTotal:   s.dropFrame.Load(),
		DropAuditTotal:   s.dropAudit.Load(),
		DropSessionTotal: s.dropSession.Load(),
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
	}
}

// UpsertConfigs stores the store layout and the tuning actually applied, so
// rows can be matched against the digests sessions announce.
func (s *SQLiteIndex) UpsertConfigs(configDir string, store *catalogs.Store, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if configDir != "" && store != nil {
		if b, err := os.ReadFile(filepath.Join(configDir, "store.json")); err == nil {
			rows = append(rows, kv{name: "store", digest: store.Digest, json: b})
		}
	}
	if b, err := json.Marshal(tune); err == nil {
		rows = append(rows, kv{name: "tuning", digest: tune.Digest(), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO configs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Session reads one summary row. Queued writes may not be visible yet.
func (s *SQLiteIndex) Session(ctx context.Context, id string) (SessionRow, error) {
	var (
		r       SessionRow
		remote  sql.NullString
		endedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id,seed,remote,started_at,ended_at,frames,money,wins,kills,stolen,purchases FROM sessions WHERE id=?`, id,
	).Scan(&r.ID, &r.Seed, &remote, &r.StartedAt, &endedAt, &r.Frames, &r.Money, &r.Wins, &r.Kills, &r.Stolen, &r.Purchases)
	if err != nil {
		return SessionRow{}, err
	}
	r.Remote, r.EndedAt = remote.String, endedAt.String
	return r, nil
}

// CountAudits counts a session's audit rows for one action ("" for all).
func (s *SQLiteIndex) CountAudits(ctx context.Context, sessionID, action string) (int, error) {
	var n int
	q := `SELECT COUNT(*) FROM audits WHERE session_id=?`
	args := []any{sessionID}
	if action != "" {
		q += ` AND action=?`
		args = append(args, action)
	}
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (s *SQLiteIndex) FrameDigest(ctx context.Context, sessionID string, frame uint64) (string, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM frames WHERE session_id=? AND frame=?`, sessionID, int64(frame)).Scan(&d)
	return d, err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertFrame, _ := s.db.Prepare(`INSERT OR REPLACE INTO frames(session_id,frame,dt,inputs,actions,digest) VALUES(?,?,?,?,?,?)`)
	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(session_id,frame,seq,action,target,delta,money,cart,reason,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	insertSession, _ := s.db.Prepare(`INSERT OR REPLACE INTO sessions(id,seed,remote,started_at) VALUES(?,?,?,?)`)
	endSession, _ := s.db.Prepare(`UPDATE sessions SET ended_at=?,frames=?,money=?,wins=?,kills=?,stolen=?,purchases=? WHERE id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertFrame, insertAudit, insertSession, endSession} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = time.Second

		// Audit rows are numbered within their (session, frame).
		auditKey string
		auditSeq int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqFrame:
			f := r.frame
			actions := 0
			for _, in := range f.Inputs {
				actions += len(in.Actions)
			}
			exec(insertFrame, f.SessionID, int64(f.Frame), f.DT, len(f.Inputs), actions, f.Digest)

		case reqAudit:
			a := r.audit
			key := fmt.Sprintf("%s/%d", a.SessionID, a.Frame)
			if key != auditKey {
				auditKey = key
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			raw, _ := json.Marshal(a)
			exec(insertAudit, a.SessionID, int64(a.Frame), seq, a.Action, a.Target, a.Delta, a.Money, a.Cart, a.Reason, string(raw))

		case reqSessionStart:
			se := r.session
			exec(insertSession, se.ID, se.Seed, se.Remote, se.StartedAt)
			// Session rows are read by the admin surface right after a
			// connect; don't let them sit in an open batch.
			commit()
			continue

		case reqSessionEnd:
			se := r.session
			exec(endSession, se.EndedAt, int64(se.Frames), se.Money, se.Wins, se.Kills, se.Stolen, se.Purchases, se.ID)
			commit()
			continue
		}
		// Readers share the single connection, so an idle writer must not
		// keep a transaction open.
		if len(s.ch) == 0 || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
