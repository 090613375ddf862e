package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type sessionRow struct {
	ID        string `json:"id"`
	Seed      int64  `json:"seed"`
	Remote    string `json:"remote,omitempty"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	Frames    int64  `json:"frames"`
	Money     int    `json:"money"`
	Wins      int    `json:"wins"`
	Kills     int    `json:"kills"`
	Stolen    int    `json:"stolen"`
	Purchases int    `json:"purchases"`
}

type auditRow struct {
	SessionID string `json:"session_id"`
	Frame     int64  `json:"frame"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Delta     int    `json:"delta"`
	Money     int    `json:"money"`
	Reason    string `json:"reason,omitempty"`
}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	sessionID := fs.String("session", "", "session id filter (audits)")
	action := fs.String("action", "", "action filter (audits)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "sessions"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "sessions.sqlite")
	}
	if *limit <= 0 {
		*limit = 20
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	switch q {
	case "sessions":
		rows, err := querySessions(db, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sessions:", err)
			os.Exit(1)
		}
		for _, r := range rows {
			printJSON(r)
		}
	case "audits":
		rows, err := queryAudits(db, *sessionID, *action, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "audits:", err)
			os.Exit(1)
		}
		for _, r := range rows {
			printJSON(r)
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q, "(want sessions|audits)")
		os.Exit(2)
	}
}

func querySessions(db *sql.DB, limit int) ([]sessionRow, error) {
	rows, err := db.Query(`SELECT id,seed,COALESCE(remote,''),started_at,COALESCE(ended_at,''),frames,money,wins,kills,stolen,purchases
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []sessionRow
	for rows.Next() {
		var r sessionRow
		if err := rows.Scan(&r.ID, &r.Seed, &r.Remote, &r.StartedAt, &r.EndedAt, &r.Frames, &r.Money, &r.Wins, &r.Kills, &r.Stolen, &r.Purchases); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryAudits(db *sql.DB, sessionID, action string, limit int) ([]auditRow, error) {
	q := `SELECT session_id,frame,action,COALESCE(target,''),delta,money,COALESCE(reason,'') FROM audits WHERE 1=1`
	var args []any
	if sessionID != "" {
		q += ` AND session_id=?`
		args = append(args, sessionID)
	}
	if action != "" {
		q += ` AND action=?`
		args = append(args, action)
	}
	q += ` ORDER BY session_id, frame, seq LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []auditRow
	for rows.Next() {
		var r auditRow
		if err := rows.Scan(&r.SessionID, &r.Frame, &r.Action, &r.Target, &r.Delta, &r.Money, &r.Reason); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
