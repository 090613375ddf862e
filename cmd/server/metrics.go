package main

import (
	"fmt"
	"io"

	"shoprun.game/internal/persistence/indexdb"
	"shoprun.game/internal/sim/world"
	"shoprun.game/internal/transport/ws"
)

// writeMetrics renders the minimal Prometheus exposition format.
func writeMetrics(w io.Writer, st ws.Stats, sessions []world.SessionMetrics, idx *indexdb.SQLiteIndex) {
	fmt.Fprintf(w, "# HELP shoprun_sessions_active Sessions currently connected.\n")
	fmt.Fprintf(w, "# TYPE shoprun_sessions_active gauge\n")
	fmt.Fprintf(w, "shoprun_sessions_active %d\n", st.Active)

	fmt.Fprintf(w, "# HELP shoprun_ws_total Websocket connection and input counters.\n")
	fmt.Fprintf(w, "# TYPE shoprun_ws_total counter\n")
	fmt.Fprintf(w, "shoprun_ws_total{event=%q} %d\n", "connect", st.Connects)
	fmt.Fprintf(w, "shoprun_ws_total{event=%q} %d\n", "rejected", st.Rejected)
	fmt.Fprintf(w, "shoprun_ws_total{event=%q} %d\n", "finished", st.Finished)
	fmt.Fprintf(w, "shoprun_ws_total{event=%q} %d\n", "input", st.Inputs)
	fmt.Fprintf(w, "shoprun_ws_total{event=%q} %d\n", "bad_input", st.BadInput)
	fmt.Fprintf(w, "shoprun_ws_total{event=%q} %d\n", "throttled", st.Throttle)

	if len(sessions) > 0 {
		fmt.Fprintf(w, "# HELP shoprun_session_frame Current frame per session.\n")
		fmt.Fprintf(w, "# TYPE shoprun_session_frame gauge\n")
		for _, m := range sessions {
			fmt.Fprintf(w, "shoprun_session_frame{session=%q} %d\n", m.SessionID, m.Frame)
		}
		fmt.Fprintf(w, "# HELP shoprun_session_money Wallet per session.\n")
		fmt.Fprintf(w, "# TYPE shoprun_session_money gauge\n")
		for _, m := range sessions {
			fmt.Fprintf(w, "shoprun_session_money{session=%q} %d\n", m.SessionID, m.Money)
		}
		fmt.Fprintf(w, "# HELP shoprun_session_step_ms Last frame step duration in milliseconds.\n")
		fmt.Fprintf(w, "# TYPE shoprun_session_step_ms gauge\n")
		for _, m := range sessions {
			fmt.Fprintf(w, "shoprun_session_step_ms{session=%q} %.3f\n", m.SessionID, m.StepMS)
		}
		fmt.Fprintf(w, "# HELP shoprun_session_entities Live entities per session.\n")
		fmt.Fprintf(w, "# TYPE shoprun_session_entities gauge\n")
		for _, m := range sessions {
			fmt.Fprintf(w, "shoprun_session_entities{session=%q,kind=%q} %d\n", m.SessionID, "item", m.Items)
			fmt.Fprintf(w, "shoprun_session_entities{session=%q,kind=%q} %d\n", m.SessionID, "npc", m.NPCs)
			fmt.Fprintf(w, "shoprun_session_entities{session=%q,kind=%q} %d\n", m.SessionID, "missile", m.Missiles)
			fmt.Fprintf(w, "shoprun_session_entities{session=%q,kind=%q} %d\n", m.SessionID, "effect", m.Effects)
			fmt.Fprintf(w, "shoprun_session_entities{session=%q,kind=%q} %d\n", m.SessionID, "flyer", m.Flyers)
		}
	}

	if idx == nil {
		return
	}
	q := idx.Stats()
	fmt.Fprintf(w, "# HELP shoprun_index_queue_depth Index writer backlog.\n")
	fmt.Fprintf(w, "# TYPE shoprun_index_queue_depth gauge\n")
	fmt.Fprintf(w, "shoprun_index_queue_depth %d\n", q.QueueDepth)
	fmt.Fprintf(w, "# HELP shoprun_index_dropped_total Rows dropped because the index queue was full.\n")
	fmt.Fprintf(w, "# TYPE shoprun_index_dropped_total counter\n")
	fmt.Fprintf(w, "shoprun_index_dropped_total{kind=%q} %d\n", "frame", q.DropFrameTotal)
	fmt.Fprintf(w, "shoprun_index_dropped_total{kind=%q} %d\n", "audit", q.DropAuditTotal)
	fmt.Fprintf(w, "shoprun_index_dropped_total{kind=%q} %d\n", "session", q.DropSessionTotal)
}
