package world

// SessionMetrics is a thread-safe read-only view of a session.
// It is updated from the session loop goroutine and read from HTTP handlers/tests.
type SessionMetrics struct {
	SessionID string `json:"session_id"`
	Frame     uint64 `json:"frame"`

	Money    int `json:"money"`
	Cart     int `json:"cart"`
	Molotovs int `json:"molotovs"`
	Ammo     int `json:"ammo"`

	Items    int `json:"items"`
	NPCs     int `json:"npcs"`
	Missiles int `json:"missiles"`
	Effects  int `json:"effects"`
	Flyers   int `json:"flyers"`

	Stats SessionStats `json:"stats"`

	InboxDepth int     `json:"inbox_depth"`
	StepMS     float64 `json:"step_ms"`
}

func (s *Session) publishMetrics(stepMS float64) {
	r := s.reg
	s.metrics.Store(SessionMetrics{
		SessionID:  s.cfg.ID,
		Frame:      s.frame,
		Money:      s.econ.Money,
		Cart:       s.econ.CartTotal,
		Molotovs:   s.econ.Molotovs,
		Ammo:       s.econ.Ammo,
		Items:      len(r.Items),
		NPCs:       len(r.NPCs),
		Missiles:   len(r.Molotovs) + len(r.Bullets),
		Effects:    len(r.Effects),
		Flyers:     len(r.Flyers),
		Stats:      s.stats,
		InboxDepth: len(s.inbox),
		StepMS:     stepMS,
	})
}

func (s *Session) Metrics() SessionMetrics {
	if s == nil {
		return SessionMetrics{}
	}
	v := s.metrics.Load()
	if v == nil {
		return SessionMetrics{}
	}
	m, ok := v.(SessionMetrics)
	if !ok {
		return SessionMetrics{}
	}
	return m
}
