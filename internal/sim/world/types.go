package world

import (
	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/entities"
)

// Scene is the render side. It only learns about entities appearing and
// disappearing; everything else it reads from frames.
type Scene interface {
	Add(ref entities.Ref)
	Remove(ref entities.Ref)
}

// HUD receives the formatted status strings after every frame and each
// toast as it is raised.
type HUD interface {
	Update(v protocol.HUDView)
	Toast(msg string)
}

// RNG is satisfied by *math/rand.Rand.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

type FrameLogger interface {
	WriteFrame(entry FrameLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type FrameLogEntry struct {
	SessionID string              `json:"session_id"`
	Seed      int64               `json:"seed"`
	Frame     uint64              `json:"frame"`
	DT        float64             `json:"dt"`
	Inputs    []protocol.InputMsg `json:"inputs,omitempty"`
	Digest    string              `json:"digest"`
}

type AuditEntry struct {
	SessionID string `json:"session_id"`
	Frame     uint64 `json:"frame"`
	Action    string `json:"action"` // e.g. "PURCHASE", "MUG", "KILL"
	Target    string `json:"target,omitempty"`
	Delta     int    `json:"delta"`
	Money     int    `json:"money"`
	Cart      int    `json:"cart"`
	Reason    string `json:"reason,omitempty"`
}

// ActionResult is the outcome of one discrete action. A non-empty Message
// is shown as a toast.
type ActionResult struct {
	Accepted bool
	Code     string
	Message  string
}

func accepted(msg string) ActionResult { return ActionResult{Accepted: true, Message: msg} }

func rejected(code, msg string) ActionResult {
	return ActionResult{Code: code, Message: msg}
}
