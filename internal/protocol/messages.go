package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PlayerName      string            `json:"player_name"`
	Seed            *int64            `json:"seed,omitempty"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int  `json:"max_queue,omitempty"`
	Acks     bool `json:"acks,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	Seed            int64       `json:"seed"`
	StoreDigest     string      `json:"store_digest"`
	TuningDigest    string      `json:"tuning_digest,omitempty"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz int        `json:"tick_rate_hz"`
	MaxStepSec float64    `json:"max_step_sec"`
	BoundsMin  [2]float64 `json:"bounds_min"`
	BoundsMax  [2]float64 `json:"bounds_max"`
	Zones      []ZoneView `json:"zones"`
}

type ZoneView struct {
	Name   string     `json:"name"`
	Pos    [3]float64 `json:"pos"`
	Radius float64    `json:"radius"`
}

// ACK (server -> client), one per action when the client asked for acks.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Frame           uint64 `json:"frame,omitempty"`
}
