package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	TickRateHz int     `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	MaxStepSec float64 `yaml:"max_step_sec" json:"max_step_sec"`

	Player   Player   `yaml:"player" json:"player"`
	Economy  Economy  `yaml:"economy" json:"economy"`
	Mug      Mug      `yaml:"mug" json:"mug"`
	Combat   Combat   `yaml:"combat" json:"combat"`
	NPC      NPC      `yaml:"npc" json:"npc"`
	Flyers   Flyers   `yaml:"flyers" json:"flyers"`
	Effects  Effects  `yaml:"effects" json:"effects"`
	Features Features `yaml:"features" json:"features"`
}

type Player struct {
	Spawn           [3]float64 `yaml:"spawn" json:"spawn"`
	EyeHeight       float64    `yaml:"eye_height" json:"eye_height"`
	WalkSpeed       float64    `yaml:"walk_speed" json:"walk_speed"`
	SprintSpeed     float64    `yaml:"sprint_speed" json:"sprint_speed"`
	TurnSpeed       float64    `yaml:"turn_speed" json:"turn_speed"`
	LookSensitivity float64    `yaml:"look_sensitivity" json:"look_sensitivity"`
	PitchLimit      float64    `yaml:"pitch_limit" json:"pitch_limit"`
	JumpSpeed       float64    `yaml:"jump_speed" json:"jump_speed"`
	Gravity         float64    `yaml:"gravity" json:"gravity"`
	// 0 means unlimited.
	InteractReach float64 `yaml:"interact_reach" json:"interact_reach"`
	PickupRadius  float64 `yaml:"pickup_radius" json:"pickup_radius"`
}

type Economy struct {
	StartingMoney int `yaml:"starting_money" json:"starting_money"`
	VendPrice     int `yaml:"vend_price" json:"vend_price"`
}

type Mug struct {
	Radius   float64 `yaml:"radius" json:"radius"`
	MinSteal int     `yaml:"min_steal" json:"min_steal"`
	MaxSteal int     `yaml:"max_steal" json:"max_steal"`
}

type Combat struct {
	MolotovSpeed        float64    `yaml:"molotov_speed" json:"molotov_speed"`
	MolotovLift         float64    `yaml:"molotov_lift" json:"molotov_lift"`
	MolotovGravityScale float64    `yaml:"molotov_gravity_scale" json:"molotov_gravity_scale"`
	GroundThreshold     float64    `yaml:"ground_threshold" json:"ground_threshold"`
	BlastRadius         float64    `yaml:"blast_radius" json:"blast_radius"`
	NPCTorsoHeight      float64    `yaml:"npc_torso_height" json:"npc_torso_height"`
	NPCHitRadius        float64    `yaml:"npc_hit_radius" json:"npc_hit_radius"`
	MuzzleOffset        [3]float64 `yaml:"muzzle_offset" json:"muzzle_offset"`
	ThrowOffset         [3]float64 `yaml:"throw_offset" json:"throw_offset"`
	FireRange           float64    `yaml:"fire_range" json:"fire_range"`
	BulletSpeed         float64    `yaml:"bullet_speed" json:"bullet_speed"`
	BulletTTLSec        float64    `yaml:"bullet_ttl_sec" json:"bullet_ttl_sec"`
	BulletMaxDistance   float64    `yaml:"bullet_max_distance" json:"bullet_max_distance"`
	ExplosionTTLSec     float64    `yaml:"explosion_ttl_sec" json:"explosion_ttl_sec"`
}

type NPC struct {
	MinSpeed  float64 `yaml:"min_speed" json:"min_speed"`
	MaxSpeed  float64 `yaml:"max_speed" json:"max_speed"`
	MinWallet int     `yaml:"min_wallet" json:"min_wallet"`
	MaxWallet int     `yaml:"max_wallet" json:"max_wallet"`
}

type Flyers struct {
	MinIntervalSec float64 `yaml:"min_interval_sec" json:"min_interval_sec"`
	MaxIntervalSec float64 `yaml:"max_interval_sec" json:"max_interval_sec"`
	TTLSec         float64 `yaml:"ttl_sec" json:"ttl_sec"`
	PigShare       float64 `yaml:"pig_share" json:"pig_share"`
	MinHeight      float64 `yaml:"min_height" json:"min_height"`
	MaxHeight      float64 `yaml:"max_height" json:"max_height"`
	MinSpeed       float64 `yaml:"min_speed" json:"min_speed"`
	MaxSpeed       float64 `yaml:"max_speed" json:"max_speed"`
}

type Effects struct {
	ToastTTLSec   float64 `yaml:"toast_ttl_sec" json:"toast_ttl_sec"`
	WarningTTLSec float64 `yaml:"warning_ttl_sec" json:"warning_ttl_sec"`
}

// Features toggles the optional modules layered over the base shopping loop.
type Features struct {
	Jump    bool `yaml:"jump" json:"jump"`
	Weapon  bool `yaml:"weapon" json:"weapon"`
	Vending bool `yaml:"vending" json:"vending"`
	Flyers  bool `yaml:"flyers" json:"flyers"`
	Warning bool `yaml:"warning" json:"warning"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      60,
		MaxStepSec:      0.033,
		Player: Player{
			Spawn:           [3]float64{0, 1.6, 8},
			EyeHeight:       1.6,
			WalkSpeed:       4.2,
			SprintSpeed:     6.5,
			TurnSpeed:       2.2,
			LookSensitivity: 0.0022,
			PitchLimit:      1.2,
			JumpSpeed:       5.0,
			Gravity:         9.8,
			PickupRadius:    1.5,
		},
		Economy: Economy{StartingMoney: 20, VendPrice: 2},
		Mug:     Mug{Radius: 3, MinSteal: 1, MaxSteal: 4},
		Combat: Combat{
			MolotovSpeed:        9.0,
			MolotovLift:         2.5,
			MolotovGravityScale: 0.5,
			GroundThreshold:     0.1,
			BlastRadius:         1.4,
			NPCTorsoHeight:      0.9,
			NPCHitRadius:        0.45,
			MuzzleOffset:        [3]float64{0.25, -0.2, 0},
			ThrowOffset:         [3]float64{0, -0.2, -1},
			FireRange:           60,
			BulletSpeed:         60,
			BulletTTLSec:        0.5,
			BulletMaxDistance:   40,
			ExplosionTTLSec:     0.6,
		},
		NPC: NPC{MinSpeed: 0.8, MaxSpeed: 1.4, MinWallet: 4, MaxWallet: 9},
		Flyers: Flyers{
			MinIntervalSec: 4,
			MaxIntervalSec: 9,
			TTLSec:         20,
			PigShare:       0.5,
			MinHeight:      7,
			MaxHeight:      12,
			MinSpeed:       1.5,
			MaxSpeed:       3.5,
		},
		Effects:  Effects{ToastTTLSec: 1.2, WarningTTLSec: 2.5},
		Features: Features{Jump: true, Weapon: true, Vending: true, Flyers: true, Warning: true},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.TickRateHz <= 0:
		return fmt.Errorf("tick_rate_hz must be > 0")
	case t.MaxStepSec <= 0:
		return fmt.Errorf("max_step_sec must be > 0")
	case t.Player.PitchLimit <= 0:
		return fmt.Errorf("player.pitch_limit must be > 0")
	case t.Economy.StartingMoney < 0:
		return fmt.Errorf("economy.starting_money must be >= 0")
	case t.Mug.MinSteal < 1 || t.Mug.MaxSteal < t.Mug.MinSteal:
		return fmt.Errorf("mug: need 1 <= min_steal <= max_steal")
	case t.NPC.MinWallet < 0 || t.NPC.MaxWallet < t.NPC.MinWallet:
		return fmt.Errorf("npc: need 0 <= min_wallet <= max_wallet")
	case t.NPC.MaxSpeed < t.NPC.MinSpeed:
		return fmt.Errorf("npc: max_speed < min_speed")
	case t.Flyers.MaxIntervalSec < t.Flyers.MinIntervalSec:
		return fmt.Errorf("flyers: max_interval_sec < min_interval_sec")
	}
	return nil
}

// Digest fingerprints the effective tuning so a replay can refuse a mismatched config.
func (t Tuning) Digest() string {
	b, err := json.Marshal(t)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
