package protocol

// Discrete action names.
const (
	ActionInteract   = "INTERACT"
	ActionMug        = "MUG"
	ActionJump       = "JUMP"
	ActionThrow      = "THROW"
	ActionFire       = "FIRE"
	ActionMenuSelect = "MENU_SELECT"
)

// INPUT (client -> server). Keys, when present, replaces the held-key set.
type InputMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Seq             uint64      `json:"seq"`
	Keys            *HeldKeys   `json:"keys,omitempty"`
	Look            [2]float64  `json:"look,omitempty"`
	Actions         []ActionReq `json:"actions,omitempty"`
}

type HeldKeys struct {
	Forward   bool `json:"forward,omitempty"`
	Back      bool `json:"back,omitempty"`
	Left      bool `json:"left,omitempty"`
	Right     bool `json:"right,omitempty"`
	TurnLeft  bool `json:"turn_left,omitempty"`
	TurnRight bool `json:"turn_right,omitempty"`
	Sprint    bool `json:"sprint,omitempty"`
}

type ActionReq struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Option int    `json:"option,omitempty"`
}

// FRAME (server -> client)
type FrameMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Frame           uint64  `json:"frame"`
	DT              float64 `json:"dt"`

	Player   PlayerView   `json:"player"`
	HUD      HUDView      `json:"hud"`
	Menu     *MenuView    `json:"menu,omitempty"`
	Entities []EntityView `json:"entities"`
	Added    []string     `json:"added,omitempty"`
	Removed  []string     `json:"removed,omitempty"`
	Events   []Event      `json:"events"`
}

type PlayerView struct {
	Pos      [3]float64 `json:"pos"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Grounded bool       `json:"grounded"`
}

type HUDView struct {
	Money    string `json:"money"`
	Cart     string `json:"cart"`
	List     string `json:"list"`
	Molotovs string `json:"molotovs"`
	Weapon   string `json:"weapon"`
	Toast    string `json:"toast,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

type MenuView struct {
	Options []MenuOption `json:"options"`
}

type MenuOption struct {
	Option int    `json:"option"`
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Cost   int    `json:"cost"`
}

type EntityView struct {
	ID    string     `json:"id"`
	Kind  string     `json:"kind"`
	Pos   [3]float64 `json:"pos"`
	Yaw   float64    `json:"yaw,omitempty"`
	Label string     `json:"label,omitempty"`
}

type Event map[string]interface{}
