package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the read-only world layout: anchors, shelf stock, NPC spawns and
// the shop offers. It is loaded once and never mutated by a session.
type Store struct {
	Name         string            `json:"name"`
	Bounds       Bounds            `json:"bounds"`
	NPCTrack     Track             `json:"npc_track"`
	Zones        Zones             `json:"zones"`
	ShoppingList []ListEntry       `json:"shopping_list"`
	Items        []ItemDef         `json:"items"`
	ItemSize     float64           `json:"item_size"`
	NPCs         []NPCSpawn        `json:"npcs"`
	VendItem     VendItem          `json:"vend_item"`
	Warnings     map[string]string `json:"warnings"`
	Offers       []Offer           `json:"offers"`

	Digest string `json:"-"`
}

type Bounds struct {
	Min [2]float64 `json:"min"` // x, z
	Max [2]float64 `json:"max"`
}

type Track struct {
	MinZ float64 `json:"min_z"`
	MaxZ float64 `json:"max_z"`
}

type Zone struct {
	Pos    [3]float64 `json:"pos"`
	Radius float64    `json:"radius"`
}

type Zones struct {
	Checkout    Zone `json:"checkout"`
	ShopCounter Zone `json:"shop_counter"`
	Vending     Zone `json:"vending"`
}

type ListEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ItemDef struct {
	Name  string     `json:"name"`
	Price int        `json:"price"`
	Paid  bool       `json:"paid,omitempty"`
	Warn  string     `json:"warn,omitempty"`
	Pos   [3]float64 `json:"pos"`
}

type NPCSpawn struct {
	Pos [3]float64 `json:"pos"`
}

type VendItem struct {
	Name   string     `json:"name"`
	Warn   string     `json:"warn,omitempty"`
	Offset [3]float64 `json:"offset"`
}

const (
	OfferMolotov = "MOLOTOV"
	OfferWeapon  = "WEAPON"
	OfferAmmo    = "AMMO"
)

type Offer struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Cost  int    `json:"cost"`
	Ammo  int    `json:"ammo,omitempty"`
}

func Load(configDir string) (*Store, error) {
	return LoadStore(filepath.Join(configDir, "store.json"))
}

func LoadStore(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Store
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("store.json: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("store.json: %w", err)
	}
	s.Digest = sha256Hex(raw)
	return &s, nil
}

func (s *Store) validate() error {
	if s.Bounds.Min[0] >= s.Bounds.Max[0] || s.Bounds.Min[1] >= s.Bounds.Max[1] {
		return fmt.Errorf("bounds: min must be < max")
	}
	if s.NPCTrack.MinZ >= s.NPCTrack.MaxZ {
		return fmt.Errorf("npc_track: min_z must be < max_z")
	}
	if s.ItemSize <= 0 {
		s.ItemSize = 0.5
	}
	seen := map[string]bool{}
	for _, e := range s.ShoppingList {
		if e.Name == "" || e.Count <= 0 {
			return fmt.Errorf("shopping_list: bad entry %+v", e)
		}
		if seen[e.Name] {
			return fmt.Errorf("shopping_list: duplicate %q", e.Name)
		}
		seen[e.Name] = true
	}
	for _, it := range s.Items {
		if it.Name == "" || it.Price < 0 {
			return fmt.Errorf("items: bad entry %+v", it)
		}
	}
	for _, o := range s.Offers {
		switch o.Kind {
		case OfferMolotov, OfferWeapon, OfferAmmo:
		default:
			return fmt.Errorf("offers: unknown kind %q", o.Kind)
		}
		if o.Cost < 0 {
			return fmt.Errorf("offers: negative cost for %q", o.Kind)
		}
	}
	return nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
