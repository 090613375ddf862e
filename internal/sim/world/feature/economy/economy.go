package economy

import (
	"fmt"
	"strings"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/entities"
)

// State is the player's economy. Every mutating method either applies fully
// and reports ok, or leaves the state untouched and reports a code.
type State struct {
	Money     int
	CartTotal int
	Molotovs  int
	HasWeapon bool
	Ammo      int

	list   []catalogs.ListEntry
	bought map[string]int
}

func New(money int, list []catalogs.ListEntry) *State {
	s := &State{
		Money:  money,
		list:   append([]catalogs.ListEntry(nil), list...),
		bought: map[string]int{},
	}
	for _, e := range list {
		s.bought[e.Name] = 0
	}
	return s
}

func (s *State) Tracked(name string) bool {
	_, ok := s.bought[name]
	return ok
}

func (s *State) Bought(name string) int { return s.bought[name] }

// Remaining is how many more of name the list still asks for.
func (s *State) Remaining(name string) int {
	for _, e := range s.list {
		if e.Name == name {
			if r := e.Count - s.bought[name]; r > 0 {
				return r
			}
			return 0
		}
	}
	return 0
}

func (s *State) ListComplete() bool {
	for _, e := range s.list {
		if s.bought[e.Name] < e.Count {
			return false
		}
	}
	return true
}

func (s *State) List() []catalogs.ListEntry { return s.list }

// Purchase buys the item. Paid items cost nothing and do not touch the cart.
// The caller removes the item from the world on success.
func (s *State) Purchase(it *entities.Item) (ok bool, code string, msg string) {
	if it == nil {
		return false, protocol.ErrNoTarget, "Nothing to pick up."
	}
	price := it.Price
	if it.Paid {
		price = 0
	}
	if s.Money < price {
		return false, protocol.ErrInsufficientFunds, "Not enough money!"
	}
	wasComplete := s.ListComplete()
	s.Money -= price
	s.CartTotal += price
	if s.Tracked(it.Name) {
		s.bought[it.Name]++
	}
	if !wasComplete && s.ListComplete() {
		return true, "", "You bought everything! Go pay at checkout!"
	}
	if price == 0 {
		return true, "", fmt.Sprintf("+ %s", it.Name)
	}
	return true, "", fmt.Sprintf("+ %s ($%d)", it.Name, price)
}

// Checkout pays for the cart. Success is transient; nothing but the cart resets.
func (s *State) Checkout() (ok bool, code string, msg string) {
	if s.CartTotal == 0 {
		return false, protocol.ErrEmptyCart, "Your cart is empty."
	}
	if !s.ListComplete() {
		return false, protocol.ErrIncompleteList, "You still missed items on your list!"
	}
	s.CartTotal = 0
	return true, "", "Paid! You win!"
}

func (s *State) BuyConsumable(o catalogs.Offer) (ok bool, code string, msg string) {
	switch o.Kind {
	case catalogs.OfferWeapon:
		if s.HasWeapon {
			return false, protocol.ErrAlreadyOwned, "You already have a weapon."
		}
	case catalogs.OfferAmmo:
		if !s.HasWeapon {
			return false, protocol.ErrNoWeapon, "Buy a weapon first."
		}
	case catalogs.OfferMolotov:
	default:
		return false, protocol.ErrBadOption, "Not for sale."
	}
	if s.Money < o.Cost {
		return false, protocol.ErrInsufficientFunds, "Not enough money!"
	}
	s.Money -= o.Cost
	switch o.Kind {
	case catalogs.OfferWeapon:
		s.HasWeapon = true
		s.Ammo = o.Ammo
	case catalogs.OfferAmmo:
		s.Ammo += o.Ammo
	case catalogs.OfferMolotov:
		s.Molotovs++
	}
	return true, "", fmt.Sprintf("Bought %s ($%d)", offerLabel(o), o.Cost)
}

// Vend charges the machine price; the caller spawns the drink.
func (s *State) Vend(price int) (ok bool, code string, msg string) {
	if s.Money < price {
		return false, protocol.ErrInsufficientFunds, "Not enough money!"
	}
	s.Money -= price
	return true, "", fmt.Sprintf("Clunk! A drink drops out ($%d)", price)
}

func (s *State) TakeMolotov() (ok bool, code string, msg string) {
	if s.Molotovs <= 0 {
		return false, protocol.ErrNoMolotovs, "No molotovs left."
	}
	s.Molotovs--
	return true, "", ""
}

// SpendRound uses one round whether or not the shot lands.
func (s *State) SpendRound() (ok bool, code string, msg string) {
	if !s.HasWeapon {
		return false, protocol.ErrNoWeapon, "You don't have a weapon."
	}
	if s.Ammo <= 0 {
		return false, protocol.ErrOutOfAmmo, "Out of ammo."
	}
	s.Ammo--
	return true, "", ""
}

func offerLabel(o catalogs.Offer) string {
	if o.Label != "" {
		return o.Label
	}
	return strings.ToLower(o.Kind)
}
