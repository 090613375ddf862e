package economy

import (
	"testing"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/catalogs"
	"shoprun.game/internal/sim/entities"
)

func defaultList() []catalogs.ListEntry {
	return []catalogs.ListEntry{{Name: "Apple", Count: 2}, {Name: "Milk", Count: 1}, {Name: "Cereal", Count: 1}}
}

func TestPurchase_DebitsOnlyWhenAffordable(t *testing.T) {
	cases := []struct {
		money, price int
		ok           bool
	}{
		{20, 3, true},
		{3, 3, true},
		{2, 3, false},
		{0, 1, false},
		{0, 0, true},
	}
	for _, tc := range cases {
		s := New(tc.money, defaultList())
		ok, code, _ := s.Purchase(&entities.Item{Name: "Juice", Price: tc.price})
		if ok != tc.ok {
			t.Fatalf("money=%d price=%d ok=%v want %v", tc.money, tc.price, ok, tc.ok)
		}
		if ok {
			if s.Money != tc.money-tc.price || s.CartTotal != tc.price {
				t.Fatalf("money=%d cart=%d after buying %d from %d", s.Money, s.CartTotal, tc.price, tc.money)
			}
			continue
		}
		if code != protocol.ErrInsufficientFunds {
			t.Fatalf("code=%q", code)
		}
		if s.Money != tc.money || s.CartTotal != 0 {
			t.Fatalf("failed purchase mutated state: money=%d cart=%d", s.Money, s.CartTotal)
		}
	}
}

func TestPurchase_PaidItemIsFree(t *testing.T) {
	s := New(0, defaultList())
	ok, _, msg := s.Purchase(&entities.Item{Name: "Energy Drink", Price: 2, Paid: true})
	if !ok || s.Money != 0 || s.CartTotal != 0 {
		t.Fatalf("ok=%v money=%d cart=%d", ok, s.Money, s.CartTotal)
	}
	if msg != "+ Energy Drink" {
		t.Fatalf("msg=%q", msg)
	}
}

func TestPurchase_TracksListAndAnnouncesCompletion(t *testing.T) {
	s := New(20, defaultList())
	if ok, _, msg := s.Purchase(&entities.Item{Name: "Apple", Price: 3}); !ok || msg != "+ Apple ($3)" {
		t.Fatalf("ok=%v msg=%q", ok, msg)
	}
	if s.Remaining("Apple") != 1 || s.Bought("Apple") != 1 {
		t.Fatalf("remaining=%d bought=%d", s.Remaining("Apple"), s.Bought("Apple"))
	}
	s.Purchase(&entities.Item{Name: "Apple", Price: 3})
	s.Purchase(&entities.Item{Name: "Milk", Price: 5})
	_, _, msg := s.Purchase(&entities.Item{Name: "Cereal", Price: 7})
	if msg != "You bought everything! Go pay at checkout!" {
		t.Fatalf("completion msg=%q", msg)
	}
	if s.Money != 2 || s.CartTotal != 18 || !s.ListComplete() {
		t.Fatalf("money=%d cart=%d complete=%v", s.Money, s.CartTotal, s.ListComplete())
	}
	// Untracked purchases after completion use the normal message.
	_, _, msg = s.Purchase(&entities.Item{Name: "Bread", Price: 2})
	if msg != "+ Bread ($2)" || s.Bought("Bread") != 0 {
		t.Fatalf("msg=%q bought=%d", msg, s.Bought("Bread"))
	}
}

func TestCheckout(t *testing.T) {
	s := New(20, defaultList())
	if ok, code, msg := s.Checkout(); ok || code != protocol.ErrEmptyCart || msg != "Your cart is empty." {
		t.Fatalf("empty: ok=%v code=%q msg=%q", ok, code, msg)
	}
	s.Purchase(&entities.Item{Name: "Apple", Price: 3})
	if ok, code, _ := s.Checkout(); ok || code != protocol.ErrIncompleteList {
		t.Fatalf("incomplete: ok=%v code=%q", ok, code)
	}
	if s.CartTotal != 3 {
		t.Fatalf("failed checkout changed cart: %d", s.CartTotal)
	}
	s.Purchase(&entities.Item{Name: "Apple", Price: 3})
	s.Purchase(&entities.Item{Name: "Milk", Price: 5})
	s.Purchase(&entities.Item{Name: "Cereal", Price: 7})
	if ok, _, msg := s.Checkout(); !ok || msg != "Paid! You win!" || s.CartTotal != 0 {
		t.Fatalf("win: ok=%v msg=%q cart=%d", ok, msg, s.CartTotal)
	}
	// Second checkout sees an empty cart and changes nothing.
	money := s.Money
	if ok, code, _ := s.Checkout(); ok || code != protocol.ErrEmptyCart || s.Money != money {
		t.Fatalf("repeat: ok=%v code=%q money=%d", ok, code, s.Money)
	}
}

func TestBuyConsumable(t *testing.T) {
	molotov := catalogs.Offer{Kind: catalogs.OfferMolotov, Label: "Molotov", Cost: 3}
	weapon := catalogs.Offer{Kind: catalogs.OfferWeapon, Label: "Pistol", Cost: 15, Ammo: 12}
	ammo := catalogs.Offer{Kind: catalogs.OfferAmmo, Label: "Ammo x6", Cost: 4, Ammo: 6}

	s := New(20, nil)
	if ok, code, _ := s.BuyConsumable(ammo); ok || code != protocol.ErrNoWeapon {
		t.Fatalf("ammo without weapon: ok=%v code=%q", ok, code)
	}
	if ok, _, _ := s.BuyConsumable(molotov); !ok || s.Molotovs != 1 || s.Money != 17 {
		t.Fatalf("molotov: ok=%v count=%d money=%d", ok, s.Molotovs, s.Money)
	}
	if ok, _, _ := s.BuyConsumable(weapon); !ok || !s.HasWeapon || s.Ammo != 12 || s.Money != 2 {
		t.Fatalf("weapon: ok=%v armed=%v ammo=%d money=%d", ok, s.HasWeapon, s.Ammo, s.Money)
	}
	s.Money = 100
	if ok, code, _ := s.BuyConsumable(weapon); ok || code != protocol.ErrAlreadyOwned || s.Money != 100 {
		t.Fatalf("second weapon: ok=%v code=%q money=%d", ok, code, s.Money)
	}
	if ok, _, _ := s.BuyConsumable(ammo); !ok || s.Ammo != 18 {
		t.Fatalf("ammo: ok=%v ammo=%d", ok, s.Ammo)
	}
	s.Money = 2
	if ok, code, _ := s.BuyConsumable(molotov); ok || code != protocol.ErrInsufficientFunds || s.Molotovs != 1 {
		t.Fatalf("poor molotov: ok=%v code=%q count=%d", ok, code, s.Molotovs)
	}
	if ok, code, _ := s.BuyConsumable(catalogs.Offer{Kind: "TANK", Cost: 1}); ok || code != protocol.ErrBadOption {
		t.Fatalf("unknown offer: ok=%v code=%q", ok, code)
	}
}

func TestConsumablesRunOut(t *testing.T) {
	s := New(0, nil)
	if ok, code, _ := s.TakeMolotov(); ok || code != protocol.ErrNoMolotovs {
		t.Fatalf("TakeMolotov: ok=%v code=%q", ok, code)
	}
	if ok, code, _ := s.SpendRound(); ok || code != protocol.ErrNoWeapon {
		t.Fatalf("unarmed: ok=%v code=%q", ok, code)
	}
	s.HasWeapon, s.Ammo = true, 1
	if ok, _, _ := s.SpendRound(); !ok || s.Ammo != 0 {
		t.Fatalf("spend: ok=%v ammo=%d", ok, s.Ammo)
	}
	if ok, code, _ := s.SpendRound(); ok || code != protocol.ErrOutOfAmmo {
		t.Fatalf("empty: ok=%v code=%q", ok, code)
	}
	if ok, code, _ := s.Vend(2); ok || code != protocol.ErrInsufficientFunds {
		t.Fatalf("vend broke: ok=%v code=%q", ok, code)
	}
	s.Money = 5
	if ok, _, _ := s.Vend(2); !ok || s.Money != 3 {
		t.Fatalf("vend: ok=%v money=%d", ok, s.Money)
	}
}

func TestMug(t *testing.T) {
	s := New(0, nil)
	if _, ok, code, msg := s.Mug(nil, 3); ok || code != protocol.ErrNoTarget || msg != "Nobody close enough to mug." {
		t.Fatalf("no target: ok=%v code=%q msg=%q", ok, code, msg)
	}
	npc := &entities.NPC{Wallet: 5}
	amt, ok, _, msg := s.Mug(npc, 4)
	if !ok || amt != 4 || npc.Wallet != 1 || s.Money != 4 {
		t.Fatalf("mug: amt=%d ok=%v wallet=%d money=%d", amt, ok, npc.Wallet, s.Money)
	}
	if msg != "You stole $4. (They have $1 left)" {
		t.Fatalf("msg=%q", msg)
	}
	if amt, _, _, _ = s.Mug(npc, 4); amt != 1 || npc.Wallet != 0 {
		t.Fatalf("capped: amt=%d wallet=%d", amt, npc.Wallet)
	}
	if _, ok, code, _ := s.Mug(npc, 2); ok || code != protocol.ErrTargetDepleted || s.Money != 5 {
		t.Fatalf("depleted: ok=%v code=%q money=%d", ok, code, s.Money)
	}
}

func TestStealAmountBounds(t *testing.T) {
	for wallet := 0; wallet <= 9; wallet++ {
		for roll := 1; roll <= 4; roll++ {
			got := StealAmount(roll, wallet)
			if got < 0 || got > wallet || got > 4 {
				t.Fatalf("StealAmount(%d,%d)=%d", roll, wallet, got)
			}
			if wallet > 0 && got < 1 {
				t.Fatalf("StealAmount(%d,%d)=%d, want >= 1", roll, wallet, got)
			}
		}
	}
}
