package worldtest

import (
	"testing"

	"shoprun.game/internal/protocol"
)

func TestShoppingRun_BuyEverythingAndPay(t *testing.T) {
	h := NewHarness(t, Quiet(), 42)
	if hud := h.LastFrame().HUD; hud.Money != "Money: $20" || hud.List != "List: Apple x2, Milk x1, Cereal x1" {
		t.Fatalf("start hud=%+v", hud)
	}

	// Paying early is refused and changes nothing.
	h.Place([3]float64{-14, 1.6, 10}, 0, 0)
	if ack := h.Do(protocol.ActionInteract); ack.Accepted || ack.Code != protocol.ErrEmptyCart {
		t.Fatalf("early checkout: %+v", ack)
	}

	steps := []struct {
		item  string
		money string
	}{
		{"Cereal", "Money: $13"},
		{"Apple", "Money: $10"},
		{"Apple", "Money: $7"},
	}
	for _, st := range steps {
		if ack := h.BuyItem(st.item); !ack.Accepted {
			t.Fatalf("buy %s: %+v", st.item, ack)
		}
		if got := h.LastFrame().HUD.Money; got != st.money {
			t.Fatalf("after %s: %s want %s", st.item, got, st.money)
		}
	}

	h.Place([3]float64{-14, 1.6, 10}, 0, 0)
	if ack := h.Do(protocol.ActionInteract); ack.Code != protocol.ErrIncompleteList || ack.Message != "You still missed items on your list!" {
		t.Fatalf("incomplete checkout: %+v", ack)
	}

	ack := h.BuyItem("Milk")
	if !ack.Accepted || ack.Message != "You bought everything! Go pay at checkout!" {
		t.Fatalf("last item: %+v", ack)
	}
	hud := h.LastFrame().HUD
	if hud.Money != "Money: $2" || hud.Cart != "Cart: $18" || hud.List != "List: Apple x0, Milk x0, Cereal x0" {
		t.Fatalf("hud=%+v", hud)
	}

	h.Place([3]float64{-14, 1.6, 10}, 0, 0)
	ack = h.Do(protocol.ActionInteract)
	if !ack.Accepted || ack.Message != "Paid! You win!" {
		t.Fatalf("checkout: %+v", ack)
	}
	if hud := h.LastFrame().HUD; hud.Cart != "Cart: $0" || hud.Money != "Money: $2" || hud.Toast != "Paid! You win!" {
		t.Fatalf("after win hud=%+v", hud)
	}
	var won bool
	for _, ev := range h.LastFrame().Events {
		if ev["type"] == "WIN" {
			won = true
		}
	}
	if !won {
		t.Fatalf("no WIN event: %v", h.LastFrame().Events)
	}

	// A second checkout sees an empty cart.
	if ack := h.Do(protocol.ActionInteract); ack.Accepted || ack.Code != protocol.ErrEmptyCart {
		t.Fatalf("second checkout: %+v", ack)
	}
	if h.S.Stats().Wins != 1 {
		t.Fatalf("wins=%d", h.S.Stats().Wins)
	}
}

func TestShoppingRun_MugToAffordTheList(t *testing.T) {
	h := NewHarness(t, Quiet(), 7)
	// Off-list items leave too little for the milk.
	for _, name := range []string{"Juice", "Bread", "Cereal", "Apple", "Apple"} {
		if ack := h.BuyItem(name); !ack.Accepted {
			t.Fatalf("buy %s: %+v", name, ack)
		}
	}
	if ack := h.BuyItem("Milk"); ack.Code != protocol.ErrInsufficientFunds {
		t.Fatalf("expected to run out of money: %+v money=%s", ack, h.LastFrame().HUD.Money)
	}

	// Rob everybody until their wallets are empty.
	stolen := 0
	for _, npc := range h.Entities("NPC") {
		for i := 0; i < 12; i++ {
			var cur *protocol.EntityView
			for _, e := range h.Entities("NPC") {
				if e.ID == npc.ID {
					e := e
					cur = &e
				}
			}
			h.Place([3]float64{cur.Pos[0] + 1, 1.6, cur.Pos[2]}, 0, 0)
			ack := h.Do(protocol.ActionMug)
			if !ack.Accepted {
				if ack.Code != protocol.ErrTargetDepleted {
					t.Fatalf("mug: %+v", ack)
				}
				break
			}
			stolen++
		}
	}
	if stolen == 0 || h.S.Stats().Stolen < 12 {
		t.Fatalf("stolen=%d total=%d", stolen, h.S.Stats().Stolen)
	}
	if ack := h.BuyItem("Milk"); !ack.Accepted {
		t.Fatalf("buy milk after mugging: %+v", ack)
	}
	h.Place([3]float64{-14, 1.6, 10}, 0, 0)
	if ack := h.Do(protocol.ActionInteract); !ack.Accepted {
		t.Fatalf("checkout: %+v", ack)
	}
}
