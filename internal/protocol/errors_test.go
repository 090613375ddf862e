package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrSessionBusy,
		ErrInsufficientFunds,
		ErrEmptyCart,
		ErrIncompleteList,
		ErrAlreadyOwned,
		ErrNoTarget,
		ErrTargetDepleted,
		ErrOutOfAmmo,
		ErrNoMolotovs,
		ErrNoWeapon,
		ErrMenuClosed,
		ErrBadOption,
		ErrDisabled,
		ErrGrounded,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}
