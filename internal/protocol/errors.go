package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrSessionBusy     = "E_SESSION_BUSY"

	// Economy.
	ErrInsufficientFunds = "E_INSUFFICIENT_FUNDS"
	ErrEmptyCart         = "E_EMPTY_CART"
	ErrIncompleteList    = "E_INCOMPLETE_LIST"
	ErrAlreadyOwned      = "E_ALREADY_OWNED"

	// Targets and inventory.
	ErrNoTarget       = "E_NO_TARGET"
	ErrTargetDepleted = "E_TARGET_DEPLETED"
	ErrOutOfAmmo      = "E_OUT_OF_AMMO"
	ErrNoMolotovs     = "E_NO_MOLOTOVS"
	ErrNoWeapon       = "E_NO_WEAPON"

	// Menu and action routing.
	ErrMenuClosed = "E_MENU_CLOSED"
	ErrBadOption  = "E_BAD_OPTION"
	ErrDisabled   = "E_DISABLED"
	ErrGrounded   = "E_AIRBORNE"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrSessionBusy:       {},
	ErrInsufficientFunds: {},
	ErrEmptyCart:         {},
	ErrIncompleteList:    {},
	ErrAlreadyOwned:      {},
	ErrNoTarget:          {},
	ErrTargetDepleted:    {},
	ErrOutOfAmmo:         {},
	ErrNoMolotovs:        {},
	ErrNoWeapon:          {},
	ErrMenuClosed:        {},
	ErrBadOption:         {},
	ErrDisabled:          {},
	ErrGrounded:          {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
