package economy

import (
	"fmt"

	"shoprun.game/internal/protocol"
	"shoprun.game/internal/sim/entities"
)

// StealAmount caps a roll at what the wallet still holds.
func StealAmount(roll, wallet int) int {
	if wallet <= 0 || roll <= 0 {
		return 0
	}
	if roll > wallet {
		return wallet
	}
	return roll
}

// Mug moves StealAmount(roll, wallet) from the NPC to the player. A nil npc
// means nobody was in range.
func (s *State) Mug(npc *entities.NPC, roll int) (amount int, ok bool, code string, msg string) {
	if npc == nil {
		return 0, false, protocol.ErrNoTarget, "Nobody close enough to mug."
	}
	if npc.Wallet <= 0 {
		return 0, false, protocol.ErrTargetDepleted, "They have no money left."
	}
	amount = StealAmount(roll, npc.Wallet)
	npc.Wallet -= amount
	s.Money += amount
	return amount, true, "", fmt.Sprintf("You stole $%d. (They have $%d left)", amount, npc.Wallet)
}
