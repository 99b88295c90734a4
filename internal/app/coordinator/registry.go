package coordinator

import (
	"math/rand/v2"

	"tacticore/internal/domain/decision"
)

// NewDefaultManager registers the coordinator set in its arbitration order:
// combat, consumables, economy, navigation, social, planning. Equal priority and equal
// confidence resolve to the earlier entry, so combat wins over consumables.
func NewDefaultManager(t decision.Tuning, rng *rand.Rand) (*Manager, error) {
	return NewManager(
		NewCombat(t.Combat),
		NewConsumables(t.Consumables),
		NewEconomy(t.Economy),
		NewNavigation(t.Navigation, rng),
		NewSocial(t.Social),
		NewPlanning(t.Planning),
	)
}
