package decision

import (
	"strings"
)

type RemedyKind string

const (
	RemedyHealing RemedyKind = "healing"
	RemedySP      RemedyKind = "sp"
	RemedyStatus  RemedyKind = "status"
	RemedyEscape  RemedyKind = "escape"
)

// remedyCatalog lists known remedies best first per kind.
var remedyCatalog = map[RemedyKind][]string{
	RemedyHealing: {"White Potion", "Yellow Potion", "Orange Potion", "Red Potion"},
	RemedySP:      {"Blue Potion", "Grape Juice"},
	RemedyStatus:  {"Panacea", "Green Potion"},
	RemedyEscape:  {"Butterfly Wing", "Fly Wing"},
}

func RankedRemedies(kind RemedyKind) []string {
	names := remedyCatalog[kind]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// BestRemedy returns the highest-ranked carried remedy of the given kind. For
// healing it also accepts any carried stack typed "healing" after the ranked
// names are exhausted.
func (s Snapshot) BestRemedy(kind RemedyKind) (Item, bool) {
	for _, name := range remedyCatalog[kind] {
		if it, ok := s.FindItem(name); ok {
			return it, true
		}
	}
	if kind != RemedyHealing {
		return Item{}, false
	}
	for _, it := range s.Inventory {
		if it.Amount > 0 && strings.EqualFold(strings.TrimSpace(it.Type), string(RemedyHealing)) {
			return it, true
		}
	}
	return Item{}, false
}

// RemedyParams builds the item parameters for a remedy, falling back to the
// catalog head when nothing suitable is carried.
func (s Snapshot) RemedyParams(kind RemedyKind) map[string]string {
	if it, ok := s.BestRemedy(kind); ok {
		params := map[string]string{"item": it.Name, "source": "inventory"}
		if it.ID != "" {
			params["item_id"] = it.ID
		}
		return params
	}
	names := remedyCatalog[kind]
	if len(names) == 0 {
		return map[string]string{"source": "catalog"}
	}
	return map[string]string{"item": names[0], "source": "catalog"}
}
