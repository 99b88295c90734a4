package decision

import "strings"

type Position struct {
	Map string `json:"map"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
}

type Character struct {
	Name          string   `json:"name"`
	Level         int      `json:"level"`
	HP            int      `json:"hp"`
	MaxHP         int      `json:"max_hp"`
	SP            int      `json:"sp"`
	MaxSP         int      `json:"max_sp"`
	Position      Position `json:"position"`
	Weight        int      `json:"weight"`
	MaxWeight     int      `json:"max_weight"`
	Zeny          int      `json:"zeny"`
	JobClass      string   `json:"job_class"`
	StatusEffects []string `json:"status_effects"`
}

type Hostile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	HP         int    `json:"hp"`
	MaxHP      int    `json:"max_hp"`
	Distance   int    `json:"distance"`
	Aggressive bool   `json:"is_aggressive"`
}

type Item struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Type   string `json:"type"`
}

type Friendly struct {
	Name        string `json:"name"`
	Level       int    `json:"level"`
	Guild       string `json:"guild,omitempty"`
	Distance    int    `json:"distance"`
	PartyMember bool   `json:"is_party_member"`
}

// Snapshot is the world state at one decision instant. It is built once per
// request and only read afterwards.
type Snapshot struct {
	Character   Character  `json:"character"`
	Hostiles    []Hostile  `json:"monsters"`
	Inventory   []Item     `json:"inventory"`
	Friendlies  []Friendly `json:"nearby_players"`
	TimestampMs int64      `json:"timestamp_ms"`
}

func (s Snapshot) HPRatio() float64 {
	return vitalRatio(s.Character.HP, s.Character.MaxHP)
}

func (s Snapshot) SPRatio() float64 {
	return vitalRatio(s.Character.SP, s.Character.MaxSP)
}

// WeightRatio reports carried load over capacity. An unknown capacity reads as
// an empty bag.
func (s Snapshot) WeightRatio() float64 {
	if s.Character.MaxWeight <= 0 {
		return 0
	}
	r := float64(s.Character.Weight) / float64(s.Character.MaxWeight)
	if r < 0 {
		return 0
	}
	return r
}

func vitalRatio(cur, max int) float64 {
	if max <= 0 {
		return 1.0
	}
	r := float64(cur) / float64(max)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func (s Snapshot) HasStatus(name string) bool {
	for _, effect := range s.Character.StatusEffects {
		if strings.EqualFold(strings.TrimSpace(effect), name) {
			return true
		}
	}
	return false
}

// UnderAttack reports whether an aggressive hostile is within radius cells.
func (s Snapshot) UnderAttack(radius int) bool {
	for _, h := range s.Hostiles {
		if h.Aggressive && h.Distance <= radius {
			return true
		}
	}
	return false
}

func (s Snapshot) CountHostilesWithin(radius int, aggressiveOnly bool) int {
	n := 0
	for _, h := range s.Hostiles {
		if h.Distance > radius {
			continue
		}
		if aggressiveOnly && !h.Aggressive {
			continue
		}
		n++
	}
	return n
}

// FindItem returns the first carried stack whose name matches, ignoring empty stacks.
func (s Snapshot) FindItem(name string) (Item, bool) {
	for _, it := range s.Inventory {
		if it.Amount <= 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(it.Name), name) {
			return it, true
		}
	}
	return Item{}, false
}

func (s Snapshot) HasEntities() bool {
	return len(s.Hostiles) > 0 || len(s.Friendlies) > 0
}
