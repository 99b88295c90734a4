package decision

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTuning = errors.New("invalid tuning")

type ReflexTuning struct {
	HPCritical     float64  `yaml:"hp_critical"`
	HPLow          float64  `yaml:"hp_low"`
	SPLow          float64  `yaml:"sp_low"`
	WeightCritical float64  `yaml:"weight_critical"`
	AttackedRange  int      `yaml:"attacked_range"`
	DangerStatuses []string `yaml:"danger_statuses"`
}

type RulesTuning struct {
	HPHeal            float64 `yaml:"hp_heal"`
	HPNoAttack        float64 `yaml:"hp_no_attack"`
	SPSkill           float64 `yaml:"sp_skill"`
	SkillRange        int     `yaml:"skill_range"`
	MaxAttackDistance int     `yaml:"max_attack_distance"`
	SafeDistance      int     `yaml:"safe_distance"`
	RetreatCount      int     `yaml:"retreat_count"`
}

type CombatTuning struct {
	MinHP       float64 `yaml:"min_hp"`
	Range       int     `yaml:"range"`
	SPSkill     float64 `yaml:"sp_skill"`
	AoERadius   int     `yaml:"aoe_radius"`
	AoEMinCount int     `yaml:"aoe_min_count"`
}

type ConsumablesTuning struct {
	HPEmergency float64 `yaml:"hp_emergency"`
	HPWarning   float64 `yaml:"hp_warning"`
	SPWarning   float64 `yaml:"sp_warning"`
}

type EconomyTuning struct {
	Overweight     float64 `yaml:"overweight"`
	MaxItemEntries int     `yaml:"max_item_entries"`
}

type NavigationTuning struct {
	StuckThreshold int `yaml:"stuck_threshold"`
	MaxStep        int `yaml:"max_step"`
}

type SocialTuning struct {
	InteractionRange int     `yaml:"interaction_range"`
	MinHPInCombat    float64 `yaml:"min_hp_in_combat"`
	MaxHostiles      int     `yaml:"max_hostiles"`
}

type PlanningTuning struct {
	MinThreats int     `yaml:"min_threats"`
	HPTrigger  float64 `yaml:"hp_trigger"`
}

type StrategicTuning struct {
	MinInterval    time.Duration `yaml:"min_interval"`
	MilestoneEvery int           `yaml:"milestone_every"`
}

// Tuning holds every threshold the tiers and coordinators read.
type Tuning struct {
	Reflex      ReflexTuning      `yaml:"reflex"`
	Rules       RulesTuning       `yaml:"rules"`
	Combat      CombatTuning      `yaml:"combat"`
	Consumables ConsumablesTuning `yaml:"consumables"`
	Economy     EconomyTuning     `yaml:"economy"`
	Navigation  NavigationTuning  `yaml:"navigation"`
	Social      SocialTuning      `yaml:"social"`
	Planning    PlanningTuning    `yaml:"planning"`
	Strategic   StrategicTuning   `yaml:"strategic"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Reflex: ReflexTuning{
			HPCritical:     0.25,
			HPLow:          0.40,
			SPLow:          0.20,
			WeightCritical: 0.90,
			AttackedRange:  5,
			DangerStatuses: []string{"Stunned", "Frozen", "Stone Curse", "Sleep", "Blind", "Silence"},
		},
		Rules: RulesTuning{
			HPHeal:            0.60,
			HPNoAttack:        0.40,
			SPSkill:           0.30,
			SkillRange:        10,
			MaxAttackDistance: 15,
			SafeDistance:      8,
			RetreatCount:      3,
		},
		Combat: CombatTuning{
			MinHP:       0.50,
			Range:       15,
			SPSkill:     0.30,
			AoERadius:   5,
			AoEMinCount: 3,
		},
		Consumables: ConsumablesTuning{
			HPEmergency: 0.35,
			HPWarning:   0.55,
			SPWarning:   0.25,
		},
		Economy: EconomyTuning{
			Overweight:     0.85,
			MaxItemEntries: 50,
		},
		Navigation: NavigationTuning{
			StuckThreshold: 5,
			MaxStep:        5,
		},
		Social: SocialTuning{
			InteractionRange: 10,
			MinHPInCombat:    0.80,
			MaxHostiles:      2,
		},
		Planning: PlanningTuning{
			MinThreats: 3,
			HPTrigger:  0.30,
		},
		Strategic: StrategicTuning{
			MinInterval:    time.Minute,
			MilestoneEvery: 10,
		},
	}
}

func (t Tuning) Validate() error {
	ratios := map[string]float64{
		"reflex.hp_critical":       t.Reflex.HPCritical,
		"reflex.hp_low":            t.Reflex.HPLow,
		"reflex.sp_low":            t.Reflex.SPLow,
		"reflex.weight_critical":   t.Reflex.WeightCritical,
		"rules.hp_heal":            t.Rules.HPHeal,
		"rules.hp_no_attack":       t.Rules.HPNoAttack,
		"rules.sp_skill":           t.Rules.SPSkill,
		"combat.min_hp":            t.Combat.MinHP,
		"combat.sp_skill":          t.Combat.SPSkill,
		"consumables.hp_emergency": t.Consumables.HPEmergency,
		"consumables.hp_warning":   t.Consumables.HPWarning,
		"consumables.sp_warning":   t.Consumables.SPWarning,
		"economy.overweight":       t.Economy.Overweight,
		"social.min_hp_in_combat":  t.Social.MinHPInCombat,
		"planning.hp_trigger":      t.Planning.HPTrigger,
	}
	for key, v := range ratios {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%v outside [0,1]", ErrInvalidTuning, key, v)
		}
	}
	if t.Navigation.StuckThreshold < 1 {
		return fmt.Errorf("%w: navigation.stuck_threshold must be >= 1", ErrInvalidTuning)
	}
	if t.Navigation.MaxStep < 1 {
		return fmt.Errorf("%w: navigation.max_step must be >= 1", ErrInvalidTuning)
	}
	if t.Planning.MinThreats < 1 {
		return fmt.Errorf("%w: planning.min_threats must be >= 1", ErrInvalidTuning)
	}
	if t.Strategic.MinInterval < 0 {
		return fmt.Errorf("%w: strategic.min_interval must not be negative", ErrInvalidTuning)
	}
	return nil
}
