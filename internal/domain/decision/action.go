package decision

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrConfidenceOutOfRange = errors.New("confidence out of range")
	ErrUnknownActionKind    = errors.New("unknown action kind")
)

type ActionKind string

const (
	KindAttack  ActionKind = "attack"
	KindSkill   ActionKind = "skill"
	KindMove    ActionKind = "move"
	KindItem    ActionKind = "item"
	KindDrop    ActionKind = "drop"
	KindTalk    ActionKind = "talk"
	KindCommand ActionKind = "command"
	KindNone    ActionKind = "none"
)

func supportedKinds() []ActionKind {
	return []ActionKind{KindAttack, KindSkill, KindMove, KindItem, KindDrop, KindTalk, KindCommand, KindNone}
}

func ParseActionKind(raw string) (ActionKind, error) {
	k := ActionKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range supportedKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownActionKind, raw)
}

// MaxNoOpConfidence is the ceiling every producer uses for "none" actions.
const MaxNoOpConfidence = 0.5

// Action is a chosen effect. Values are immutable; accessors hand out copies.
type Action struct {
	kind       ActionKind
	params     map[string]string
	reason     string
	confidence float64
}

func NewAction(kind ActionKind, reason string, confidence float64, params map[string]string) (Action, error) {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return Action{}, fmt.Errorf("%w: %v", ErrConfidenceOutOfRange, confidence)
	}
	if _, err := ParseActionKind(string(kind)); err != nil {
		return Action{}, err
	}
	return Action{
		kind:       kind,
		params:     copyParams(params),
		reason:     reason,
		confidence: confidence,
	}, nil
}

// NoOp builds a "none" action, clamping confidence into [0, MaxNoOpConfidence].
func NoOp(reason string, confidence float64) Action {
	if math.IsNaN(confidence) || confidence < 0 {
		confidence = 0
	}
	if confidence > MaxNoOpConfidence {
		confidence = MaxNoOpConfidence
	}
	return Action{kind: KindNone, reason: reason, confidence: confidence}
}

func (a Action) Kind() ActionKind {
	if a.kind == "" {
		return KindNone
	}
	return a.kind
}

func (a Action) IsNone() bool { return a.Kind() == KindNone }

func (a Action) Reason() string { return a.reason }

func (a Action) Confidence() float64 { return a.confidence }

func (a Action) Param(key string) string { return a.params[key] }

func (a Action) Params() map[string]string { return copyParams(a.params) }

// WithReason returns a copy carrying a different justification.
func (a Action) WithReason(reason string) Action {
	out := a
	out.params = copyParams(a.params)
	out.reason = reason
	return out
}

func (a Action) Equal(b Action) bool {
	if a.Kind() != b.Kind() || a.reason != b.reason || a.confidence != b.confidence {
		return false
	}
	if len(a.params) != len(b.params) {
		return false
	}
	for k, v := range a.params {
		if bv, ok := b.params[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

type actionJSON struct {
	Type       ActionKind        `json:"type"`
	Parameters map[string]string `json:"parameters"`
	Reason     string            `json:"reason"`
	Confidence float64           `json:"confidence"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	params := a.params
	if params == nil {
		params = map[string]string{}
	}
	return json.Marshal(actionJSON{
		Type:       a.Kind(),
		Parameters: params,
		Reason:     a.reason,
		Confidence: a.confidence,
	})
}

func (a *Action) UnmarshalJSON(b []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewAction(raw.Type, raw.Reason, raw.Confidence, raw.Parameters)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func copyParams(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
