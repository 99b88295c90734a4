package tuning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tacticore/internal/domain/decision"
)

// Load reads YAML overrides on top of decision.DefaultTuning. An empty path
// returns the defaults.
func Load(path string) (decision.Tuning, error) {
	if strings.TrimSpace(path) == "" {
		return decision.DefaultTuning(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return decision.Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	t, err := Parse(raw)
	if err != nil {
		return decision.Tuning{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func Parse(raw []byte) (decision.Tuning, error) {
	t := decision.DefaultTuning()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return decision.Tuning{}, fmt.Errorf("%w: %v", decision.ErrInvalidTuning, err)
	}
	if err := t.Validate(); err != nil {
		return decision.Tuning{}, err
	}
	return t, nil
}
