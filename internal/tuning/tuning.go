// Package tuning loads the game's operational knobs. Generation thresholds
// and the cell-key composition are deliberately NOT tunable: they are part
// of the save-compatibility contract.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Retention policies for overrides whose cells leave the reconciled set.
const (
	RetentionPersistent     = "persistent"
	RetentionEvictOffscreen = "evict_offscreen"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	CellSizeDeg    float64 `yaml:"cell_size_deg"`
	SpawnLat       float64 `yaml:"spawn_lat"`
	SpawnLng       float64 `yaml:"spawn_lng"`
	InteractRadius int     `yaml:"interact_radius"`
	ViewMargin     int     `yaml:"view_margin"`
	VictoryTarget  int     `yaml:"victory_target"`

	// OverrideRetention picks between the persistent-memento design and the
	// earlier evict-on-leave ("farming") variant.
	OverrideRetention string `yaml:"override_retention"`

	SaveDebounceMs int `yaml:"save_debounce_ms"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:   "1.0",
		CellSizeDeg:       1e-4,
		SpawnLat:          36.98949379578401,
		SpawnLng:          -122.06277128548504,
		InteractRadius:    3,
		ViewMargin:        1,
		VictoryTarget:     2048,
		OverrideRetention: RetentionPersistent,
		SaveDebounceMs:    800,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.CellSizeDeg <= 0 {
		return fmt.Errorf("cell_size_deg must be positive")
	}
	if t.InteractRadius < 0 {
		return fmt.Errorf("interact_radius must be non-negative")
	}
	if t.ViewMargin < 0 {
		return fmt.Errorf("view_margin must be non-negative")
	}
	if t.VictoryTarget < 2 {
		return fmt.Errorf("victory_target must be at least 2")
	}
	switch t.OverrideRetention {
	case RetentionPersistent, RetentionEvictOffscreen:
	default:
		return fmt.Errorf("override_retention must be %q or %q", RetentionPersistent, RetentionEvictOffscreen)
	}
	if t.SaveDebounceMs < 0 {
		return fmt.Errorf("save_debounce_ms must be non-negative")
	}
	return nil
}
