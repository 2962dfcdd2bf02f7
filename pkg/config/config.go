// Package config loads the optional per-project .diagtool.yml: a default
// view, a default detail level, and layout engine overrides. The diagtool
// subcommands do not load it; their flags carry their own defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/layout"
)

// Config is the on-disk shape of .diagtool.yml. Every field is optional.
type Config struct {
	// View is the default view name.
	View string `yaml:"view"`

	// Detail is the default column detail level ("tables", "pk", "pk_fk",
	// "all").
	Detail string `yaml:"detail"`

	// Engine overrides the layout engine's tunable constants.
	Engine EngineOverrides `yaml:"engine"`
}

// EngineOverrides holds per-constant overrides for the layout engine. A zero
// field means "use the engine's default for this constant."
type EngineOverrides struct {
	NodeGapX      float64 `yaml:"node_gap_x"`
	NodeGapY      float64 `yaml:"node_gap_y"`
	ChannelGap    float64 `yaml:"channel_gap"`
	LaneSpacing   float64 `yaml:"lane_spacing"`
	AnchorSpacing float64 `yaml:"anchor_spacing"`
	CornerRadius  float64 `yaml:"corner_radius"`
	EntityMargin  float64 `yaml:"entity_margin"`
}

// Load reads and parses path. A missing file is not an error: it returns a
// zero Config, since .diagtool.yml is entirely optional.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DetailLevel resolves the configured default detail string into an
// ir.DetailLevel, falling back to ok=false when unset or unrecognized so
// callers can apply their own fallback.
func (c Config) DetailLevel() (ir.DetailLevel, bool) {
	if c.Detail == "" {
		return 0, false
	}
	return ir.ParseDetailLevel(c.Detail)
}

// ApplyTo merges the configured engine overrides onto base, returning the
// result. Zero-valued fields in the overrides leave base's value untouched.
func (e EngineOverrides) ApplyTo(base layout.LayoutEngine) layout.LayoutEngine {
	if e.NodeGapX != 0 {
		base.NodeGapX = e.NodeGapX
	}
	if e.NodeGapY != 0 {
		base.NodeGapY = e.NodeGapY
	}
	if e.ChannelGap != 0 {
		base.ChannelGap = e.ChannelGap
	}
	if e.LaneSpacing != 0 {
		base.LaneSpacing = e.LaneSpacing
	}
	if e.AnchorSpacing != 0 {
		base.AnchorSpacing = e.AnchorSpacing
	}
	if e.CornerRadius != 0 {
		base.CornerRadius = e.CornerRadius
	}
	if e.EntityMargin != 0 {
		base.EntityMargin = e.EntityMargin
	}
	return base
}
