package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/layout"
)

func TestLoadMissingFileReturnsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".diagtool.yml")
	writeFile(t, path, `
view: core
detail: pk_fk
engine:
  node_gap_x: 150
  corner_radius: 16
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "core", cfg.View)
	assert.Equal(t, "pk_fk", cfg.Detail)
	assert.Equal(t, 150.0, cfg.Engine.NodeGapX)
	assert.Equal(t, 16.0, cfg.Engine.CornerRadius)
}

func TestDetailLevelResolution(t *testing.T) {
	level, ok := Config{Detail: "all"}.DetailLevel()
	require.True(t, ok)
	assert.Equal(t, ir.DetailAll, level)

	_, ok = Config{}.DetailLevel()
	assert.False(t, ok)

	_, ok = Config{Detail: "bogus"}.DetailLevel()
	assert.False(t, ok)
}

func TestEngineOverridesApplyToOnlyOverridesNonZeroFields(t *testing.T) {
	base := layout.DefaultLayoutEngine()
	overrides := EngineOverrides{NodeGapX: 200}

	result := overrides.ApplyTo(base)

	assert.Equal(t, 200.0, result.NodeGapX)
	assert.Equal(t, base.NodeGapY, result.NodeGapY)
	assert.Equal(t, base.ChannelGap, result.ChannelGap)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}
