package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/cellimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, cellimage.Sz(8, 16), cfg.CellSize())
	assert.Equal(t, cellimage.ResizeToFit, cfg.Resize())
	assert.Equal(t, cellimage.MiddleCenter, cfg.Alignment())
	assert.True(t, cfg.Slicing.ColumnOffset)
	assert.Equal(t, 2048, cfg.AtlasConfig().Width)
	assert.Nil(t, cfg.Logger())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[cell]
width = 10
height = 20

[atlas]
width = 512
height = 256
padding = 2

[render]
resize = "stretchtofill"
alignment = "TopEnd"
scaler = "nearest"

[slicing]
column_offset = false

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cellimage.Sz(10, 20), cfg.CellSize())
	assert.Equal(t, 512, cfg.AtlasConfig().Width)
	assert.Equal(t, 256, cfg.AtlasConfig().Height)
	assert.Equal(t, 2, cfg.AtlasConfig().Padding)
	assert.Equal(t, "cellimage_atlas", cfg.AtlasConfig().Label)
	assert.Equal(t, cellimage.StretchToFill, cfg.Resize())
	assert.Equal(t, cellimage.TopEnd, cfg.Alignment())
	assert.Equal(t, "nearest", cfg.Render.Scaler)
	assert.False(t, cfg.Slicing.ColumnOffset)
	assert.NotNil(t, cfg.Logger())
}

func TestLoad_LaterFilesOverride(t *testing.T) {
	base := writeConfig(t, "[cell]\nwidth = 6\nheight = 12\n")
	override := writeConfig(t, "[cell]\nheight = 14\n")

	cfg, err := Load(base, override)
	require.NoError(t, err)
	assert.Equal(t, cellimage.Sz(6, 14), cfg.CellSize())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"cell size", "[cell]\nwidth = 0\n"},
		{"resize", "[render]\nresize = \"shrink\"\n"},
		{"alignment", "[render]\nalignment = \"left\"\n"},
		{"log level", "[log]\nlevel = \"loud\"\n"},
		{"syntax", "[cell\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	paths := DefaultPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "cellimage.toml", paths[len(paths)-1])
	for _, p := range paths[:len(paths)-1] {
		assert.Equal(t, "config.toml", filepath.Base(p))
	}
}
