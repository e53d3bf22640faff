package cases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseName(t *testing.T) {
	cfg := params.CaseConfig{NumTypes: 4, NumFunctions: 2, NumCalls: 17}
	tests := []struct {
		name     string
		fields   int
		strategy params.Strategy
		want     string
	}{
		{"three fields static", 3, params.Static, "static-0004-0002-0017"},
		{"three fields dynamic", 3, params.Dynamic, "dynamic-0004-0002-0017"},
		{"two fields", 2, params.Static, "static-0004-0002"},
		{"one field", 1, params.Dynamic, "dynamic-0004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterializer("cases")
			require.NoError(t, m.SetNameFields(tt.fields))
			assert.Equal(t, tt.want, m.BaseName(cfg, tt.strategy))
		})
	}
}

func TestSetNameFieldsRejectsUnknown(t *testing.T) {
	m := NewMaterializer("cases")
	assert.Error(t, m.SetNameFields(0))
	assert.Error(t, m.SetNameFields(4))
}

func TestPaths(t *testing.T) {
	m := NewMaterializer(filepath.Join("out", "dir"))
	cfg := params.CaseConfig{NumTypes: 1, NumFunctions: 2, NumCalls: 3}
	got := m.Paths(cfg, params.Static)

	base := filepath.Join("out", "dir", "static-0001-0002-0003")
	assert.Equal(t, base+".go", got.Source)
	assert.Equal(t, base+BinaryExt(), got.Binary)
	assert.Equal(t, base+".s", got.Asm)

	// Toggles never change the layout.
	cfg.NoInline, cfg.OptLevel = true, 0
	assert.Equal(t, got, m.Paths(cfg, params.Static))
}

func TestMaterialize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cases")
	m := NewMaterializer(dir)
	cfg := params.CaseConfig{NumTypes: 3, NumFunctions: 2, NumCalls: 1, NoDedup: true}

	for _, strategy := range params.Strategies() {
		path, err := m.Materialize(cfg, strategy)
		require.NoError(t, err)
		assert.Equal(t, m.Paths(cfg, strategy).Source, path)

		written, err := os.ReadFile(path)
		require.NoError(t, err)
		want, err := synth.Synthesize(cfg, strategy)
		require.NoError(t, err)
		assert.Equal(t, want, string(written))
	}
}

func TestMaterializeOverwrites(t *testing.T) {
	m := NewMaterializer(t.TempDir())
	cfg := params.CaseConfig{NumTypes: 1, NumFunctions: 1, NumCalls: 1}
	path := m.Paths(cfg, params.Static).Source
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than nothing"), 0644))

	_, err := m.Materialize(cfg, params.Static)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(written), "stale")
}

func TestMaterializeDirectoryCollision(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "cases")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))

	m := NewMaterializer(filepath.Join(blocker, "inner"))
	_, err := m.Materialize(params.CaseConfig{NumTypes: 1, NumFunctions: 1, NumCalls: 1}, params.Dynamic)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "mkdir", ioErr.Op)
	assert.Equal(t, params.Dynamic, ioErr.Strategy)
}

func TestMaterializeInvalidConfig(t *testing.T) {
	m := NewMaterializer(t.TempDir())
	_, err := m.Materialize(params.CaseConfig{NumCalls: -1}, params.Static)

	var cfgErr *params.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRequireFile(t *testing.T) {
	dir := t.TempDir()
	cfg := params.CaseConfig{NumTypes: 1, NumFunctions: 1, NumCalls: 1}

	var ioErr *IOError
	assert.ErrorAs(t, RequireFile(filepath.Join(dir, "missing"), cfg, params.Static), &ioErr)
	assert.ErrorAs(t, RequireFile(dir, cfg, params.Static), &ioErr)

	file := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.NoError(t, RequireFile(file, cfg, params.Static))
}
