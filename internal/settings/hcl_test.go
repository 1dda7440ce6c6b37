package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHCL_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
mission-time         = 8760
probability-analysis = true
`), 0o644))

	got, err := LoadHCL(path)
	require.NoError(t, err)
	assert.Equal(t, Settings{MissionTime: 8760, ProbabilityAnalysis: true}, got)
}

func TestLoadHCL_OmittedFieldsFallBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`mission-time = 100`), 0o644))

	got, err := LoadHCL(path)
	require.NoError(t, err)
	assert.Equal(t, Settings{MissionTime: 100, ProbabilityAnalysis: false}, got)
}

func TestLoadHCL_MissingFile(t *testing.T) {
	_, err := LoadHCL(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
