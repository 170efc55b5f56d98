package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings(t *testing.T) *Settings {
	t.Helper()
	s := &Settings{}
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "labelrun.db"
	s.Print.Timeout = 10 * time.Second
	return s
}

func TestValidateSettingsDefaults(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(defaultSettings(t)))
}

func TestValidateSettingsRejectsDualStores(t *testing.T) {
	t.Parallel()

	s := defaultSettings(t)
	s.Output.MySQL.Enabled = true
	s.Output.MySQL.Host = "localhost"
	s.Output.MySQL.Database = "labelrun"
	s.Output.MySQL.Username = "labelrun"

	err := ValidateSettings(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one of")
}

func TestValidateSettingsRequiresSQLitePath(t *testing.T) {
	t.Parallel()

	s := defaultSettings(t)
	s.Output.SQLite.Path = ""
	require.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRequiresMySQLFields(t *testing.T) {
	t.Parallel()

	s := defaultSettings(t)
	s.Output.SQLite.Enabled = false
	s.Output.MySQL.Enabled = true
	s.Output.MySQL.Host = "localhost"
	// database and username missing
	require.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRequiresPositiveTimeout(t *testing.T) {
	t.Parallel()

	s := defaultSettings(t)
	s.Print.Timeout = 0
	require.Error(t, ValidateSettings(s))
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	t.Parallel()

	s := defaultSettings(t)
	s.Main.Name = "bench-printer"
	path := t.TempDir() + "/config.yaml"

	require.NoError(t, SaveYAMLConfig(path, s))
	assert.FileExists(t, path)
}
