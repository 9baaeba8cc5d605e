package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/config"
)

func withConfig(t *testing.T, c config.Config) {
	t.Helper()
	saved := cfg
	cfg = c
	t.Cleanup(func() { cfg = saved })
}

func TestLoadAffidavitSettings(t *testing.T) {
	c := config.Default()
	c.Affidavit.Timezone = "America/Chicago"
	withConfig(t, c)

	settings, err := loadAffidavitSettings()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", settings.zone.String())
	assert.Equal(t, affidavit.DefaultFieldMap(), settings.fields)
}

func TestLoadAffidavitSettings_InvalidTimezone(t *testing.T) {
	c := config.Default()
	c.Affidavit.Timezone = "Mars/Olympus_Mons"
	withConfig(t, c)

	_, err := loadAffidavitSettings()
	assert.ErrorContains(t, err, "Mars/Olympus_Mons")
}

func TestLoadAffidavitSettings_MissingFieldMap(t *testing.T) {
	c := config.Default()
	c.Affidavit.FieldMap = "does-not-exist.yaml"
	withConfig(t, c)

	_, err := loadAffidavitSettings()
	assert.ErrorContains(t, err, "invalid field map")
}
