package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/orderpulse/internal/canon"
)

func TestDefault(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 10, set.Cleaning.MobileLength)
	assert.Equal(t, "91", set.Cleaning.MobilePrefix)
	assert.Equal(t, []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02"}, set.Cleaning.DateFormats)
	assert.Equal(t, "North", set.Cleaning.Regions["north"])
	assert.Equal(t, "South", set.Cleaning.Regions["s"])
	assert.Equal(t, 30, set.KPI.WindowDays)
	assert.Equal(t, 10, set.KPI.TopLimit)
}

func TestLoadBytes_PartialOverrideKeepsDefaults(t *testing.T) {
	set, err := LoadBytes("override.cue", []byte(`
kpi: windowDays: 7
cleaning: regions: up: "North"
`))
	require.NoError(t, err)

	assert.Equal(t, 7, set.KPI.WindowDays)
	assert.Equal(t, 10, set.KPI.TopLimit)
	assert.Equal(t, "North", set.Cleaning.Regions["up"])
	assert.Equal(t, "West", set.Cleaning.Regions["west"])
}

func TestLoadBytes_ReplacesDateFormats(t *testing.T) {
	set, err := LoadBytes("override.cue", []byte(`cleaning: dateFormats: ["02/01/2006"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"02/01/2006"}, set.Cleaning.DateFormats)
}

func TestLoadBytes_RejectsInvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"negative_window", `kpi: windowDays: -1`},
		{"zero_mobile_length", `cleaning: mobileLength: 0`},
		{"region_outside_enum", `cleaning: regions: central: "Center"`},
		{"conflicting_synonym", `cleaning: regions: north: "South"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes(tt.name+".cue", []byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadBytes_SyntaxError(t *testing.T) {
	_, err := LoadBytes("bad.cue", []byte(`cleaning: {`))
	assert.Error(t, err)
}

func TestCanonConfig(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	cfg, err := set.CanonConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.MobileLength)
	assert.Equal(t, canon.RegionNorth, cfg.Regions["north"])
	assert.Equal(t, canon.RegionEast, cfg.Regions["eastern"])
	assert.NotEmpty(t, cfg.DateFormats)
}

func TestCanonConfig_RejectsUnknownTarget(t *testing.T) {
	set := Set{
		Cleaning: Cleaning{
			MobileLength: 10,
			DateFormats:  []string{"2006-01-02"},
			Regions:      map[string]string{"x": "Center"},
		},
	}
	_, err := set.CanonConfig()
	assert.Error(t, err)
}

func TestCanonConfig_RejectsUnknownBucketAsTarget(t *testing.T) {
	set := Set{
		Cleaning: Cleaning{
			MobileLength: 10,
			DateFormats:  []string{"2006-01-02"},
			Regions:      map[string]string{"x": "Unknown"},
		},
	}
	_, err := set.CanonConfig()
	assert.Error(t, err)
}
