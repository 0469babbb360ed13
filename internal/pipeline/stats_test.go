package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/zonograph/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_Compute(t *testing.T) {
	stats := NewStats()
	zones := []zone.Zone{
		{Type: zone.City},
		{Type: zone.City},
		{Type: zone.Country},
		{Type: zone.NonAdministrative},
	}

	stats.Compute(zones)

	assert.Equal(t, 2, stats.ZoneTypeCounts["city"])
	assert.Equal(t, 1, stats.ZoneTypeCounts["country"])
	assert.Equal(t, 1, stats.ZoneTypeCounts["non_administrative"])
}

func TestStats_Counters(t *testing.T) {
	stats := NewStats()

	stats.CountUnknownCountryRules("XK")
	stats.CountUnknownCountryRules("XK")
	level := uint32(11)
	stats.CountUnhandledLevel("FR", &level)
	stats.CountUnhandledLevel("FR", nil)

	assert.Equal(t, 2, stats.ZoneWithUnknownCountryRules["XK"])
	assert.Equal(t, 1, stats.UnhandledAdminLevel["FR"][11])
	assert.Equal(t, 1, stats.UnhandledAdminLevel["FR"][0])
}

func TestStats_String(t *testing.T) {
	stats := NewStats()
	stats.ZoneTypeCounts["city"] = 3
	stats.ZoneWithoutCountry = 2
	stats.CountUnknownCountryRules("XK")
	level := uint32(11)
	stats.CountUnhandledLevel("FR", &level)

	out := stats.String()

	assert.Contains(t, out, "city: 3")
	assert.Contains(t, out, "zones without country: 2")
	assert.Contains(t, out, "unknown rules for XK: 1")
	assert.Contains(t, out, "unhandled admin_level 11 in FR: 1")
}

func TestStats_JSONRoundTrip(t *testing.T) {
	stats := NewStats()
	stats.ZoneTypeCounts["city"] = 1
	level := uint32(3)
	stats.CountUnhandledLevel("FR", &level)

	first, err := json.Marshal(stats)
	require.NoError(t, err)

	var parsed Stats
	require.NoError(t, json.Unmarshal(first, &parsed))

	second, err := json.Marshal(parsed)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
