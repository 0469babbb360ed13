package typer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/zonograph/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frRules = `
admin_level:
  2: country
  4: state
  6: state_district
  8: city
  9: city_district
overrides:
  id:
    relation:
      "999": non_administrative
  contained_by:
    relation:
      "1059668":
        admin_level:
          5: state_district
`

func writeRules(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func level(l uint32) *uint32 { return &l }

func adminZone(osmID string, l *uint32) *zone.Zone {
	return &zone.Zone{OSMID: osmID, AdminLevel: l, Name: "z", Tags: map[string]string{}}
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNew_MalformedFile(t *testing.T) {
	dir := writeRules(t, map[string]string{"fr.yaml": "admin_level: [not, a, map]"})
	_, err := New(dir)
	assert.Error(t, err)
}

func TestTypeOf_LevelRules(t *testing.T) {
	typer, err := New(writeRules(t, map[string]string{"fr.yaml": frRules}))
	require.NoError(t, err)

	zt, err := typer.TypeOf(adminZone("relation:1", level(8)), "FR", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, zone.City, zt)

	zt, err = typer.TypeOf(adminZone("relation:2", level(2)), "fr", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, zone.Country, zt)
}

func TestTypeOf_InvalidCountry(t *testing.T) {
	typer, err := New(writeRules(t, map[string]string{"fr.yaml": frRules}))
	require.NoError(t, err)

	_, err = typer.TypeOf(adminZone("relation:1", level(8)), "XX", nil, nil)
	var invalid *InvalidCountryError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "XX", invalid.Country)
}

func TestTypeOf_UnknownLevel(t *testing.T) {
	typer, err := New(writeRules(t, map[string]string{"fr.yaml": frRules}))
	require.NoError(t, err)

	_, err = typer.TypeOf(adminZone("relation:1", level(11)), "FR", nil, nil)
	var unknown *UnknownLevelError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint32(11), *unknown.Level)

	_, err = typer.TypeOf(adminZone("relation:1", nil), "FR", nil, nil)
	require.ErrorAs(t, err, &unknown)
	assert.Nil(t, unknown.Level)
}

func TestTypeOf_IDOverrideShortCircuits(t *testing.T) {
	typer, err := New(writeRules(t, map[string]string{"fr.yaml": frRules}))
	require.NoError(t, err)

	// Level 8 would say city; the override pins it.
	zt, err := typer.TypeOf(adminZone("relation:999", level(8)), "FR", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, zone.NonAdministrative, zt)
}

func TestTypeOf_ContainedByOverride(t *testing.T) {
	typer, err := New(writeRules(t, map[string]string{"fr.yaml": frRules}))
	require.NoError(t, err)

	all := []zone.Zone{
		{ID: 0, OSMID: "relation:1059668"},
		{ID: 1, OSMID: "relation:55"},
	}

	// Level 5 has no plain rule, but the ancestor swaps in its own table.
	zt, err := typer.TypeOf(adminZone("relation:55", level(5)), "FR", []zone.Index{0}, all)
	require.NoError(t, err)
	assert.Equal(t, zone.StateDistrict, zt)

	// Without the ancestor, level 5 is unhandled.
	_, err = typer.TypeOf(adminZone("relation:55", level(5)), "FR", nil, all)
	var unknown *UnknownLevelError
	assert.ErrorAs(t, err, &unknown)
}

func TestHasCountry(t *testing.T) {
	typer, err := New(writeRules(t, map[string]string{"fr.yaml": frRules, "de.yml": "admin_level:\n  2: country\n"}))
	require.NoError(t, err)

	assert.True(t, typer.HasCountry("FR"))
	assert.True(t, typer.HasCountry("de"))
	assert.False(t, typer.HasCountry("US"))
}
