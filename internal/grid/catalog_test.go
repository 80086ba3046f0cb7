package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

func TestCatalog_Validate(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.Validate("California", 0, 0))
	assert.True(t, c.Validate("California", 9, 19))
	assert.False(t, c.Validate("California", 10, 0))
	assert.False(t, c.Validate("California", 0, 20))
	assert.False(t, c.Validate("California", -1, 3))

	assert.True(t, c.Validate("Wyoming", 5, 5))
	assert.False(t, c.Validate("Wyoming", 6, 5))

	// неизвестный регион использует сетку 10x10
	assert.True(t, c.Validate("Alaska", 9, 9))
	assert.False(t, c.Validate("Alaska", 10, 9))
}

func TestCatalog_ValidateCoordinate(t *testing.T) {
	c := DefaultCatalog()
	assert.True(t, c.ValidateCoordinate(models.GridCoordinate{Region: "Utah", X: 5, Y: 7}))
	assert.False(t, c.ValidateCoordinate(models.GridCoordinate{Region: "Utah", X: 6, Y: 7}))
}

func TestWithinRange(t *testing.T) {
	assert.True(t, models.WithinRange(models.GridCoordinate{X: 0, Y: 15}, 0, 4, 15, 19))
	assert.True(t, models.WithinRange(models.GridCoordinate{X: 4, Y: 19}, 0, 4, 15, 19))
	assert.False(t, models.WithinRange(models.GridCoordinate{X: 5, Y: 16}, 0, 4, 15, 19))
	assert.False(t, models.WithinRange(models.GridCoordinate{X: 2, Y: 14}, 0, 4, 15, 19))
}

func TestCatalog_ApproximateLatLong(t *testing.T) {
	c := DefaultCatalog()

	origin := c.ApproximateLatLong("California", 0, 0)
	assert.InDelta(t, 32.5, origin.Latitude, 1e-9)
	assert.InDelta(t, -124.4, origin.Longitude, 1e-9)

	mid := c.ApproximateLatLong("California", 5, 10)
	assert.InDelta(t, 37.25, mid.Latitude, 1e-9)
	assert.InDelta(t, -119.25, mid.Longitude, 1e-9)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	content := `
regions:
  - name: Sierra
    width: 4
    height: 6
    min_latitude: 36
    max_latitude: 40
    min_longitude: -121
    max_longitude: -118
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	r, ok := c.Lookup("Sierra")
	require.True(t, ok)
	assert.Equal(t, 4, r.Width)
	assert.True(t, c.Validate("Sierra", 3, 5))
	assert.False(t, c.Validate("Sierra", 4, 5))
	assert.Len(t, c.Regions(), 1)
}

func TestLoadCatalog_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("regions: []\n"), 0o600))
	_, err = LoadCatalog(empty)
	assert.ErrorContains(t, err, "declares no regions")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("regions:\n  - name: X\n    width: 0\n    height: 2\n"), 0o600))
	_, err = LoadCatalog(bad)
	assert.ErrorContains(t, err, "must be positive")
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Region{{Name: "A", Width: 1, Height: 1}, {Name: "A", Width: 2, Height: 2}})
	assert.ErrorContains(t, err, "declared twice")
}
