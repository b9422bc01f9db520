package marker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-migrate/pkg/geometry"
)

func testMarkers() []Marker {
	return []Marker{
		{ID: "m1", Label: "Town hall", Position: geometry.Point2D{X: 120, Y: 80}},
		{ID: "m2", Label: "Harbor", Position: geometry.Point2D{X: 40.5, Y: 310.25}},
		{ID: "m3", Position: geometry.Point2D{X: 0, Y: 0}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.json")
	want := testMarkers()

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse marker file")
}

func TestRealign(t *testing.T) {
	markers := testMarkers()
	moved := Realign(markers, geometry.Translation(10, -5))

	require.Len(t, moved, len(markers))
	for i, m := range markers {
		assert.Equal(t, m.ID, moved[i].ID)
		assert.Equal(t, m.Label, moved[i].Label)
		assert.InDelta(t, m.Position.X+10, moved[i].Position.X, 1e-9)
		assert.InDelta(t, m.Position.Y-5, moved[i].Position.Y, 1e-9)
	}

	// Input untouched
	assert.Equal(t, testMarkers(), markers)
}

func TestClampToBounds(t *testing.T) {
	markers := []Marker{
		{ID: "in", Position: geometry.Point2D{X: 50, Y: 50}},
		{ID: "left", Position: geometry.Point2D{X: -5, Y: 50}},
		{ID: "far", Position: geometry.Point2D{X: 150, Y: 220}},
	}

	clamped := ClampToBounds(markers, geometry.Size{Width: 100, Height: 100})
	assert.Equal(t, 2, clamped)
	assert.Equal(t, geometry.Point2D{X: 50, Y: 50}, markers[0].Position)
	assert.Equal(t, geometry.Point2D{X: 0, Y: 50}, markers[1].Position)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, markers[2].Position)
}
