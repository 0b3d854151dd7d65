package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return NewCatalog([]Place{
		{Name: "Recife - PE", X: 0, Y: 0},
		{Name: "Caruaru - PE", X: 300, Y: 400},
		{Name: "Caruaru Norte", X: 300, Y: 300},
	})
}

func TestDistance(t *testing.T) {
	c := testCatalog()

	t.Run("Scaled Euclidean", func(t *testing.T) {
		km, err := c.Distance("Recife - PE", "Caruaru - PE")
		require.NoError(t, err)
		assert.Equal(t, 25.0, km) // 500 units * 0.05
	})

	t.Run("Case Insensitive", func(t *testing.T) {
		km, err := c.Distance("  recife - pe", "CARUARU NORTE")
		require.NoError(t, err)
		assert.Equal(t, 21.2, km) // 424.26 units, rounded to 0.1 km
	})

	t.Run("Unknown Origin", func(t *testing.T) {
		_, err := c.Distance("Atlantis", "Caruaru - PE")
		assert.ErrorIs(t, err, ErrUnknownLocation)
	})

	t.Run("Unknown Destination", func(t *testing.T) {
		_, err := c.Distance("Recife - PE", "")
		assert.ErrorIs(t, err, ErrUnknownLocation)
	})
}

func TestSuggest(t *testing.T) {
	c := testCatalog()

	names := func(ps []Place) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Name
		}
		return out
	}

	assert.Equal(t, []string{"Caruaru - PE", "Caruaru Norte"}, names(c.Suggest("caru", 0)))
	assert.Equal(t, []string{"Caruaru - PE"}, names(c.Suggest("caru", 1)))
	assert.Len(t, c.Suggest("", 0), 3)
	assert.Empty(t, c.Suggest("zzz", 0))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	t.Run("Success", func(t *testing.T) {
		path := filepath.Join(dir, "places.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"name":"A","x":0,"y":0},{"name":"B","x":0,"y":20}]`), 0o600))

		c, err := LoadCatalog(path)
		require.NoError(t, err)
		km, err := c.Distance("a", "b")
		require.NoError(t, err)
		assert.Equal(t, 1.0, km)
	})

	t.Run("Empty File", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

		_, err := LoadCatalog(path)
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, len(DefaultPlaces), c.Len())
	_, ok := c.Lookup("caruaru - pe")
	assert.True(t, ok)
}
