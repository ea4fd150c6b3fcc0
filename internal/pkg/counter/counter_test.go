package counter

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPath = "tracks/counter.txt"

func TestNextOnFreshStorage(t *testing.T) {
	c := New(afero.NewMemMapFs(), testPath)

	n, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestCommitThenNextRoundTrip(t *testing.T) {
	appFS := afero.NewMemMapFs()

	c := New(appFS, testPath)
	n, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)

	require.NoError(t, c.Commit(2))

	// A fresh counter on the same storage models the next boot.
	n, err = New(appFS, testPath).Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestIndexIsMonotonicAcrossSessions(t *testing.T) {
	appFS := afero.NewMemMapFs()

	var prev uint64
	for boot := 0; boot < 5; boot++ {
		c := New(appFS, testPath)
		n, err := c.Next()
		require.NoError(t, err)
		assert.Greater(t, n, prev, "boot %d", boot)
		require.NoError(t, c.Commit(n+1))
		prev = n
	}
	assert.Equal(t, uint64(5), prev)
}

func TestRecordIsFixedWidthDecimal(t *testing.T) {
	appFS := afero.NewMemMapFs()

	require.NoError(t, New(appFS, testPath).Commit(42))

	raw, err := afero.ReadFile(appFS, testPath)
	require.NoError(t, err)
	assert.Equal(t, "00042", string(raw))
}

func TestGarbledRecordFallsBackToFirstSession(t *testing.T) {
	appFS := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(appFS, testPath, []byte("not-a-number"), 0644))

	n, err := New(appFS, testPath).Next()
	assert.Error(t, err)
	assert.Equal(t, uint64(1), n)
}
