package utils

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	appFS := afero.NewMemMapFs()

	afero.WriteFile(appFS, "tracks/track-00001.csv", []byte("line\n"), 0644)

	assert.True(t, FileExists(appFS, "tracks/track-00001.csv"))
	assert.False(t, FileExists(appFS, "tracks/track-00002.csv"))
	assert.False(t, FileExists(appFS, "tracks"))
}

func TestListTrackFiles(t *testing.T) {
	appFS := afero.NewMemMapFs()

	afero.WriteFile(appFS, "tracks/track-00001.csv", []byte("a\n"), 0644)
	afero.WriteFile(appFS, "tracks/track-00012.csv", []byte("bb\n"), 0644)
	afero.WriteFile(appFS, "tracks/counter.txt", []byte("00013"), 0644)
	afero.WriteFile(appFS, "tracks/notes.md", []byte("x"), 0644)
	require.NoError(t, appFS.MkdirAll("tracks/logs", 0755))

	files, err := ListTrackFiles(appFS, "tracks")
	require.NoError(t, err)
	require.Len(t, files, 2, "only track files should be listed")

	indexes := map[uint64]int64{}
	for _, f := range files {
		indexes[f.Index] = f.Size
	}
	assert.Equal(t, int64(2), indexes[1])
	assert.Equal(t, int64(3), indexes[12])
}
