package utils

import (
	"time"

	"github.com/spf13/afero"

	"github.com/fixlog/fixlog/internal/pkg/rotator"
)

// TrackFile describes one recorded session file.
type TrackFile struct {
	Index   uint64
	Name    string
	Size    int64
	ModTime time.Time
}

// FileExists checks if a file exists and is not a directory before we
// try using it to prevent further errors
func FileExists(fs afero.Fs, filename string) bool {
	info, err := fs.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListTrackFiles returns the session files found under dir, identified by
// their file name matching the rotator's naming template.
func ListTrackFiles(fs afero.Fs, dir string) ([]TrackFile, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	var files []TrackFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		index, ok := rotator.ParseFileName(entry.Name())
		if !ok {
			continue
		}

		files = append(files, TrackFile{
			Index:   index,
			Name:    entry.Name(),
			Size:    entry.Size(),
			ModTime: entry.ModTime(),
		})
	}

	return files, nil
}
