package mirror

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"
)

// Snapshot is the set of file names present in a directory at one moment.
// Only top-level regular files are included; subdirectories, symlinks,
// and other special entries are invisible to the mirror.
type Snapshot = mapset.Set[string]

// NewSnapshot builds a snapshot from a fixed list of names. It exists
// mainly for tests and for callers that already know the file set.
func NewSnapshot(names ...string) Snapshot {
	return mapset.NewSet(names...)
}

// ListDir snapshots the regular files directly inside dir. The returned
// error is always a *ListingError.
func ListDir(fsys afero.Fs, dir string) (Snapshot, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, &ListingError{Dir: dir, Err: err}
	}

	files := mapset.NewSet[string]()
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		files.Add(entry.Name())
	}
	return files, nil
}
