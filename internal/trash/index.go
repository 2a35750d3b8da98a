package trash

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// Entry describes one quarantined file.
type Entry struct {
	ID           string    `json:"id"`            // Unique entry identifier (timestamp + content hash prefix)
	Name         string    `json:"name"`          // Base name of the original file
	OriginalPath string    `json:"original_path"` // Where the file lived before quarantine
	TrashPath    string    `json:"trash_path"`    // Where the file is stored inside the bin
	DeletedAt    time.Time `json:"deleted_at"`    // When the file entered the bin
	Hash         string    `json:"hash"`          // SHA256 hash of the content
	Size         int64     `json:"size"`          // File size in bytes
}

// Index maintains all entries currently in the bin.
type Index struct {
	Version string           `json:"version"`
	Updated time.Time        `json:"updated"`
	Entries map[string]Entry `json:"entries"` // Key: entry ID
}

const (
	indexVersion  = "1.0"
	indexFilename = "index.json"
)

func (b *Bin) indexPath() string {
	return filepath.Join(b.root, indexFilename)
}

// loadIndex reads the index from the bin root. A missing index means an
// empty bin.
func (b *Bin) loadIndex() (*Index, error) {
	path := b.indexPath()

	exists, err := afero.Exists(b.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check index file: %w", err)
	}
	if !exists {
		return &Index{
			Version: indexVersion,
			Updated: time.Now(),
			Entries: make(map[string]Entry),
		}, nil
	}

	data, err := afero.ReadFile(b.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}
	if index.Entries == nil {
		index.Entries = make(map[string]Entry)
	}
	return &index, nil
}

func (b *Bin) saveIndex(index *Index) error {
	if err := b.fsys.MkdirAll(b.root, dirPerm); err != nil {
		return fmt.Errorf("failed to create trash directory: %w", err)
	}

	index.Updated = time.Now()

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := afero.WriteFile(b.fsys, b.indexPath(), data, filePerm); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// List returns the entries sorted newest first. Entries quarantined in
// the same instant fall back to ID order so the listing stays stable.
func (idx *Index) List() []Entry {
	entries := make([]Entry, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DeletedAt.Equal(entries[j].DeletedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].DeletedAt.After(entries[j].DeletedAt)
	})
	return entries
}
