// Package trash provides a quarantine bin for files removed from the
// destination. Instead of unlinking, the syncer can deposit files here;
// they stay restorable until pruned.
package trash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640

	// filesDir is the subdirectory of the bin root holding the
	// quarantined content; the index lives next to it.
	filesDir = "files"
)

// Bin is a quarantine rooted at a single directory. Methods are safe
// for concurrent use, so parallel apply workers can share one bin.
type Bin struct {
	fsys afero.Fs
	root string

	mu sync.Mutex
}

// New opens a bin rooted at root. The directory is created lazily on
// first deposit. A nil fsys means the real filesystem.
func New(fsys afero.Fs, root string) (*Bin, error) {
	if root == "" {
		return nil, errors.New("trash root must not be empty")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Bin{fsys: fsys, root: root}, nil
}

// Root returns the bin's root directory.
func (b *Bin) Root() string { return b.root }

// Deposit moves the file at path into the bin and records it in the
// index. A path that no longer exists is a success, matching the
// idempotent delete contract.
func (b *Bin) Deposit(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	info, err := b.fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	content, err := afero.ReadFile(b.fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}

	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])

	index, err := b.loadIndex()
	if err != nil {
		return err
	}

	// Timestamp plus hash prefix; identical files deposited within the
	// same second get a numeric suffix.
	base := time.Now().Format("20060102-150405-") + hashStr[:8]
	id := base
	for n := 2; ; n++ {
		if _, taken := index.Entries[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}

	if err := b.fsys.MkdirAll(filepath.Join(b.root, filesDir), dirPerm); err != nil {
		return fmt.Errorf("failed to create trash directory: %w", err)
	}

	trashPath := filepath.Join(b.root, filesDir, id+filepath.Ext(path))
	if err := afero.WriteFile(b.fsys, trashPath, content, filePerm); err != nil {
		return fmt.Errorf("failed to write trash file: %w", err)
	}

	index.Entries[id] = Entry{
		ID:           id,
		Name:         filepath.Base(path),
		OriginalPath: path,
		TrashPath:    trashPath,
		DeletedAt:    time.Now(),
		Hash:         hashStr,
		Size:         info.Size(),
	}
	if err := b.saveIndex(index); err != nil {
		return err
	}

	if err := b.fsys.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove original %q: %w", path, err)
	}
	return nil
}

// Restore writes an entry back to its original location, or to target
// when given, after verifying the content hash. On success the entry
// leaves the bin. Restore never overwrites an existing file. It returns
// the path the file was restored to.
func (b *Bin) Restore(id, target string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index, err := b.loadIndex()
	if err != nil {
		return "", err
	}
	entry, ok := index.Entries[id]
	if !ok {
		return "", fmt.Errorf("trash entry %q not found", id)
	}

	content, err := afero.ReadFile(b.fsys, entry.TrashPath)
	if err != nil {
		return "", fmt.Errorf("failed to read trash file: %w", err)
	}
	hash := sha256.Sum256(content)
	if hex.EncodeToString(hash[:]) != entry.Hash {
		return "", fmt.Errorf("trash entry %q corrupted: hash mismatch", id)
	}

	if target == "" {
		target = entry.OriginalPath
	}
	if exists, _ := afero.Exists(b.fsys, target); exists {
		return "", fmt.Errorf("refusing to overwrite existing file %q", target)
	}
	if err := b.fsys.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}
	if err := afero.WriteFile(b.fsys, target, content, filePerm); err != nil {
		return "", fmt.Errorf("failed to write restored file: %w", err)
	}

	if err := b.fsys.Remove(entry.TrashPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to remove trash file: %w", err)
	}
	delete(index.Entries, id)
	return target, b.saveIndex(index)
}

// Remove deletes an entry and its stored content.
func (b *Bin) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	index, err := b.loadIndex()
	if err != nil {
		return err
	}
	if err := b.dropEntry(index, id); err != nil {
		return err
	}
	return b.saveIndex(index)
}

// dropEntry removes one entry's file and index record without saving.
// Callers hold the lock and save once they are done.
func (b *Bin) dropEntry(index *Index, id string) error {
	entry, ok := index.Entries[id]
	if !ok {
		return fmt.Errorf("trash entry %q not found", id)
	}
	if err := b.fsys.Remove(entry.TrashPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove trash file: %w", err)
	}
	delete(index.Entries, id)
	return nil
}

// List returns every entry, newest first.
func (b *Bin) List() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index, err := b.loadIndex()
	if err != nil {
		return nil, err
	}
	return index.List(), nil
}

// Verify checks that an entry's stored file is present and still
// matches its recorded hash.
func (b *Bin) Verify(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	index, err := b.loadIndex()
	if err != nil {
		return err
	}
	entry, ok := index.Entries[id]
	if !ok {
		return fmt.Errorf("trash entry %q not found", id)
	}

	content, err := afero.ReadFile(b.fsys, entry.TrashPath)
	if err != nil {
		return fmt.Errorf("failed to read trash file: %w", err)
	}
	hash := sha256.Sum256(content)
	if hex.EncodeToString(hash[:]) != entry.Hash {
		return fmt.Errorf("trash entry %q corrupted: hash mismatch", id)
	}
	return nil
}
