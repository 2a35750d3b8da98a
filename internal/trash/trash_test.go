package trash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBin(t *testing.T) (*Bin, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	bin, err := New(fsys, "/trash")
	require.NoError(t, err)
	return bin, fsys
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "")
	assert.Error(t, err, "empty root should be rejected")

	bin, err := New(afero.NewMemMapFs(), "/trash")
	require.NoError(t, err)
	assert.Equal(t, "/trash", bin.Root())
}

func TestDeposit(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/report.txt", "hello")

	require.NoError(t, bin.Deposit(context.Background(), "/dst/report.txt"))

	exists, err := afero.Exists(fsys, "/dst/report.txt")
	require.NoError(t, err)
	assert.False(t, exists, "original should be moved out of the destination")

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "report.txt", entry.Name)
	assert.Equal(t, "/dst/report.txt", entry.OriginalPath)
	assert.Equal(t, int64(5), entry.Size)
	assert.WithinDuration(t, time.Now(), entry.DeletedAt, time.Minute)

	wantHash := sha256.Sum256([]byte("hello"))
	assert.Equal(t, hex.EncodeToString(wantHash[:]), entry.Hash)

	content, err := afero.ReadFile(fsys, entry.TrashPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestDepositMissingFile(t *testing.T) {
	bin, _ := newTestBin(t)

	require.NoError(t, bin.Deposit(context.Background(), "/dst/ghost.txt"),
		"depositing an already-gone file succeeds")

	entries, err := bin.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDepositIdenticalContent(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/a.txt", "same bytes")
	writeFile(t, fsys, "/dst/b.txt", "same bytes")

	require.NoError(t, bin.Deposit(context.Background(), "/dst/a.txt"))
	require.NoError(t, bin.Deposit(context.Background(), "/dst/b.txt"))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].ID, entries[1].ID,
		"same content in the same second must still get distinct IDs")
}

func TestDepositConcurrent(t *testing.T) {
	bin, fsys := newTestBin(t)
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = fmt.Sprintf("/dst/f%d.txt", i)
		writeFile(t, fsys, paths[i], "same bytes")
	}

	var wg sync.WaitGroup
	errs := make([]error, len(paths))
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = bin.Deposit(context.Background(), path)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoErrorf(t, err, "deposit %d", i)
	}

	entries, err := bin.List()
	require.NoError(t, err)
	assert.Len(t, entries, len(paths))
}

func TestRestore(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/doc.txt", "payload")
	require.NoError(t, bin.Deposit(context.Background(), "/dst/doc.txt"))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]

	restored, err := bin.Restore(entry.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "/dst/doc.txt", restored)

	content, err := afero.ReadFile(fsys, "/dst/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	remaining, err := bin.List()
	require.NoError(t, err)
	assert.Empty(t, remaining, "a restored entry leaves the bin")

	exists, err := afero.Exists(fsys, entry.TrashPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRestoreToTarget(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/doc.txt", "payload")
	require.NoError(t, bin.Deposit(context.Background(), "/dst/doc.txt"))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	restored, err := bin.Restore(entries[0].ID, "/elsewhere/copy.txt")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/copy.txt", restored)

	content, err := afero.ReadFile(fsys, "/elsewhere/copy.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestRestoreRefusesOverwrite(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/doc.txt", "old")
	require.NoError(t, bin.Deposit(context.Background(), "/dst/doc.txt"))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Something new took the original path in the meantime.
	writeFile(t, fsys, "/dst/doc.txt", "new occupant")

	_, err = bin.Restore(entries[0].ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")

	content, err := afero.ReadFile(fsys, "/dst/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "new occupant", string(content))

	remaining, err := bin.List()
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "a failed restore keeps the entry")
}

func TestRestoreCorrupted(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/doc.txt", "payload")
	require.NoError(t, bin.Deposit(context.Background(), "/dst/doc.txt"))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	writeFile(t, fsys, entries[0].TrashPath, "tampered")

	_, err = bin.Restore(entries[0].ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestRestoreNotFound(t *testing.T) {
	bin, _ := newTestBin(t)

	_, err := bin.Restore("20990101-000000-deadbeef", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRemove(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/doc.txt", "payload")
	require.NoError(t, bin.Deposit(context.Background(), "/dst/doc.txt"))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, bin.Remove(entries[0].ID))

	remaining, err := bin.List()
	require.NoError(t, err)
	assert.Empty(t, remaining)

	exists, err := afero.Exists(fsys, entries[0].TrashPath)
	require.NoError(t, err)
	assert.False(t, exists)

	err = bin.Remove(entries[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestVerify(t *testing.T) {
	bin, fsys := newTestBin(t)
	writeFile(t, fsys, "/dst/doc.txt", "payload")
	require.NoError(t, bin.Deposit(context.Background(), "/dst/doc.txt"))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.NoError(t, bin.Verify(entries[0].ID))

	writeFile(t, fsys, entries[0].TrashPath, "tampered")
	err = bin.Verify(entries[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")

	err = bin.Verify("missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListOrder(t *testing.T) {
	bin, _ := newTestBin(t)

	now := time.Now()
	index, err := bin.loadIndex()
	require.NoError(t, err)
	for i, id := range []string{"old", "mid", "new"} {
		index.Entries[id] = Entry{
			ID:        id,
			TrashPath: filepath.Join(bin.Root(), filesDir, id+".txt"),
			DeletedAt: now.Add(time.Duration(i) * time.Hour),
		}
	}
	require.NoError(t, bin.saveIndex(index))

	entries, err := bin.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "mid", entries[1].ID)
	assert.Equal(t, "old", entries[2].ID)
}
