package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/izharus/re-backup/internal/logging"
)

// tempPattern names the staging files used for atomic copies. A staging
// file left behind by a crash shows up as a stale destination entry and
// is deleted on the next cycle.
const tempPattern = ".rebackup-*.tmp"

// errDestExists signals that a copy was skipped because the destination
// file already exists. It is not a failure.
var errDestExists = errors.New("destination file already exists")

// copyFile copies srcDir/name into dstDir without ever replacing an
// existing destination file, preserving the source permission bits. The
// data is written to a staging file in dstDir and published with a single
// rename, so a partially copied file is never visible under its final
// name. Returns the number of bytes copied, or errDestExists when the
// destination already has the file.
func copyFile(fsys afero.Fs, srcDir, dstDir, name string) (int64, error) {
	srcPath := filepath.Join(srcDir, name)
	dstPath := filepath.Join(dstDir, name)

	// The destination owns any file already present under this name.
	exists, err := afero.Exists(fsys, dstPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat destination %q: %w", dstPath, err)
	}
	if exists {
		return 0, errDestExists
	}

	srcInfo, err := fsys.Stat(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat source %q: %w", srcPath, err)
	}

	srcFile, err := fsys.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source %q: %w", srcPath, err)
	}
	defer func() { _ = srcFile.Close() }()

	tmpFile, err := afero.TempFile(fsys, dstDir, tempPattern)
	if err != nil {
		return 0, fmt.Errorf("failed to create staging file in %q: %w", dstDir, err)
	}
	tmpPath := tmpFile.Name()

	written, err := io.Copy(tmpFile, srcFile)
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = fsys.Remove(tmpPath)
		return 0, fmt.Errorf("failed to write staging file %q: %w", tmpPath, err)
	}

	if err := fsys.Chmod(tmpPath, srcInfo.Mode().Perm()); err != nil {
		_ = fsys.Remove(tmpPath)
		return 0, fmt.Errorf("failed to set permissions on %q: %w", tmpPath, err)
	}

	// Re-check right before publishing: a file that appeared during the
	// copy wins, and the staged data is discarded.
	exists, err = afero.Exists(fsys, dstPath)
	if err != nil {
		_ = fsys.Remove(tmpPath)
		return 0, fmt.Errorf("failed to stat destination %q: %w", dstPath, err)
	}
	if exists {
		_ = fsys.Remove(tmpPath)
		return 0, errDestExists
	}

	if err := fsys.Rename(tmpPath, dstPath); err != nil {
		_ = fsys.Remove(tmpPath)
		return 0, fmt.Errorf("failed to publish %q: %w", dstPath, err)
	}

	logging.Debug("copied file",
		logging.Path(dstPath),
		logging.Count(int(written)),
	)
	return written, nil
}

// Depositor quarantines a destination file instead of unlinking it,
// keeping its data recoverable. Deposit removes path from its directory.
type Depositor interface {
	Deposit(ctx context.Context, path string) error
}

// removeFile deletes dstDir/name from the destination. A file that is
// already gone counts as success. When a depositor is configured the
// file is moved into quarantine instead of unlinked; if that fails the
// file is left in place for the next cycle.
func removeFile(ctx context.Context, fsys afero.Fs, dstDir, name string, dep Depositor) error {
	path := filepath.Join(dstDir, name)

	if dep != nil {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to stat %q: %w", path, err)
		}
		if !exists {
			return nil
		}
		if err := dep.Deposit(ctx, path); err != nil {
			return fmt.Errorf("failed to quarantine %q: %w", path, err)
		}
		logging.Debug("quarantined file", logging.Path(path))
		return nil
	}

	if err := fsys.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	logging.Debug("removed file", logging.Path(path))
	return nil
}
