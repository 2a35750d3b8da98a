package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Op identifies the kind of filesystem change applied to a file.
type Op string

const (
	// OpCopy copies a file from the source into the destination.
	OpCopy Op = "copy"

	// OpDelete removes a stale file from the destination.
	OpDelete Op = "delete"
)

// Status is the outcome of a single planned operation.
type Status string

const (
	// StatusDone indicates the operation completed.
	StatusDone Status = "done"

	// StatusSkipped indicates the operation was not needed after all,
	// such as a copy whose destination appeared in the meantime.
	StatusSkipped Status = "skipped"

	// StatusFailed indicates the operation errored.
	StatusFailed Status = "failed"

	// StatusPlanned indicates a dry run recorded the operation without
	// touching the filesystem.
	StatusPlanned Status = "planned"
)

// FileResult is the outcome of one planned operation on one file.
type FileResult struct {
	// Name is the file name within the directory.
	Name string

	// Op is the operation that was applied.
	Op Op

	// Status is the outcome.
	Status Status

	// Bytes is the number of bytes written for a completed copy.
	Bytes int64

	// Err holds the *CopyError or *DeleteError for failed operations.
	Err error
}

// Success returns true unless the operation failed.
func (fr *FileResult) Success() bool {
	return fr.Status != StatusFailed
}

// Result is the complete outcome of applying one plan.
type Result struct {
	// Source is the directory that was mirrored from.
	Source string

	// Dest is the directory that was mirrored to.
	Dest string

	// Files holds one entry per planned operation, sorted by operation
	// and then by name.
	Files []FileResult

	// Duration is how long the apply took.
	Duration time.Duration

	// DryRun indicates no changes were made.
	DryRun bool
}

// Copied returns completed copy operations.
func (r *Result) Copied() []FileResult {
	return r.filter(OpCopy, StatusDone)
}

// Deleted returns completed delete operations.
func (r *Result) Deleted() []FileResult {
	return r.filter(OpDelete, StatusDone)
}

// Skipped returns operations that turned out to be unnecessary.
func (r *Result) Skipped() []FileResult {
	return r.filter("", StatusSkipped)
}

// Failed returns operations that errored.
func (r *Result) Failed() []FileResult {
	return r.filter("", StatusFailed)
}

// Planned returns operations recorded by a dry run.
func (r *Result) Planned() []FileResult {
	return r.filter("", StatusPlanned)
}

// filter returns results matching op and status; an empty op matches all.
func (r *Result) filter(op Op, status Status) []FileResult {
	var filtered []FileResult
	for _, fr := range r.Files {
		if op != "" && fr.Op != op {
			continue
		}
		if fr.Status == status {
			filtered = append(filtered, fr)
		}
	}
	return filtered
}

// Success returns true if no operation failed.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// Changed returns true if the apply modified the destination.
func (r *Result) Changed() bool {
	return len(r.Copied())+len(r.Deleted()) > 0
}

// TotalProcessed returns the total number of planned operations.
func (r *Result) TotalProcessed() int {
	return len(r.Files)
}

// BytesCopied returns the total bytes written by completed copies.
func (r *Result) BytesCopied() int64 {
	var total int64
	for _, fr := range r.Copied() {
		total += fr.Bytes
	}
	return total
}

// Summary returns a human-readable summary of the apply.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
		sb.WriteString(fmt.Sprintf("Would mirror %s -> %s\n", r.Source, r.Dest))
		var copies, deletes int
		for _, fr := range r.Planned() {
			if fr.Op == OpCopy {
				copies++
			} else {
				deletes++
			}
		}
		sb.WriteString(fmt.Sprintf("  To copy:   %d\n", copies))
		sb.WriteString(fmt.Sprintf("  To delete: %d\n", deletes))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Mirrored %s -> %s\n", r.Source, r.Dest))
	sb.WriteString(fmt.Sprintf("  Copied:  %d (%s)\n",
		len(r.Copied()), humanize.Bytes(uint64(r.BytesCopied())))) // #nosec G115 - byte totals are non-negative
	sb.WriteString(fmt.Sprintf("  Deleted: %d\n", len(r.Deleted())))
	sb.WriteString(fmt.Sprintf("  Skipped: %d\n", len(r.Skipped())))
	sb.WriteString(fmt.Sprintf("  Failed:  %d\n", len(r.Failed())))

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", f.Name, f.Err))
		}
	}

	return sb.String()
}
