package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/izharus/re-backup/internal/logging"
)

// Options configures a Syncer.
type Options struct {
	// Source is the directory being mirrored from. Required.
	Source string

	// Dest is the directory being mirrored to. Required.
	Dest string

	// Workers bounds how many file operations run at once. Values below
	// 1 mean sequential.
	Workers int

	// DryRun records what would change without touching the filesystem.
	DryRun bool

	// Trash, when set, quarantines deleted files instead of unlinking
	// them.
	Trash Depositor

	// OnResult is invoked once per applied operation, as it completes.
	// It may be called from several goroutines at once.
	OnResult func(FileResult)

	// Fs is the filesystem to operate on. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Syncer applies mirror plans to the filesystem.
type Syncer struct {
	fs       afero.Fs
	source   string
	dest     string
	workers  int
	dryRun   bool
	trash    Depositor
	onResult func(FileResult)
}

// New creates a Syncer for the given directories.
func New(opts Options) (*Syncer, error) {
	if opts.Source == "" {
		return nil, errors.New("source directory must be set")
	}
	if opts.Dest == "" {
		return nil, errors.New("destination directory must be set")
	}
	if opts.Source == opts.Dest {
		return nil, fmt.Errorf("source and destination are both %q", opts.Source)
	}
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Syncer{
		fs:       fsys,
		source:   opts.Source,
		dest:     opts.Dest,
		workers:  workers,
		dryRun:   opts.DryRun,
		trash:    opts.Trash,
		onResult: opts.OnResult,
	}, nil
}

// Source returns the source directory.
func (s *Syncer) Source() string { return s.source }

// Dest returns the destination directory.
func (s *Syncer) Dest() string { return s.dest }

// BuildPlan snapshots both directories and diffs them. It reads but never
// writes: a missing destination is treated as empty rather than created.
// The returned error is always a *ListingError.
func (s *Syncer) BuildPlan() (Plan, error) {
	src, err := ListDir(s.fs, s.source)
	if err != nil {
		return Plan{}, err
	}

	dst, err := ListDir(s.fs, s.dest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Destination does not exist yet; it is created on apply.
			dst = NewSnapshot()
		} else {
			return Plan{}, err
		}
	}

	return Compare(src, dst), nil
}

// RunCycle executes one full mirror cycle: plan, ensure the destination
// directory exists, then apply. A *ListingError means the cycle could not
// run at all; per-file failures are reported inside the Result instead.
func (s *Syncer) RunCycle(ctx context.Context) (*Result, error) {
	plan, err := s.BuildPlan()
	if err != nil {
		return nil, err
	}
	if !s.dryRun {
		if err := s.ensureDest(); err != nil {
			return nil, err
		}
	}
	return s.Apply(ctx, plan), nil
}

// ensureDest creates the destination directory if it is missing.
func (s *Syncer) ensureDest() error {
	if ok, _ := afero.DirExists(s.fs, s.dest); ok {
		return nil
	}
	if err := s.fs.MkdirAll(s.dest, 0o750); err != nil {
		return &ListingError{Dir: s.dest, Err: err}
	}
	logging.Debug("created destination directory", logging.Dest(s.dest))
	return nil
}

// job is one unit of apply work for a worker.
type job struct {
	op   Op
	name string
}

// Apply executes every operation in the plan. One file's failure never
// stops the others; each outcome lands in the Result. Copies are
// dispatched before deletes. Cancelling the context stops dispatching
// new operations but lets in-flight ones finish.
func (s *Syncer) Apply(ctx context.Context, plan Plan) *Result {
	defer logging.Timer("apply")()

	start := time.Now()
	result := &Result{
		Source: s.source,
		Dest:   s.dest,
		DryRun: s.dryRun,
	}

	var mu sync.Mutex
	record := func(fr FileResult) {
		mu.Lock()
		result.Files = append(result.Files, fr)
		mu.Unlock()
		if s.onResult != nil {
			s.onResult(fr)
		}
	}

	if s.dryRun {
		for _, name := range plan.ToCopy {
			record(FileResult{Name: name, Op: OpCopy, Status: StatusPlanned})
		}
		for _, name := range plan.ToDelete {
			record(FileResult{Name: name, Op: OpDelete, Status: StatusPlanned})
		}
		result.Duration = time.Since(start)
		return result
	}

	workers := s.workers
	if workers > plan.Size() && plan.Size() > 0 {
		workers = plan.Size()
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				record(s.applyOne(ctx, j))
			}
		}()
	}

	dispatch := func(op Op, names []string) bool {
		for _, name := range names {
			select {
			case jobs <- job{op: op, name: name}:
			case <-ctx.Done():
				return false
			}
		}
		return true
	}

	if dispatch(OpCopy, plan.ToCopy) {
		dispatch(OpDelete, plan.ToDelete)
	}
	close(jobs)
	wg.Wait()

	sortResults(result.Files)
	result.Duration = time.Since(start)
	return result
}

// applyOne executes a single planned operation.
func (s *Syncer) applyOne(ctx context.Context, j job) FileResult {
	fr := FileResult{Name: j.name, Op: j.op}

	switch j.op {
	case OpCopy:
		written, err := copyFile(s.fs, s.source, s.dest, j.name)
		switch {
		case errors.Is(err, errDestExists):
			// A file that appeared in the destination belongs to the
			// destination. Not a failure, not worth a notification.
			fr.Status = StatusSkipped
			logging.Debug("destination already has file, skipping",
				logging.Path(j.name),
			)
		case err != nil:
			fr.Status = StatusFailed
			fr.Err = &CopyError{Name: j.name, Err: err}
		default:
			fr.Status = StatusDone
			fr.Bytes = written
		}

	case OpDelete:
		if err := removeFile(ctx, s.fs, s.dest, j.name, s.trash); err != nil {
			fr.Status = StatusFailed
			fr.Err = &DeleteError{Name: j.name, Err: err}
		} else {
			fr.Status = StatusDone
		}
	}

	return fr
}

// sortResults orders results by operation, then name, so parallel applies
// produce deterministic output.
func sortResults(files []FileResult) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].Op != files[j].Op {
			return files[i].Op == OpCopy
		}
		return files[i].Name < files[j].Name
	})
}
