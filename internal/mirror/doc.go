// Package mirror implements one-way, non-destructive directory mirroring.
// It keeps a destination directory's file set matching a source directory
// by name, on a fixed polling interval.
//
// # Model
//
// A cycle takes a snapshot of each directory (top-level regular files
// only), diffs them by name, and applies the difference:
//   - files present in the source but not the destination are copied
//   - files present in the destination but not the source are deleted
//   - files present in both are left completely untouched
//
// Content is never compared and an existing destination file is never
// overwritten, so the destination can safely hold edits of its own.
//
// # Building Blocks
//
// Compare is a pure function from two snapshots to a Plan:
//
//	src, _ := mirror.ListDir(fs, "/data")
//	dst, _ := mirror.ListDir(fs, "/backup")
//	plan := mirror.Compare(src, dst)
//
// A Syncer applies plans against the filesystem, with optional bounded
// parallelism and dry-run mode:
//
//	syncer, err := mirror.New(mirror.Options{
//	    Source:  "/data",
//	    Dest:    "/backup",
//	    Workers: 4,
//	})
//	result, err := syncer.RunCycle(ctx)
//
// A Scheduler runs cycles on an interval until its context is cancelled.
// The first cycle starts immediately; each following cycle is scheduled
// one full interval after the previous one finishes, so cycles never
// overlap:
//
//	sched, err := mirror.NewScheduler(syncer, mirror.Schedule{
//	    Interval: 5 * time.Minute,
//	})
//	err = sched.Run(ctx)
//
// # Failure Handling
//
// Copies land in a temporary file and become visible through a single
// rename, so readers never observe a partial file. A file that fails to
// copy or delete is reported through the configured notify sink and
// retried naturally on the next cycle; one bad file never aborts the
// rest of the cycle. Failure to read a directory aborts only the current
// cycle, and the Schedule decides whether the loop continues or stops.
package mirror
