package mirror

import "fmt"

// ListingError reports a directory that could not be read or created.
// It aborts the current cycle; the loop policy decides what happens next.
type ListingError struct {
	// Dir is the directory that failed.
	Dir string
	// Err is the underlying error.
	Err error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("cannot access directory %s: %v", e.Dir, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// CopyError reports a single file that could not be copied into the
// destination. It never aborts the cycle.
type CopyError struct {
	// Name is the file name within the source directory.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s: %v", e.Name, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// DeleteError reports a single stale file that could not be removed from
// the destination. It never aborts the cycle.
type DeleteError struct {
	// Name is the file name within the destination directory.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Name, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
