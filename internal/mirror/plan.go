package mirror

import "sort"

// Plan is the work needed to make the destination mirror the source.
// Both slices are sorted, so identical snapshots always produce an
// identical plan.
type Plan struct {
	// ToCopy holds names present in the source but not the destination.
	ToCopy []string
	// ToDelete holds names present in the destination but not the source.
	ToDelete []string
}

// Compare diffs two snapshots by name. It is a pure function: it never
// touches the filesystem and never inspects file content, timestamps, or
// sizes. Names present in both snapshots appear in neither slice.
func Compare(source, dest Snapshot) Plan {
	toCopy := source.Difference(dest).ToSlice()
	toDelete := dest.Difference(source).ToSlice()
	sort.Strings(toCopy)
	sort.Strings(toDelete)
	return Plan{ToCopy: toCopy, ToDelete: toDelete}
}

// Empty reports whether the plan contains no work.
func (p Plan) Empty() bool {
	return len(p.ToCopy) == 0 && len(p.ToDelete) == 0
}

// Size returns the total number of planned operations.
func (p Plan) Size() int {
	return len(p.ToCopy) + len(p.ToDelete)
}
