package mirror

import (
	"slices"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		source     []string
		dest       []string
		wantCopy   []string
		wantDelete []string
	}{
		{
			name: "both empty",
		},
		{
			name:     "fresh destination copies everything",
			source:   []string{"a.txt", "b.txt"},
			wantCopy: []string{"a.txt", "b.txt"},
		},
		{
			name:       "empty source clears destination",
			dest:       []string{"stale.txt"},
			wantDelete: []string{"stale.txt"},
		},
		{
			name:   "identical sides plan nothing",
			source: []string{"a.txt", "b.txt"},
			dest:   []string{"a.txt", "b.txt"},
		},
		{
			name:       "mixed sides",
			source:     []string{"a.txt", "b.txt"},
			dest:       []string{"b.txt", "c.txt"},
			wantCopy:   []string{"a.txt"},
			wantDelete: []string{"c.txt"},
		},
		{
			name:       "disjoint sides swap contents",
			source:     []string{"new1.txt", "new2.txt"},
			dest:       []string{"old1.txt", "old2.txt"},
			wantCopy:   []string{"new1.txt", "new2.txt"},
			wantDelete: []string{"old1.txt", "old2.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Compare(NewSnapshot(tt.source...), NewSnapshot(tt.dest...))

			if !slices.Equal(plan.ToCopy, tt.wantCopy) {
				t.Errorf("ToCopy = %v, want %v", plan.ToCopy, tt.wantCopy)
			}
			if !slices.Equal(plan.ToDelete, tt.wantDelete) {
				t.Errorf("ToDelete = %v, want %v", plan.ToDelete, tt.wantDelete)
			}
		})
	}
}

func TestCompareSorted(t *testing.T) {
	// Set iteration order is random; the plan must not be.
	source := NewSnapshot("zebra.txt", "alpha.txt", "mango.txt", "kiwi.txt")
	dest := NewSnapshot("yak.txt", "bear.txt")

	for i := 0; i < 10; i++ {
		plan := Compare(source, dest)
		if !slices.IsSorted(plan.ToCopy) {
			t.Fatalf("ToCopy not sorted: %v", plan.ToCopy)
		}
		if !slices.IsSorted(plan.ToDelete) {
			t.Fatalf("ToDelete not sorted: %v", plan.ToDelete)
		}
	}
}

func TestCompareLeavesInputsAlone(t *testing.T) {
	source := NewSnapshot("a.txt", "b.txt")
	dest := NewSnapshot("b.txt", "c.txt")

	Compare(source, dest)

	if got := source.Cardinality(); got != 2 {
		t.Errorf("source cardinality changed to %d", got)
	}
	if got := dest.Cardinality(); got != 2 {
		t.Errorf("dest cardinality changed to %d", got)
	}
}

func TestPlanEmpty(t *testing.T) {
	if !(Plan{}).Empty() {
		t.Error("zero plan should be empty")
	}
	if (Plan{ToCopy: []string{"a.txt"}}).Empty() {
		t.Error("plan with copies should not be empty")
	}
	if (Plan{ToDelete: []string{"a.txt"}}).Empty() {
		t.Error("plan with deletes should not be empty")
	}
}

func TestPlanSize(t *testing.T) {
	plan := Plan{
		ToCopy:   []string{"a.txt", "b.txt"},
		ToDelete: []string{"c.txt"},
	}
	if got := plan.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}
