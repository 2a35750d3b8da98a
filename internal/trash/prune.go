package trash

import (
	"fmt"
	"sort"
	"time"
)

// PruneOptions configures retention for Prune.
type PruneOptions struct {
	// MaxEntries limits how many entries to keep per original file
	// (0 = unlimited).
	MaxEntries int

	// MaxAge is the maximum age of entries to keep (0 = unlimited).
	MaxAge time.Duration

	// KeepAtLeastOne always keeps the newest entry for each original
	// file, even when it is past MaxAge.
	KeepAtLeastOne bool

	// DryRun reports what would be removed without removing it.
	DryRun bool
}

// DefaultPruneOptions returns sensible retention defaults.
func DefaultPruneOptions() PruneOptions {
	return PruneOptions{
		MaxEntries:     10,
		MaxAge:         30 * 24 * time.Hour,
		KeepAtLeastOne: true,
	}
}

// Prune removes entries that fall outside the retention limits and
// returns the IDs it removed. Entries are grouped by original path, so
// a file deleted and re-deposited over many cycles is trimmed on its
// own history, not against unrelated files.
func (b *Bin) Prune(opts PruneOptions) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index, err := b.loadIndex()
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]Entry)
	for _, entry := range index.Entries {
		groups[entry.OriginalPath] = append(groups[entry.OriginalPath], entry)
	}

	now := time.Now()
	var toRemove []string
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return group[i].DeletedAt.After(group[j].DeletedAt)
		})

		kept := 0
		var doomed []string
		for i, entry := range group {
			drop := false
			if opts.MaxAge > 0 && now.Sub(entry.DeletedAt) > opts.MaxAge {
				drop = true
			}
			if opts.MaxEntries > 0 && i >= opts.MaxEntries {
				drop = true
			}
			if drop {
				doomed = append(doomed, entry.ID)
			} else {
				kept++
			}
		}

		// The group is sorted newest first, so doomed[0] is the newest
		// candidate when nothing survived.
		if opts.KeepAtLeastOne && kept == 0 && len(doomed) > 0 {
			doomed = doomed[1:]
		}
		toRemove = append(toRemove, doomed...)
	}
	sort.Strings(toRemove)

	if opts.DryRun || len(toRemove) == 0 {
		return toRemove, nil
	}

	removed := make([]string, 0, len(toRemove))
	for _, id := range toRemove {
		if err := b.dropEntry(index, id); err != nil {
			_ = b.saveIndex(index)
			return removed, fmt.Errorf("failed to prune entry %q: %w", id, err)
		}
		removed = append(removed, id)
	}
	if err := b.saveIndex(index); err != nil {
		return removed, err
	}
	return removed, nil
}

// Stats summarizes the bin contents.
type Stats struct {
	Entries   int
	TotalSize int64
	Oldest    time.Time
	Newest    time.Time
}

// Stats returns counts and sizes for everything currently in the bin.
func (b *Bin) Stats() (*Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index, err := b.loadIndex()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Entries: len(index.Entries)}
	for _, entry := range index.Entries {
		stats.TotalSize += entry.Size
		if stats.Oldest.IsZero() || entry.DeletedAt.Before(stats.Oldest) {
			stats.Oldest = entry.DeletedAt
		}
		if entry.DeletedAt.After(stats.Newest) {
			stats.Newest = entry.DeletedAt
		}
	}
	return stats, nil
}
