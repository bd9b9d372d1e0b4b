package expander

import (
	"sort"
	"time"

	"github.com/cyp0633/libclubcal/internal/dates"
)

// FilterOptions selects which instances a viewer gets to see.
type FilterOptions struct {
	// ViewerTeams is the viewer's team-membership set, matched against
	// team-restricted visibility.
	ViewerTeams []string

	// TypeIDs keeps only instances of the given appointment types.
	// Empty means no type filtering.
	TypeIDs []string

	// TeamIDs keeps only instances restricted to one of the given teams.
	// Instances visible to all always pass. Empty means no team filtering.
	TeamIDs []string

	// CancelledOnly flips the cancellation filter: instead of dropping
	// cancelled instances it keeps only them, for the absence-review path.
	CancelledOnly bool
}

// Filter applies visibility, cancellation and caller-supplied filters, then
// sorts ascending by start. The sort is stable, so equal starts keep input
// order. The input slice is not modified.
func Filter(instances []Instance, opts FilterOptions) []Instance {
	out := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if !VisibleTo(inst, opts.ViewerTeams) {
			continue
		}
		if inst.IsCancelled != opts.CancelledOnly {
			continue
		}
		if len(opts.TypeIDs) > 0 && !contains(opts.TypeIDs, inst.TypeID) {
			continue
		}
		if len(opts.TeamIDs) > 0 && inst.Visibility.Type == VisibilitySpecificTeams &&
			!intersects(opts.TeamIDs, inst.Visibility.TeamIDs) {
			continue
		}
		out = append(out, inst)
	}
	SortByStart(out)
	return out
}

// VisibleTo reports whether the instance's (possibly overlaid) visibility
// admits a viewer with the given team memberships.
func VisibleTo(inst Instance, viewerTeams []string) bool {
	switch inst.Visibility.Type {
	case VisibilitySpecificTeams:
		return intersects(viewerTeams, inst.Visibility.TeamIDs)
	default:
		// VisibilityAll, and anything unrecognized degrades to visible
		// rather than hiding data over a bad enum value.
		return true
	}
}

// SortByStart sorts in place, ascending by concrete start instant. Stable:
// no documented secondary key, ties keep input order.
func SortByStart(instances []Instance) {
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].Start.Before(instances[j].Start)
	})
}

// Upcoming returns at most n instances starting on now's civil day or
// later. n <= 0 means no truncation. The input must already be sorted, as
// Filter leaves it.
func Upcoming(instances []Instance, now time.Time, n int) []Instance {
	today := dates.StartOfDay(now)
	out := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.Start.Before(today) {
			continue
		}
		out = append(out, inst)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// HeadlineSplit partitions instances into those of the distinguished
// headline type and everything else, each truncated independently to n
// (n <= 0 keeps all). Used by the dashboard's headline-event slot.
func HeadlineSplit(instances []Instance, headlineTypeID string, n int) (headline, others []Instance) {
	for _, inst := range instances {
		if headlineTypeID != "" && inst.TypeID == headlineTypeID {
			if n <= 0 || len(headline) < n {
				headline = append(headline, inst)
			}
		} else {
			if n <= 0 || len(others) < n {
				others = append(others, inst)
			}
		}
	}
	return headline, others
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}
