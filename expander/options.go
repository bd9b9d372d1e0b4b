package expander

import (
	"time"
)

// ExpansionOptions controls how template unrolling behaves.
type ExpansionOptions struct {
	// MaxOccurrences caps the number of instances generated per template.
	// The cap bounds runaway iteration from a missing or inconsistent
	// recurrence end date; reaching it silently truncates the series.
	// 0 means DefaultExpansionOptions.MaxOccurrences.
	MaxOccurrences int

	// Horizon bounds open-ended series: a recurring template without a
	// recurrence end date stops at now+Horizon. 0 means
	// DefaultExpansionOptions.Horizon.
	Horizon time.Duration
}

// DefaultExpansionOptions provides sensible defaults for expansion.
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 1000,
	Horizon:        365 * 24 * time.Hour,
}

// DashboardOptions is tuned for short-range views that only need the next
// few weeks of instances.
var DashboardOptions = ExpansionOptions{
	MaxOccurrences: 200,
	Horizon:        90 * 24 * time.Hour,
}

// SeasonOptions covers a full club season plus planning slack.
var SeasonOptions = ExpansionOptions{
	MaxOccurrences: 2000,
	Horizon:        550 * 24 * time.Hour,
}

func (o ExpansionOptions) withDefaults() ExpansionOptions {
	if o.MaxOccurrences <= 0 {
		o.MaxOccurrences = DefaultExpansionOptions.MaxOccurrences
	}
	if o.Horizon <= 0 {
		o.Horizon = DefaultExpansionOptions.Horizon
	}
	return o
}
