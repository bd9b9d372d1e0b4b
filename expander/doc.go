/*
Package expander turns possibly-recurring appointment templates and
date-scoped exceptions into the concrete calendar instances a viewer sees.

# Basic Usage

	engine := expander.NewEngine()
	instances := engine.Expand(templates, exceptions, time.Now())

	visible := expander.Filter(instances, expander.FilterOptions{
		ViewerTeams: []string{"first-team"},
	})
	next := expander.Upcoming(visible, time.Now(), 5)

Expansion is a pure function of its inputs: templates and exceptions are
read-only snapshots, "now" is an explicit parameter, and every call
recomputes from scratch. Reactive callers should rerun the expansion on any
input change instead of patching previous output.

# Exceptions

An exception overrides one occurrence of one template on one civil day.
A cancelled exception keeps the instance in the expansion output but flags
it IsCancelled, so absence reporting still sees it; Filter drops it from
normal display. A modified exception overlays only the fields explicitly
present in its Overlay; everything else keeps the template's value, and the
original duration is preserved unless the overlay sets both start and end.

# Bounds

Recurring series stop at the recurrence end day (inclusive). Open-ended
series are clamped to now plus ExpansionOptions.Horizon, and every template
is additionally capped at ExpansionOptions.MaxOccurrences instances.
Reaching either bound is silent truncation, not an error.

# Error Handling

The engine never returns errors. Malformed records (a template without a
start, an exception without a date) are skipped so one bad record cannot
blank the whole calendar; an unrecognized recurrence rule ends that
template's series after its first occurrence.
*/
package expander
