package expander

import (
	"time"

	"github.com/cyp0633/libclubcal/internal/dates"
)

// unrollTemplate generates every concrete occurrence of one template,
// honoring its recurrence rule, the inclusive recurrence end day, the
// horizon clamp for open-ended series, and the iteration cap.
//
// Failure semantics follow the data-quality contract: a template without an
// id or start instant is skipped entirely rather than aborting the whole
// expansion.
func (e *Engine) unrollTemplate(tpl Template, idx ExceptionIndex, now time.Time) []Instance {
	if tpl.ID == "" || tpl.Start.IsZero() {
		e.log().Debug("skipping malformed template", "id", tpl.ID)
		return nil
	}

	if tpl.Recurrence == RecurrenceNone || tpl.Recurrence == "" {
		return []Instance{e.occurrence(tpl, tpl.Start, false, idx)}
	}

	// Inclusive day bound: the recurrence end day when set, otherwise the
	// last full day inside the now+horizon window.
	limit := dates.StartOfDay(now.Add(e.opts.Horizon)).AddDate(0, 0, -1)
	if tpl.RecurrenceEnd != nil {
		limit = dates.StartOfDay(*tpl.RecurrenceEnd)
	}

	anchorDay := tpl.Start.Day()
	out := make([]Instance, 0, 8)
	current := tpl.Start
	for len(out) < e.opts.MaxOccurrences {
		if dates.AfterDay(current, limit) {
			break
		}
		out = append(out, e.occurrence(tpl, current, true, idx))

		next, ok := nextOccurrence(current, tpl.Recurrence, anchorDay)
		if !ok {
			// Unrecognized rule: the occurrence already generated stands
			// alone, further iteration stops.
			e.log().Debug("unrecognized recurrence rule, series stops",
				"id", tpl.ID, "rule", string(tpl.Recurrence))
			break
		}
		current = next
	}
	if len(out) == e.opts.MaxOccurrences {
		e.log().Debug("recurrence expansion truncated at cap",
			"id", tpl.ID, "cap", e.opts.MaxOccurrences)
	}
	return out
}

func (e *Engine) occurrence(tpl Template, start time.Time, recurring bool, idx ExceptionIndex) Instance {
	var exc *Exception
	if found, ok := idx.Lookup(tpl.ID, start); ok {
		exc = &found
	}
	return NewInstance(tpl, start, recurring, exc)
}

// nextOccurrence steps from the current occurrence to the next one. The
// monthly step lands on anchorDay, clamped to the last day of months that
// are too short. ok is false for rules the engine does not know.
func nextOccurrence(current time.Time, rule RecurrenceRule, anchorDay int) (time.Time, bool) {
	switch rule {
	case RecurrenceDaily:
		return current.AddDate(0, 0, 1), true
	case RecurrenceWeekly:
		return current.AddDate(0, 0, 7), true
	case RecurrenceBiWeekly:
		return current.AddDate(0, 0, 14), true
	case RecurrenceMonthly:
		return dates.NextMonthClamped(current, anchorDay), true
	default:
		return time.Time{}, false
	}
}
