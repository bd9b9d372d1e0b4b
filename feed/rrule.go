// Package feed exports the club calendar as iCalendar data so members can
// subscribe from external calendar clients. Export only: the feed is a
// read model over templates, exceptions and expanded instances, not a wire
// server.
package feed

import (
	"fmt"

	"github.com/teambition/rrule-go"

	"github.com/cyp0633/libclubcal/expander"
)

// RecurrenceToRRule converts a template's recurrence rule into an RFC 5545
// RRULE anchored at the template start. Returns nil for non-recurring
// templates.
//
// The monthly mapping is approximate at month ends: the engine clamps the
// 31st to a shorter month's last day while FREQ=MONTHLY skips such months,
// so subscribers of a day-31 monthly series miss the clamped occurrences.
func RecurrenceToRRule(tpl expander.Template) (*rrule.RRule, error) {
	opt := rrule.ROption{Dtstart: tpl.Start}

	switch tpl.Recurrence {
	case expander.RecurrenceNone, "":
		return nil, nil
	case expander.RecurrenceDaily:
		opt.Freq = rrule.DAILY
	case expander.RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
	case expander.RecurrenceBiWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case expander.RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		return nil, fmt.Errorf("recurrence rule %q has no RRULE form", tpl.Recurrence)
	}

	if tpl.RecurrenceEnd != nil {
		// UNTIL is inclusive; the last occurrence starts at the template's
		// time of day on the recurrence end day.
		opt.Until = expander.OccurrenceStart(tpl, *tpl.RecurrenceEnd)
	}

	return rrule.NewRRule(opt)
}

// RRuleFromString maps an RRULE value back onto the engine's rule enum,
// for importing externally authored series. ok is false when the RRULE has
// no equivalent (other frequencies, intervals, BYxxx parts).
func RRuleFromString(value string) (expander.RecurrenceRule, bool) {
	r, err := rrule.StrToRRule(value)
	if err != nil {
		return expander.RecurrenceNone, false
	}
	opt := r.OrigOptions
	if opt.Count != 0 || len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 || len(opt.Bymonth) > 0 {
		return expander.RecurrenceNone, false
	}
	switch {
	case opt.Freq == rrule.DAILY && opt.Interval <= 1:
		return expander.RecurrenceDaily, true
	case opt.Freq == rrule.WEEKLY && opt.Interval <= 1:
		return expander.RecurrenceWeekly, true
	case opt.Freq == rrule.WEEKLY && opt.Interval == 2:
		return expander.RecurrenceBiWeekly, true
	case opt.Freq == rrule.MONTHLY && opt.Interval <= 1:
		return expander.RecurrenceMonthly, true
	default:
		return expander.RecurrenceNone, false
	}
}
