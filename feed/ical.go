package feed

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/libclubcal/expander"
)

// Options configures the exported calendar.
type Options struct {
	// Name becomes the calendar's display name (X-WR-CALNAME).
	Name string
	// Domain suffixes event UIDs, e.g. "club.example.org".
	Domain string
	// Timestamp is used for DTSTAMP on every event so exports of
	// unchanged data are byte-identical. Zero means time.Now().
	Timestamp time.Time
}

func (o Options) withDefaults() Options {
	if o.Domain == "" {
		o.Domain = "libclubcal.local"
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now()
	}
	return o
}

func newCalendar(o Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//libclubcal//Club Calendar//EN")
	if o.Name != "" {
		// go-ical adds VALUE=TEXT for properties without a registered
		// default type; X-WR-CALNAME is conventionally written bare.
		name := ical.NewProp("X-WR-CALNAME")
		name.SetText(o.Name)
		name.Params.Del(ical.ParamValue)
		cal.Props.Set(name)
	}
	return cal
}

// Calendar renders templates plus their exceptions as a VCALENDAR:
// recurring templates carry an RRULE, cancelled occurrences become EXDATE
// entries, and modified occurrences become RECURRENCE-ID override events.
// Templates the engine would skip as malformed are skipped here too.
func Calendar(templates []expander.Template, exceptions []expander.Exception, opts Options) (*ical.Calendar, error) {
	opts = opts.withDefaults()
	cal := newCalendar(opts)
	idx := expander.BuildExceptionIndex(exceptions)

	byTemplate := make(map[string][]expander.Exception)
	for _, exc := range idx {
		byTemplate[exc.TemplateID] = append(byTemplate[exc.TemplateID], exc)
	}
	// Index iteration order is random; keep the export deterministic.
	for _, excs := range byTemplate {
		sort.Slice(excs, func(i, j int) bool { return excs[i].Date.Before(excs[j].Date) })
	}

	for _, tpl := range templates {
		if tpl.ID == "" || tpl.Start.IsZero() {
			continue
		}

		recurring := tpl.Recurrence != expander.RecurrenceNone && tpl.Recurrence != ""
		if !recurring {
			// A single event folds its exception (if any) directly into
			// the exported VEVENT.
			var exc *expander.Exception
			if found, ok := idx.Lookup(tpl.ID, tpl.Start); ok {
				exc = &found
			}
			inst := expander.NewInstance(tpl, tpl.Start, false, exc)
			event := instanceEvent(inst, opts)
			cal.Children = append(cal.Children, event.Component)
			continue
		}

		event, err := templateEvent(tpl, opts)
		if err != nil {
			return nil, err
		}
		for _, exc := range byTemplate[tpl.ID] {
			switch exc.Status {
			case expander.ExceptionCancelled:
				prop := ical.NewProp(ical.PropExceptionDates)
				prop.SetDateTime(expander.OccurrenceStart(tpl, exc.Date))
				event.Props.Add(prop)
			case expander.ExceptionModified:
				override := overrideEvent(tpl, exc, opts)
				cal.Children = append(cal.Children, override.Component)
			}
		}

		cal.Children = append(cal.Children, event.Component)
	}

	return cal, nil
}

func eventUID(id string, opts Options) string {
	return fmt.Sprintf("%s@%s", id, opts.Domain)
}

func templateEvent(tpl expander.Template, opts Options) (*ical.Event, error) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventUID(tpl.ID, opts))
	event.Props.SetDateTime(ical.PropDateTimeStamp, opts.Timestamp)
	event.Props.SetText(ical.PropSummary, tpl.Title)
	event.Props.SetDateTime(ical.PropDateTimeStart, tpl.Start)
	if tpl.End != nil {
		event.Props.SetDateTime(ical.PropDateTimeEnd, *tpl.End)
	}
	if tpl.Description != "" {
		event.Props.SetText(ical.PropDescription, tpl.Description)
	}
	if tpl.LocationID != "" {
		event.Props.SetText(ical.PropLocation, tpl.LocationID)
	}

	rule, err := RecurrenceToRRule(tpl)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", tpl.ID, err)
	}
	if rule != nil {
		event.Props.SetText(ical.PropRecurrenceRule, rule.OrigOptions.RRuleString())
	}
	return event, nil
}

// overrideEvent renders a modified exception as its own VEVENT tied to the
// parent series via RECURRENCE-ID, carrying the overlaid field values.
func overrideEvent(tpl expander.Template, exc expander.Exception, opts Options) *ical.Event {
	start := expander.OccurrenceStart(tpl, exc.Date)
	inst := expander.NewInstance(tpl, start, true, &exc)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventUID(tpl.ID, opts))
	event.Props.SetDateTime(ical.PropDateTimeStamp, opts.Timestamp)
	event.Props.SetDateTime(ical.PropRecurrenceID, start)
	event.Props.SetText(ical.PropSummary, inst.Title)
	event.Props.SetDateTime(ical.PropDateTimeStart, inst.Start)
	if inst.End != nil {
		event.Props.SetDateTime(ical.PropDateTimeEnd, *inst.End)
	}
	if inst.Description != "" {
		event.Props.SetText(ical.PropDescription, inst.Description)
	}
	if inst.LocationID != "" {
		event.Props.SetText(ical.PropLocation, inst.LocationID)
	}
	return event
}

// instanceEvent renders one concrete occurrence. Cancelled instances get
// STATUS:CANCELLED instead of being dropped, matching how clients display
// them.
func instanceEvent(inst expander.Instance, opts Options) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventUID(inst.VirtualID, opts))
	event.Props.SetDateTime(ical.PropDateTimeStamp, opts.Timestamp)
	event.Props.SetText(ical.PropSummary, inst.Title)
	event.Props.SetDateTime(ical.PropDateTimeStart, inst.Start)
	if inst.End != nil {
		event.Props.SetDateTime(ical.PropDateTimeEnd, *inst.End)
	}
	if inst.Description != "" {
		event.Props.SetText(ical.PropDescription, inst.Description)
	}
	if inst.LocationID != "" {
		event.Props.SetText(ical.PropLocation, inst.LocationID)
	}
	if inst.IsCancelled {
		event.Props.SetText(ical.PropStatus, "CANCELLED")
	}
	return event
}

// Snapshot renders already-expanded instances as a flat VCALENDAR, one
// VEVENT per occurrence.
func Snapshot(instances []expander.Instance, opts Options) *ical.Calendar {
	opts = opts.withDefaults()
	cal := newCalendar(opts)

	for _, inst := range instances {
		event := instanceEvent(inst, opts)
		cal.Children = append(cal.Children, event.Component)
	}

	return cal
}

// Encode serializes a calendar into its ICS text form.
func Encode(cal *ical.Calendar) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.String(), nil
}
