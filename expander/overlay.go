package expander

import (
	"time"

	"github.com/cyp0633/libclubcal/internal/dates"
)

// NewInstance materializes one occurrence of tpl anchored at start,
// applying exc on top when non-nil. recurring selects the virtual-id
// scheme: recurring occurrences get "<templateID>_<ISO day>" so siblings
// stay distinguishable, a single occurrence keeps the template id.
func NewInstance(tpl Template, start time.Time, recurring bool, exc *Exception) Instance {
	inst := Instance{
		VirtualID:    tpl.ID,
		TemplateID:   tpl.ID,
		Day:          dates.DayKey(start),
		Title:        tpl.Title,
		Start:        start,
		AllDay:       tpl.AllDay,
		TypeID:       tpl.TypeID,
		LocationID:   tpl.LocationID,
		Description:  tpl.Description,
		MeetingPoint: tpl.MeetingPoint,
		MeetingTime:  tpl.MeetingTime,
		Visibility:   tpl.Visibility,
	}
	if recurring {
		inst.VirtualID = tpl.ID + "_" + inst.Day
	}
	if tpl.End != nil {
		end := start.Add(tpl.Duration())
		inst.End = &end
	}

	if exc == nil {
		return inst
	}
	switch exc.Status {
	case ExceptionCancelled:
		inst.IsCancelled = true
	case ExceptionModified:
		applyOverlay(&inst, exc.Overlay, tpl)
	}
	return inst
}

// applyOverlay merges the exception's partial field set onto the instance.
// Only fields explicitly present replace the template's value. The original
// duration is preserved when the overlay moves the start without also
// setting the end.
func applyOverlay(inst *Instance, ov Overlay, tpl Template) {
	inst.IsException = true

	if s, ok := ov.Start.Get(); ok {
		inst.Start = s
		if end, ok := ov.End.Get(); ok {
			inst.End = &end
		} else if tpl.End != nil {
			end := s.Add(tpl.Duration())
			inst.End = &end
		}
	} else if end, ok := ov.End.Get(); ok {
		inst.End = &end
	}

	if title, ok := ov.Title.Get(); ok {
		inst.Title = title
	}
	if loc, ok := ov.LocationID.Get(); ok {
		inst.LocationID = loc
	}
	if desc, ok := ov.Description.Get(); ok {
		inst.Description = desc
	}
	if mp, ok := ov.MeetingPoint.Get(); ok {
		inst.MeetingPoint = mp
	}
	if mt, ok := ov.MeetingTime.Get(); ok {
		t := mt
		inst.MeetingTime = &t
	}
	if allDay, ok := ov.AllDay.Get(); ok {
		inst.AllDay = allDay
	}
}

// OccurrenceStart places the template's time of day on the given civil day.
// Used when an exception day needs to be turned back into a concrete
// occurrence start, e.g. for feed export.
func OccurrenceStart(tpl Template, day time.Time) time.Time {
	h, m, s := tpl.Start.Clock()
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s,
		tpl.Start.Nanosecond(), tpl.Start.Location())
}
