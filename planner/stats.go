package planner

import (
	"context"
	"sort"
	"time"

	"github.com/cyp0633/libclubcal/storage"
)

// AttendanceSummary tallies one member's responses over a set of
// occurrences.
type AttendanceSummary struct {
	UserID    string
	Attending int
	Declined  int
	Maybe     int
	// Occurrences is how many non-cancelled occurrences the tally ran
	// over; responses without a matching occurrence are not counted.
	Occurrences int
}

// AttendanceReport joins the viewer-visible, non-cancelled occurrences
// between from and to against the RSVP responses, tallied per member and
// sorted by user id. Responses pointing at cancelled or out-of-window
// occurrences are ignored.
func (p *Planner) AttendanceReport(ctx context.Context, responses storage.ResponseSource, viewerTeams []string, from, to time.Time) ([]AttendanceSummary, error) {
	instances, err := p.Window(ctx, viewerTeams, ViewFilter{}, from, to)
	if err != nil {
		return nil, err
	}
	all, err := responses.ListResponses(ctx)
	if err != nil {
		return nil, err
	}

	// Occurrence key set: template id + instance day.
	occurrences := make(map[string]struct{}, len(instances))
	for _, inst := range instances {
		occurrences[inst.TemplateID+"_"+inst.Day] = struct{}{}
	}

	byUser := make(map[string]*AttendanceSummary)
	for _, resp := range all {
		if _, ok := occurrences[resp.TemplateID+"_"+resp.Day]; !ok {
			continue
		}
		summary, ok := byUser[resp.UserID]
		if !ok {
			summary = &AttendanceSummary{UserID: resp.UserID, Occurrences: len(occurrences)}
			byUser[resp.UserID] = summary
		}
		switch resp.Status {
		case storage.ResponseAttending:
			summary.Attending++
		case storage.ResponseDeclined:
			summary.Declined++
		case storage.ResponseMaybe:
			summary.Maybe++
		}
	}

	out := make([]AttendanceSummary, 0, len(byUser))
	for _, summary := range byUser {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
