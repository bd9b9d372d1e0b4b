// Command example seeds an in-memory store with a small club schedule and
// prints the dashboard views plus the exported ICS feed.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/libclubcal/expander"
	"github.com/cyp0633/libclubcal/feed"
	"github.com/cyp0633/libclubcal/planner"
	"github.com/cyp0633/libclubcal/storage"
	"github.com/cyp0633/libclubcal/storage/memory"
)

func main() {
	ctx := context.Background()
	store := memory.New()

	matchDay := storage.AppointmentType{ID: "type-match", Name: "Match Day"}
	training := storage.AppointmentType{ID: "type-training", Name: "Training"}
	if err := store.CreateType(ctx, &matchDay); err != nil {
		log.Fatal(err)
	}
	if err := store.CreateType(ctx, &training); err != nil {
		log.Fatal(err)
	}

	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.Local)

	trainingEnd := now.AddDate(0, 3, 0)
	trainingStart := time.Date(2025, 3, 4, 19, 0, 0, 0, time.Local)
	trainingStop := trainingStart.Add(90 * time.Minute)
	weekly := expander.Template{
		ID:            "training-tuesday",
		Title:         "Team Training",
		Start:         trainingStart,
		End:           &trainingStop,
		Recurrence:    expander.RecurrenceWeekly,
		RecurrenceEnd: &trainingEnd,
		TypeID:        training.ID,
		Visibility: expander.Visibility{
			Type:    expander.VisibilitySpecificTeams,
			TeamIDs: []string{"first-team"},
		},
	}
	if err := store.CreateTemplate(ctx, &weekly); err != nil {
		log.Fatal(err)
	}

	matchStart := time.Date(2025, 3, 8, 15, 0, 0, 0, time.Local)
	matchStop := matchStart.Add(2 * time.Hour)
	match := expander.Template{
		ID:         "home-match",
		Title:      "Home Match vs. Rivals",
		Start:      matchStart,
		End:        &matchStop,
		Recurrence: expander.RecurrenceNone,
		TypeID:     matchDay.ID,
		Visibility: expander.Visibility{Type: expander.VisibilityAll},
	}
	if err := store.CreateTemplate(ctx, &match); err != nil {
		log.Fatal(err)
	}

	// Cancel the second training, move the third one an hour later.
	if _, err := store.CancelOccurrence(ctx, weekly.ID, trainingStart.AddDate(0, 0, 7), "coach"); err != nil {
		log.Fatal(err)
	}
	moved := trainingStart.AddDate(0, 0, 14).Add(time.Hour)
	if _, err := store.ModifyOccurrence(ctx, weekly.ID, trainingStart.AddDate(0, 0, 14), expander.Overlay{
		Start: mo.Some(moved),
		Title: mo.Some("Team Training (moved)"),
	}, "coach"); err != nil {
		log.Fatal(err)
	}

	p := planner.New(store, store, planner.Config{
		HeadlineTypeName: "Match Day",
		Types:            store,
	})
	defer p.Close()

	viewer := []string{"first-team"}

	upcoming, err := p.Upcoming(ctx, viewer, now, 5)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Upcoming:")
	for _, inst := range upcoming {
		fmt.Printf("  %s  %s\n", inst.Start.Format("Mon 2006-01-02 15:04"), inst.Title)
	}

	view, err := p.Headline(ctx, viewer, now, 3)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Headline:")
	for _, inst := range view.Headline {
		fmt.Printf("  %s  %s\n", inst.Start.Format("Mon 2006-01-02 15:04"), inst.Title)
	}

	cancelled, err := p.Cancellations(ctx, viewer, now, now.AddDate(0, 1, 0))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Cancelled:")
	for _, inst := range cancelled {
		fmt.Printf("  %s  %s\n", inst.Start.Format("Mon 2006-01-02 15:04"), inst.Title)
	}

	templates, _ := store.ListTemplates(ctx)
	exceptions, _ := store.ListExceptions(ctx)
	cal, err := feed.Calendar(templates, exceptions, feed.Options{Name: "Club Calendar", Domain: "club.example.org"})
	if err != nil {
		log.Fatal(err)
	}
	ics, err := feed.Encode(cal)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(ics)
}
