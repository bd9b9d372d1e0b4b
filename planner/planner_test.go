package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/libclubcal/expander"
	"github.com/cyp0633/libclubcal/storage"
	"github.com/cyp0633/libclubcal/storage/memory"
)

// seededStore builds a store with a weekly training restricted to team A,
// a public one-off match, a cancelled second training and a moved third
// one. now is the Monday before everything starts.
func seededStore(t *testing.T) (*memory.Store, time.Time) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.CreateType(ctx, &storage.AppointmentType{ID: "type-match", Name: "Match Day"}))
	require.NoError(t, store.CreateType(ctx, &storage.AppointmentType{ID: "type-training", Name: "Training"}))

	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	trainingStart := time.Date(2025, 3, 4, 19, 0, 0, 0, time.UTC)
	trainingStop := trainingStart.Add(90 * time.Minute)
	trainingEnd := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	training := expander.Template{
		ID:            "training",
		Title:         "Team Training",
		Start:         trainingStart,
		End:           &trainingStop,
		Recurrence:    expander.RecurrenceWeekly,
		RecurrenceEnd: &trainingEnd,
		TypeID:        "type-training",
		Visibility: expander.Visibility{
			Type:    expander.VisibilitySpecificTeams,
			TeamIDs: []string{"A"},
		},
	}
	require.NoError(t, store.CreateTemplate(ctx, &training))

	matchStart := time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC)
	matchStop := matchStart.Add(2 * time.Hour)
	match := expander.Template{
		ID:         "match",
		Title:      "Home Match",
		Start:      matchStart,
		End:        &matchStop,
		Recurrence: expander.RecurrenceNone,
		TypeID:     "type-match",
		Visibility: expander.Visibility{Type: expander.VisibilityAll},
	}
	require.NoError(t, store.CreateTemplate(ctx, &match))

	_, err := store.CancelOccurrence(ctx, "training", trainingStart.AddDate(0, 0, 7), "coach")
	require.NoError(t, err)
	_, err = store.ModifyOccurrence(ctx, "training", trainingStart.AddDate(0, 0, 14), expander.Overlay{
		Start: mo.Some(trainingStart.AddDate(0, 0, 14).Add(time.Hour)),
	}, "coach")
	require.NoError(t, err)

	return store, now
}

func newPlanner(store *memory.Store) *Planner {
	return New(store, store, Config{
		HeadlineTypeName: "Match Day",
		Types:            store,
	})
}

func TestUpcoming(t *testing.T) {
	store, now := seededStore(t)
	p := newPlanner(store)
	defer p.Close()

	got, err := p.Upcoming(context.Background(), []string{"A"}, now, 3)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "Team Training", got[0].Title)
	assert.Equal(t, "2025-03-04", got[0].Day)
	assert.Equal(t, "Home Match", got[1].Title)
	// The cancelled 2025-03-11 training is skipped; the moved 03-18 one
	// follows the match.
	assert.Equal(t, "2025-03-18", got[2].Day)
	assert.True(t, got[2].IsException)
}

func TestUpcomingRespectsVisibility(t *testing.T) {
	store, now := seededStore(t)
	p := newPlanner(store)
	defer p.Close()

	got, err := p.Upcoming(context.Background(), nil, now, 0)
	require.NoError(t, err)

	require.Len(t, got, 1, "viewer without teams only sees the public match")
	assert.Equal(t, "Home Match", got[0].Title)
}

func TestWindow(t *testing.T) {
	store, _ := seededStore(t)
	p := newPlanner(store)
	defer p.Close()

	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	got, err := p.Window(context.Background(), []string{"A"}, ViewFilter{}, from, to)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "2025-03-04", got[0].Day)
	assert.Equal(t, "2025-03-08", got[1].Day)
}

func TestWindowTypeFilter(t *testing.T) {
	store, _ := seededStore(t)
	p := newPlanner(store)
	defer p.Close()

	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	got, err := p.Window(context.Background(), []string{"A"}, ViewFilter{TypeIDs: []string{"type-match"}}, from, to)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Home Match", got[0].Title)
}

func TestHeadline(t *testing.T) {
	store, now := seededStore(t)
	p := newPlanner(store)
	defer p.Close()

	view, err := p.Headline(context.Background(), []string{"A"}, now, 2)
	require.NoError(t, err)

	require.Len(t, view.Headline, 1)
	assert.Equal(t, "Home Match", view.Headline[0].Title)
	require.Len(t, view.Others, 2)
	for _, inst := range view.Others {
		assert.Equal(t, "Team Training", inst.Title)
	}
}

func TestHeadlineWithoutCatalog(t *testing.T) {
	store, now := seededStore(t)
	p := New(store, store, Config{})
	defer p.Close()

	view, err := p.Headline(context.Background(), []string{"A"}, now, 0)
	require.NoError(t, err)

	assert.Empty(t, view.Headline)
	assert.NotEmpty(t, view.Others)
}

func TestCancellations(t *testing.T) {
	store, now := seededStore(t)
	p := newPlanner(store)
	defer p.Close()

	got, err := p.Cancellations(context.Background(), []string{"A"}, now, now.AddDate(0, 1, 0))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-11", got[0].Day)
	assert.True(t, got[0].IsCancelled)
}

func TestCancellationsInvisibleWithoutTeam(t *testing.T) {
	store, now := seededStore(t)
	p := newPlanner(store)
	defer p.Close()

	got, err := p.Cancellations(context.Background(), nil, now, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSourceErrorsPropagate(t *testing.T) {
	boom := errors.New("backend down")
	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	templates := new(storage.MockTemplateSource)
	templates.On("ListTemplates", context.Background()).Return(nil, boom)
	p := New(templates, new(storage.MockExceptionSource), Config{})
	defer p.Close()

	_, err := p.Upcoming(context.Background(), nil, now, 1)
	assert.ErrorIs(t, err, boom)

	templates2 := new(storage.MockTemplateSource)
	templates2.On("ListTemplates", context.Background()).Return([]expander.Template{}, nil)
	exceptions := new(storage.MockExceptionSource)
	exceptions.On("ListExceptions", context.Background()).Return(nil, boom)
	p2 := New(templates2, exceptions, Config{})
	defer p2.Close()

	_, err = p2.Upcoming(context.Background(), nil, now, 1)
	assert.ErrorIs(t, err, boom)
}

func TestCachedExpansionStaysConsistent(t *testing.T) {
	store, now := seededStore(t)
	p := New(store, store, Config{
		Cache: &expander.DefaultCacheConfig,
	})
	defer p.Close()

	first, err := p.Upcoming(context.Background(), []string{"A"}, now, 0)
	require.NoError(t, err)
	second, err := p.Upcoming(context.Background(), []string{"A"}, now, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// An edit changes the content hash, so the cache cannot serve stale data.
	_, err = store.CancelOccurrence(context.Background(), "match", time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), "coach")
	require.NoError(t, err)

	third, err := p.Upcoming(context.Background(), []string{"A"}, now, 0)
	require.NoError(t, err)
	assert.Len(t, third, len(second)-1)
}
