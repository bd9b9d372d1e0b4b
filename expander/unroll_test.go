package expander

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourLong(start time.Time) *time.Time {
	end := start.Add(time.Hour)
	return &end
}

func TestExpandNonRecurringPassthrough(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:         "single",
		Title:      "Annual Meeting",
		Start:      start,
		End:        hourLong(start),
		Recurrence: RecurrenceNone,
		Visibility: Visibility{Type: VisibilityAll},
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	require.Len(t, instances, 1)
	inst := instances[0]
	assert.Equal(t, "single", inst.VirtualID, "non-recurring virtual id equals template id")
	assert.Equal(t, "single", inst.TemplateID)
	assert.Equal(t, "2025-01-01", inst.Day)
	assert.Equal(t, tpl.Title, inst.Title)
	assert.Equal(t, start, inst.Start)
	require.NotNil(t, inst.End)
	assert.Equal(t, start.Add(time.Hour), *inst.End)
	assert.False(t, inst.IsException)
	assert.False(t, inst.IsCancelled)
}

func TestExpandWeeklyBound(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
	recEnd := time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:            "weekly",
		Start:         start,
		End:           hourLong(start),
		Recurrence:    RecurrenceWeekly,
		RecurrenceEnd: &recEnd,
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	require.Len(t, instances, 4)
	wantDays := []string{"2025-01-01", "2025-01-08", "2025-01-15", "2025-01-22"}
	for i, inst := range instances {
		assert.Equal(t, wantDays[i], inst.Day)
		assert.Equal(t, "weekly_"+wantDays[i], inst.VirtualID)
		assert.Equal(t, start.AddDate(0, 0, 7*i), inst.Start)
	}
}

func TestExpandBiWeekly(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	recEnd := time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:            "biweekly",
		Start:         start,
		Recurrence:    RecurrenceBiWeekly,
		RecurrenceEnd: &recEnd,
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	require.Len(t, instances, 3)
	assert.Equal(t, "2025-01-01", instances[0].Day)
	assert.Equal(t, "2025-01-15", instances[1].Day)
	assert.Equal(t, "2025-01-29", instances[2].Day)
}

func TestExpandMonthlyClamp(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 31, 18, 0, 0, 0, time.UTC)
	recEnd := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:            "monthly",
		Start:         start,
		Recurrence:    RecurrenceMonthly,
		RecurrenceEnd: &recEnd,
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	require.Len(t, instances, 4)
	assert.Equal(t, "2025-01-31", instances[0].Day)
	assert.Equal(t, "2025-02-28", instances[1].Day, "31st clamps to February's last day")
	assert.Equal(t, "2025-03-31", instances[2].Day, "anchor day returns after the clamp")
	assert.Equal(t, "2025-04-30", instances[3].Day)
	assert.Equal(t, 18, instances[1].Start.Hour(), "time of day survives the clamp")
}

func TestExpandOpenEndedClampsToHorizon(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:         "open-daily",
		Start:      start,
		Recurrence: RecurrenceDaily,
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	assert.Len(t, instances, 365)
}

func TestExpandCapTruncatesSilently(t *testing.T) {
	engine := NewEngineWithOptions(ExpansionOptions{MaxOccurrences: 10})
	start := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	recEnd := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:            "capped",
		Start:         start,
		Recurrence:    RecurrenceDaily,
		RecurrenceEnd: &recEnd,
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	assert.Len(t, instances, 10)
}

func TestExpandStartPastRecurrenceEnd(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC)
	recEnd := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:            "already-over",
		Start:         start,
		Recurrence:    RecurrenceWeekly,
		RecurrenceEnd: &recEnd,
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	assert.Empty(t, instances)
}

func TestExpandUnrecognizedRuleSingleOccurrence(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	recEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tpl := Template{
		ID:            "odd-rule",
		Start:         start,
		Recurrence:    RecurrenceRule("fortnightly-ish"),
		RecurrenceEnd: &recEnd,
	}

	instances := engine.Expand([]Template{tpl}, nil, start)

	require.Len(t, instances, 1)
	assert.Equal(t, start, instances[0].Start)
}

func TestExpandSkipsMalformedTemplate(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	good := Template{ID: "good", Start: start, Recurrence: RecurrenceNone}

	instances := engine.Expand([]Template{
		{ID: "no-start", Recurrence: RecurrenceDaily},
		{Start: start, Recurrence: RecurrenceDaily}, // no id
		good,
	}, nil, start)

	require.Len(t, instances, 1)
	assert.Equal(t, "good", instances[0].TemplateID)
}

func TestExpandDeterminism(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
	recEnd := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	templates := []Template{
		{ID: "a", Title: "A", Start: start, End: hourLong(start), Recurrence: RecurrenceWeekly, RecurrenceEnd: &recEnd},
		{ID: "b", Title: "B", Start: start.Add(time.Hour), Recurrence: RecurrenceDaily, RecurrenceEnd: &recEnd},
	}
	exceptions := []Exception{
		{ID: "e1", TemplateID: "a", Date: start.AddDate(0, 0, 7), Status: ExceptionCancelled},
	}

	first := engine.Expand(templates, exceptions, start)
	second := engine.Expand(templates, exceptions, start)

	assert.Equal(t, first, second)
}

func TestExpandTemplateWithPrebuiltIndex(t *testing.T) {
	engine := NewEngine()
	start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
	recEnd := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	tpl := Template{ID: "tpl", Start: start, Recurrence: RecurrenceWeekly, RecurrenceEnd: &recEnd}
	idx := BuildExceptionIndex([]Exception{
		{ID: "e", TemplateID: "tpl", Date: start.AddDate(0, 0, 7), Status: ExceptionCancelled},
	})

	instances := engine.ExpandTemplate(tpl, idx, start)

	require.Len(t, instances, 3)
	assert.False(t, instances[0].IsCancelled)
	assert.True(t, instances[1].IsCancelled)
	assert.False(t, instances[2].IsCancelled)
}
