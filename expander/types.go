package expander

import (
	"time"

	"github.com/samber/mo"
)

// RecurrenceRule names the repetition pattern of a Template.
type RecurrenceRule string

const (
	RecurrenceNone     RecurrenceRule = "none"
	RecurrenceDaily    RecurrenceRule = "daily"
	RecurrenceWeekly   RecurrenceRule = "weekly"
	RecurrenceBiWeekly RecurrenceRule = "biweekly"
	RecurrenceMonthly  RecurrenceRule = "monthly"
)

// VisibilityType controls who may see a template's instances.
type VisibilityType string

const (
	VisibilityAll           VisibilityType = "all"
	VisibilitySpecificTeams VisibilityType = "specificTeams"
)

// Visibility restricts a template to everyone or to a set of teams.
type Visibility struct {
	Type    VisibilityType
	TeamIDs []string // only meaningful for VisibilitySpecificTeams
}

// Template is the authored appointment definition, possibly recurring.
// Templates are read-only snapshots from the engine's point of view; they
// are created and edited by the surrounding application.
type Template struct {
	ID    string
	Title string

	Start  time.Time
	End    *time.Time // optional; when set, End-Start is the fixed duration of every instance
	AllDay bool

	Recurrence RecurrenceRule
	// RecurrenceEnd bounds a recurring series, calendar-day precision,
	// inclusive. Nil means open-ended; expansion then clamps to the
	// configured horizon.
	RecurrenceEnd *time.Time

	TypeID     string
	LocationID string

	Description  string
	MeetingPoint string
	MeetingTime  *time.Time

	Visibility Visibility
}

// Duration returns the fixed instance duration, or zero when the template
// has no end instant.
func (t Template) Duration() time.Duration {
	if t.End == nil {
		return 0
	}
	return t.End.Sub(t.Start)
}

// ExceptionStatus distinguishes a dropped occurrence from an edited one.
type ExceptionStatus string

const (
	ExceptionCancelled ExceptionStatus = "cancelled"
	ExceptionModified  ExceptionStatus = "modified"
)

// Exception overrides a single occurrence of one template on one calendar
// day. At most one exception per (template, day) pair is meaningful; see
// BuildExceptionIndex for the tie-break when the input violates that.
type Exception struct {
	ID         string
	TemplateID string
	// Date identifies which occurrence is overridden. Only its civil day
	// matters; the time of day is ignored.
	Date   time.Time
	Status ExceptionStatus
	// Overlay carries the replacement fields for ExceptionModified.
	// Ignored for ExceptionCancelled.
	Overlay Overlay

	CreatedAt time.Time
	CreatedBy string
}

// Overlay is a partial field set applied on top of a template for one
// instance. Each field is an explicit present-or-absent option, so an
// intentional empty value is distinguishable from "not overridden".
type Overlay struct {
	Start        mo.Option[time.Time]
	End          mo.Option[time.Time]
	Title        mo.Option[string]
	LocationID   mo.Option[string]
	Description  mo.Option[string]
	MeetingPoint mo.Option[string]
	MeetingTime  mo.Option[time.Time]
	AllDay       mo.Option[bool]
}

// IsZero reports whether no field is overridden.
func (o Overlay) IsZero() bool {
	return o.Start.IsAbsent() && o.End.IsAbsent() && o.Title.IsAbsent() &&
		o.LocationID.IsAbsent() && o.Description.IsAbsent() &&
		o.MeetingPoint.IsAbsent() && o.MeetingTime.IsAbsent() && o.AllDay.IsAbsent()
}

// Instance is one concrete calendar appearance of a template, ready for
// display. Instances are derived values: constructed fresh on every
// expansion, never persisted, owned by the caller.
type Instance struct {
	// VirtualID is stable per occurrence: the template id for
	// non-recurring templates, "<templateID>_<ISO day>" for recurring ones.
	VirtualID  string
	TemplateID string
	// Day is the ISO civil day of the original (pre-overlay) occurrence.
	Day string

	Title  string
	Start  time.Time
	End    *time.Time
	AllDay bool

	TypeID     string
	LocationID string

	Description  string
	MeetingPoint string
	MeetingTime  *time.Time

	Visibility Visibility

	// IsException marks an instance with a modified-exception overlay.
	IsException bool
	// IsCancelled marks an occurrence dropped by a cancellation exception.
	// Cancelled instances are still generated so absence reporting can see
	// them; normal display paths drop them in Filter.
	IsCancelled bool
}
