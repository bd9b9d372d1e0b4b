package expander

import (
	"time"

	"github.com/cyp0633/libclubcal/internal/dates"
)

// ExceptionIndex maps "<templateID>_<ISO day>" to the exception overriding
// that occurrence.
type ExceptionIndex map[string]Exception

func indexKey(templateID string, day time.Time) string {
	return templateID + "_" + dates.DayKey(day)
}

// BuildExceptionIndex indexes exceptions by (template id, civil day of the
// original date). Entries without a template id or date are skipped.
//
// When several exceptions target the same occurrence, the one with the
// newest CreatedAt wins; on equal (or zero) timestamps the later entry in
// input order wins. Stores should enforce uniqueness at write time, the
// tie-break only keeps the lookup deterministic for inputs that don't.
func BuildExceptionIndex(exceptions []Exception) ExceptionIndex {
	idx := make(ExceptionIndex, len(exceptions))
	for _, exc := range exceptions {
		if exc.TemplateID == "" || exc.Date.IsZero() {
			continue
		}
		key := indexKey(exc.TemplateID, exc.Date)
		if prev, ok := idx[key]; ok && exc.CreatedAt.Before(prev.CreatedAt) {
			continue
		}
		idx[key] = exc
	}
	return idx
}

// Lookup returns the exception overriding the given template's occurrence
// on t's civil day, if any.
func (idx ExceptionIndex) Lookup(templateID string, t time.Time) (Exception, bool) {
	exc, ok := idx[indexKey(templateID, t)]
	return exc, ok
}
