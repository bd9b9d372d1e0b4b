// memory based implementation for testing and small deployments
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyp0633/libclubcal/expander"
	"github.com/cyp0633/libclubcal/internal/dates"
	"github.com/cyp0633/libclubcal/storage"
)

// Store implements the storage source interfaces using in-memory maps.
// It also carries the write paths the engine deliberately does not own:
// template CRUD and the single-occurrence cancel/modify admin actions
// that create exception records.
type Store struct {
	mu         sync.RWMutex
	templates  map[string]expander.Template
	exceptions map[string]expander.Exception
	// exceptionByDay enforces one exception per (template, civil day):
	// key "<templateID>_<ISO day>" -> exception id
	exceptionByDay map[string]string
	types          map[string]storage.AppointmentType
	responses      map[string]storage.Response // key: storage.ResponseKey
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		templates:      make(map[string]expander.Template),
		exceptions:     make(map[string]expander.Exception),
		exceptionByDay: make(map[string]string),
		types:          make(map[string]storage.AppointmentType),
		responses:      make(map[string]storage.Response),
	}
}

func dayKey(templateID string, day time.Time) string {
	return templateID + "_" + dates.DayKey(day)
}

// Template operations

func (s *Store) CreateTemplate(_ context.Context, tpl *expander.Template) error {
	if tpl.Start.IsZero() {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "template start is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if _, exists := s.templates[tpl.ID]; exists {
		return &storage.Error{Type: storage.ErrAlreadyExists, Message: "template already exists"}
	}
	s.templates[tpl.ID] = *tpl
	return nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (*expander.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[id]
	if !ok {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "template not found"}
	}
	return &tpl, nil
}

func (s *Store) UpdateTemplate(_ context.Context, tpl *expander.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[tpl.ID]; !ok {
		return &storage.Error{Type: storage.ErrNotFound, Message: "template not found"}
	}
	s.templates[tpl.ID] = *tpl
	return nil
}

// DeleteTemplate removes a template and all exceptions hanging off it.
// Cleaning up orphaned exceptions is the store's job, never the engine's.
func (s *Store) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return &storage.Error{Type: storage.ErrNotFound, Message: "template not found"}
	}
	delete(s.templates, id)
	for excID, exc := range s.exceptions {
		if exc.TemplateID == id {
			delete(s.exceptions, excID)
			delete(s.exceptionByDay, dayKey(exc.TemplateID, exc.Date))
		}
	}
	return nil
}

// ListTemplates returns templates sorted by id, so repeated snapshots of
// unchanged data are identical.
func (s *Store) ListTemplates(_ context.Context) ([]expander.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]expander.Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Exception operations

// CreateException inserts a new exception, rejecting a second one for the
// same (template, day) occurrence. Use CancelOccurrence or ModifyOccurrence
// to overwrite an existing override.
func (s *Store) CreateException(_ context.Context, exc *expander.Exception) error {
	if exc.TemplateID == "" || exc.Date.IsZero() {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "exception needs template id and date"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[exc.TemplateID]; !ok {
		return &storage.Error{Type: storage.ErrNotFound, Message: "template not found"}
	}
	key := dayKey(exc.TemplateID, exc.Date)
	if _, ok := s.exceptionByDay[key]; ok {
		return &storage.Error{Type: storage.ErrAlreadyExists, Message: "occurrence already has an exception"}
	}
	if exc.ID == "" {
		exc.ID = uuid.NewString()
	}
	if exc.CreatedAt.IsZero() {
		exc.CreatedAt = time.Now()
	}
	s.exceptions[exc.ID] = *exc
	s.exceptionByDay[key] = exc.ID
	return nil
}

func (s *Store) DeleteException(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exc, ok := s.exceptions[id]
	if !ok {
		return &storage.Error{Type: storage.ErrNotFound, Message: "exception not found"}
	}
	delete(s.exceptions, id)
	delete(s.exceptionByDay, dayKey(exc.TemplateID, exc.Date))
	return nil
}

// ListExceptions returns exceptions sorted by id.
func (s *Store) ListExceptions(_ context.Context) ([]expander.Exception, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]expander.Exception, 0, len(s.exceptions))
	for _, exc := range s.exceptions {
		out = append(out, exc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CancelOccurrence drops a single occurrence of a series, overwriting any
// previous override for that day. This is the "delete just this date"
// admin action.
func (s *Store) CancelOccurrence(_ context.Context, templateID string, day time.Time, by string) (expander.Exception, error) {
	return s.upsertException(expander.Exception{
		TemplateID: templateID,
		Date:       day,
		Status:     expander.ExceptionCancelled,
		CreatedBy:  by,
	})
}

// ModifyOccurrence overlays fields onto a single occurrence, overwriting
// any previous override for that day. This is the "edit just this date"
// admin action.
func (s *Store) ModifyOccurrence(_ context.Context, templateID string, day time.Time, overlay expander.Overlay, by string) (expander.Exception, error) {
	return s.upsertException(expander.Exception{
		TemplateID: templateID,
		Date:       day,
		Status:     expander.ExceptionModified,
		Overlay:    overlay,
		CreatedBy:  by,
	})
}

func (s *Store) upsertException(exc expander.Exception) (expander.Exception, error) {
	if exc.TemplateID == "" || exc.Date.IsZero() {
		return expander.Exception{}, &storage.Error{Type: storage.ErrInvalidInput, Message: "exception needs template id and date"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[exc.TemplateID]; !ok {
		return expander.Exception{}, &storage.Error{Type: storage.ErrNotFound, Message: "template not found"}
	}
	key := dayKey(exc.TemplateID, exc.Date)
	if oldID, ok := s.exceptionByDay[key]; ok {
		delete(s.exceptions, oldID)
	}
	exc.ID = uuid.NewString()
	exc.CreatedAt = time.Now()
	s.exceptions[exc.ID] = exc
	s.exceptionByDay[key] = exc.ID
	return exc, nil
}

// Type catalog operations

func (s *Store) CreateType(_ context.Context, t *storage.AppointmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, exists := s.types[t.ID]; exists {
		return &storage.Error{Type: storage.ErrAlreadyExists, Message: "type already exists"}
	}
	s.types[t.ID] = *t
	return nil
}

func (s *Store) ListTypes(_ context.Context) ([]storage.AppointmentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.AppointmentType, 0, len(s.types))
	for _, t := range s.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Response operations

// PutResponse upserts a member's RSVP for one occurrence; a member has at
// most one response per occurrence.
func (s *Store) PutResponse(_ context.Context, resp *storage.Response) error {
	if resp.UserID == "" || resp.TemplateID == "" || resp.Day == "" {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "response needs user, template and day"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now()
	}
	s.responses[resp.Key()] = *resp
	return nil
}

func (s *Store) ListResponses(_ context.Context) ([]storage.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Response, 0, len(s.responses))
	for _, resp := range s.responses {
		out = append(out, resp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
