package storage

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cyp0633/libclubcal/expander"
)

// MockTemplateSource implements TemplateSource for testing
type MockTemplateSource struct {
	mock.Mock
}

func (m *MockTemplateSource) ListTemplates(ctx context.Context) ([]expander.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expander.Template), args.Error(1)
}

// MockExceptionSource implements ExceptionSource for testing
type MockExceptionSource struct {
	mock.Mock
}

func (m *MockExceptionSource) ListExceptions(ctx context.Context) ([]expander.Exception, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expander.Exception), args.Error(1)
}

// MockTypeCatalog implements TypeCatalog for testing
type MockTypeCatalog struct {
	mock.Mock
}

func (m *MockTypeCatalog) ListTypes(ctx context.Context) ([]AppointmentType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AppointmentType), args.Error(1)
}

// MockResponseSource implements ResponseSource for testing
type MockResponseSource struct {
	mock.Mock
}

func (m *MockResponseSource) ListResponses(ctx context.Context) ([]Response, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Response), args.Error(1)
}

// --- Helper methods for creating test data ---

// NewTestTemplate creates a template visible to all with a one-hour
// duration starting at start.
func NewTestTemplate(id, title string, start time.Time, rule expander.RecurrenceRule) expander.Template {
	end := start.Add(time.Hour)
	return expander.Template{
		ID:         id,
		Title:      title,
		Start:      start,
		End:        &end,
		Recurrence: rule,
		Visibility: expander.Visibility{Type: expander.VisibilityAll},
	}
}

// NewCancelledException creates a cancellation for the template's
// occurrence on day.
func NewCancelledException(id, templateID string, day time.Time) expander.Exception {
	return expander.Exception{
		ID:         id,
		TemplateID: templateID,
		Date:       day,
		Status:     expander.ExceptionCancelled,
		CreatedAt:  day,
	}
}

// NewModifiedException creates a field-overlay exception for the template's
// occurrence on day.
func NewModifiedException(id, templateID string, day time.Time, overlay expander.Overlay) expander.Exception {
	return expander.Exception{
		ID:         id,
		TemplateID: templateID,
		Date:       day,
		Status:     expander.ExceptionModified,
		Overlay:    overlay,
		CreatedAt:  day,
	}
}
