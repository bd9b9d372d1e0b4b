// Package storage defines the snapshot-provider contracts between the
// surrounding application and the expansion engine, plus shared record
// types that are not part of the engine's own input. The engine never
// touches a store directly; it only sees the collections these interfaces
// return.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cyp0633/libclubcal/expander"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// TemplateSource supplies the appointment templates to expand. Implementations
// return a read-only snapshot; the caller must not receive shared mutable
// state.
type TemplateSource interface {
	ListTemplates(ctx context.Context) ([]expander.Template, error)
}

// ExceptionSource supplies the per-day exception records.
type ExceptionSource interface {
	ListExceptions(ctx context.Context) ([]expander.Exception, error)
}

// AppointmentType is a catalog entry mapping a type id to its display name.
type AppointmentType struct {
	ID    string
	Name  string
	Color string // optional display color, e.g. "#1e88e5"
}

// TypeCatalog resolves appointment-type ids to names. Only needed to
// resolve the headline ("match day") sentinel type and for display labels,
// not for the correctness of unrolling itself.
type TypeCatalog interface {
	ListTypes(ctx context.Context) ([]AppointmentType, error)
}

// ResponseStatus is a member's answer to a single occurrence.
type ResponseStatus string

const (
	ResponseAttending ResponseStatus = "attending"
	ResponseDeclined  ResponseStatus = "declined"
	ResponseMaybe     ResponseStatus = "maybe"
)

// Response is one member's RSVP for one occurrence, keyed by
// (user, template, instance day) so it lines up with the engine's
// Instance.TemplateID and Instance.Day.
type Response struct {
	ID         string
	UserID     string
	TemplateID string
	Day        string // ISO civil day of the occurrence
	Status     ResponseStatus
	Comment    string
	CreatedAt  time.Time
}

// Key returns the composite lookup key joining this response to an
// expanded instance.
func (r Response) Key() string {
	return ResponseKey(r.UserID, r.TemplateID, r.Day)
}

// ResponseKey builds the composite (user, template, day) key.
func ResponseKey(userID, templateID, day string) string {
	return userID + "_" + templateID + "_" + day
}

// ResponseSource supplies RSVP responses for statistics views.
type ResponseSource interface {
	ListResponses(ctx context.Context) ([]Response, error)
}
