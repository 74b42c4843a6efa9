package graphs

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindIsolationViolation Kind = "isolation_violation"
	KindConflict           Kind = "conflict"
	KindInvalidInput       Kind = "invalid_input"
	KindNotConnected       Kind = "not_connected"
)

// Error is the structured failure type returned by every operation.
// Transport layers map Kind to a status code; Entity and ID identify the
// subject without parsing the message.
type Error struct {
	Kind   Kind
	Entity string // "graph", "node", "edge" or "course"
	ID     string
	Msg    string
	cause  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.cause }

func notFoundError(entity, id string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Entity: entity,
		ID:     id,
		Msg:    fmt.Sprintf("%s %s not found", entity, id),
	}
}

func isolationError(entity, id, graphID string) *Error {
	return &Error{
		Kind:   KindIsolationViolation,
		Entity: entity,
		ID:     id,
		Msg:    fmt.Sprintf("%s %s does not belong to graph %s", entity, id, graphID),
	}
}

func conflictError(entity, id, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Msg: msg}
}

func inputError(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

// inputErrorFrom wraps a validation error so callers can still reach the
// underlying field list with errors.As.
func inputErrorFrom(err error) *Error {
	return &Error{Kind: KindInvalidInput, Msg: err.Error(), cause: err}
}

func notConnectedError(from, to string) *Error {
	return &Error{
		Kind: KindNotConnected,
		Msg:  fmt.Sprintf("nodes %s and %s are not connected", from, to),
	}
}

func hasKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsNotFound reports whether err is a missing graph, node, or edge.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsIsolationViolation reports whether err is an entity addressed through
// a graph it does not belong to.
func IsIsolationViolation(err error) bool { return hasKind(err, KindIsolationViolation) }

// IsConflict reports whether err is a duplicate course_id or duplicate edge.
func IsConflict(err error) bool { return hasKind(err, KindConflict) }

// IsInvalidInput reports whether err is malformed or rejected input.
func IsInvalidInput(err error) bool { return hasKind(err, KindInvalidInput) }

// IsNotConnected reports whether err is an edge delete on an unconnected pair.
func IsNotConnected(err error) bool { return hasKind(err, KindNotConnected) }
