package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateGraph checks a Graph for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the graph is valid.
func ValidateGraph(g *Graph) error {
	var ve ValidationError

	// CourseID: required and at most 200 characters.
	courseID := strings.TrimSpace(g.CourseID)
	if courseID == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "course_id", Message: "is required"})
	} else if len([]rune(courseID)) > 200 {
		ve.Errors = append(ve.Errors, FieldError{Field: "course_id", Message: "must be 200 characters or fewer"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateNode checks a Node for constraint violations.
func ValidateNode(n *Node) error {
	var ve ValidationError

	// Title: optional, but at most 500 characters when present.
	if len([]rune(n.Title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	// MasteryPoints: non-negative.
	if n.MasteryPoints < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "mastery_points",
			Message: fmt.Sprintf("must be non-negative, got %d", n.MasteryPoints),
		})
	}

	// Metadata: must be valid JSON if present.
	if len(n.Metadata) > 0 && !json.Valid(n.Metadata) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "metadata",
			Message: "contains invalid JSON",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateEdge checks an Edge for constraint violations. Endpoint
// existence and ownership are storage-level checks and are not covered here.
func ValidateEdge(e *Edge) error {
	var ve ValidationError

	if strings.TrimSpace(e.FromNodeID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "from_node_id", Message: "is required"})
	}
	if strings.TrimSpace(e.ToNodeID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "to_node_id", Message: "is required"})
	}

	// Self-loops are never valid regardless of type.
	if e.FromNodeID != "" && e.FromNodeID == e.ToNodeID {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "to_node_id",
			Message: "must differ from from_node_id",
		})
	}

	// Type: must be a valid enum value (closed set).
	if !e.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "type",
			Message: fmt.Sprintf("invalid value %q", e.Type),
		})
	}

	// Metadata: must be valid JSON if present.
	if len(e.Metadata) > 0 && !json.Valid(e.Metadata) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "metadata",
			Message: "contains invalid JSON",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
