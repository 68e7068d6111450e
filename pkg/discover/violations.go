package discover

import (
	"strings"
)

// ViolationKind classifies why a raw query value was rejected.
type ViolationKind string

const (
	// RangeViolation means a value parsed but lies outside its field's domain.
	RangeViolation ViolationKind = "range_violation"
	// EnumViolation means a value isn't a member of its field's fixed set.
	EnumViolation ViolationKind = "enum_violation"
	// FormatViolation means a value couldn't be parsed into its field's type.
	FormatViolation ViolationKind = "format_violation"
	// CrossFieldViolation means two individually valid fields contradict
	// each other.
	CrossFieldViolation ViolationKind = "cross_field_violation"
)

// Violation describes one rejected field. Cross-field violations also name the
// field they conflict with.
type Violation struct {
	Field        string        `json:"field"`
	Kind         ViolationKind `json:"kind"`
	Message      string        `json:"message"`
	Value        string        `json:"value"`
	RelatedField string        `json:"related_field,omitempty"`
	RelatedValue string        `json:"related_value,omitempty"`
}

// ValidationFailure carries every violation found in one raw query, in the
// order the checks ran.
type ValidationFailure struct {
	Violations []Violation `json:"violations"`
}

func (f *ValidationFailure) Error() string {
	msgs := make([]string, len(f.Violations))
	for i, v := range f.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any violation of the given kind was recorded for field.
func (f *ValidationFailure) Has(field string, kind ViolationKind) bool {
	for _, v := range f.Violations {
		if v.Field == field && v.Kind == kind {
			return true
		}
	}
	return false
}

// Kinds returns the kind of each violation, in order.
func (f *ValidationFailure) Kinds() []ViolationKind {
	kinds := make([]ViolationKind, len(f.Violations))
	for i, v := range f.Violations {
		kinds[i] = v.Kind
	}
	return kinds
}
