package common

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type ErrorCode int

const (
	// PlanTooDeep indicates that a plan tree exceeded the maximum number of
	// linear traversal steps.
	PlanTooDeep ErrorCode = iota
	// UnsupportedPlanNode indicates that a plan node appeared where the
	// pipeline compiler expects a physical operator it knows how to build.
	UnsupportedPlanNode
	// SchemaUnavailable is returned when a schema is requested from a plan
	// variant that cannot derive one (Explain, SetVariable).
	SchemaUnavailable
	// InvalidJoinOperator indicates a join operator that has no join kind.
	InvalidJoinOperator
	// InvalidPlanBuilder indicates that a plan builder precondition was not met.
	InvalidPlanBuilder
	// ProcessorCreation indicates that a processor factory failed while
	// compiling a pipeline.
	ProcessorCreation
	// InvalidPipeline indicates an operation on a pipeline in a state that
	// does not allow it (e.g. executing a pipeline that still has many lanes).
	InvalidPipeline
	// InvalidSetting indicates an unknown setting name or a malformed value.
	InvalidSetting
	// DuplicateObjectError indicates an attempt to register a table that
	// already exists in the catalog.
	DuplicateObjectError
	// NoSuchObjectError indicates a request for a database or table that does
	// not exist in the catalog.
	NoSuchObjectError
)

func (ec ErrorCode) String() string {
	switch ec {
	case PlanTooDeep:
		return "PlanTooDeep"
	case UnsupportedPlanNode:
		return "UnsupportedPlanNode"
	case SchemaUnavailable:
		return "SchemaUnavailable"
	case InvalidJoinOperator:
		return "InvalidJoinOperator"
	case InvalidPlanBuilder:
		return "InvalidPlanBuilder"
	case ProcessorCreation:
		return "ProcessorCreation"
	case InvalidPipeline:
		return "InvalidPipeline"
	case InvalidSetting:
		return "InvalidSetting"
	case DuplicateObjectError:
		return "DuplicateObjectError"
	case NoSuchObjectError:
		return "NoSuchObjectError"
	}
	return "unknown"
}

// Error is the custom error type for the query engine.
// It wraps a specific ErrorCode with a detailed message, so that callers (the
// planner or the execution driver) can decide whether to re-plan or surface the
// failure without parsing strings.
type Error struct {
	Code      ErrorCode
	ErrString string
}

func (e Error) Error() string {
	return fmt.Sprintf("err: %s; msg: %s", e.Code.String(), e.ErrString)
}

// NewError builds an Error and attaches the current stack trace.
func NewError(code ErrorCode, format string, args ...any) error {
	return errors.WithStackDepth(Error{Code: code, ErrString: fmt.Sprintf(format, args...)}, 1)
}

// IsCode reports whether any error in err's chain is an Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
