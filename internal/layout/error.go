package layout

import (
	"fmt"
)

// LayoutErrorKind enumerates types of type-table layout errors.
type LayoutErrorKind uint8

const (
	// LayoutErrUnresolved indicates an interface reference that was never resolved.
	LayoutErrUnresolved LayoutErrorKind = iota + 1
	// LayoutErrIndexOverflow indicates a type table larger than the wire index allows.
	LayoutErrIndexOverflow
)

// LayoutError represents an error during type-table layout.
type LayoutError struct {
	Kind      LayoutErrorKind
	Protocol  string
	Interface string
	Message   string
	Argument  string // for LayoutErrUnresolved
	Err       error  // for LayoutErrIndexOverflow
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	at := fmt.Sprintf("%s::%s.%s", e.Protocol, e.Interface, e.Message)
	switch e.Kind {
	case LayoutErrUnresolved:
		return fmt.Sprintf("argument %q of %s has an unresolved interface reference", e.Argument, at)
	case LayoutErrIndexOverflow:
		return fmt.Sprintf("type table index overflow at %s: %v", at, e.Err)
	default:
		return fmt.Sprintf("layout error kind=%d at %s", e.Kind, at)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
