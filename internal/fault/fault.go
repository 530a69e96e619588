// Package fault defines the error kinds a fusion run can produce and the
// report that aggregates the recoverable ones.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline problem.
type Kind int

const (
	// DataUnavailable means the market data source returned nothing. Fatal.
	DataUnavailable Kind = iota + 1
	// ScrapeSchemaError means no statement table or no year header was found. Fatal.
	ScrapeSchemaError
	// PartialDataWarning means a source was missing or short and was padded.
	PartialDataWarning
	// NumericCoercionFailure means a scraped cell could not be parsed as a number.
	NumericCoercionFailure
)

func (k Kind) String() string {
	switch k {
	case DataUnavailable:
		return "DataUnavailable"
	case ScrapeSchemaError:
		return "ScrapeSchemaError"
	case PartialDataWarning:
		return "PartialDataWarning"
	case NumericCoercionFailure:
		return "NumericCoercionFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String. Unknown names yield 0.
func ParseKind(s string) Kind {
	for k := DataUnavailable; k <= NumericCoercionFailure; k++ {
		if k.String() == s {
			return k
		}
	}
	return 0
}

// Fatal reports whether a problem of this kind aborts the run.
func (k Kind) Fatal() bool {
	return k == DataUnavailable || k == ScrapeSchemaError
}

// Error is a classified pipeline error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind with a formatted cause.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. It returns nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// IsFatal reports whether err carries a fatal kind.
func IsFatal(err error) bool {
	return KindOf(err).Fatal()
}
