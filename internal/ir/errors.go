package ir

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorKind categorizes resolution and emission failures. Every kind aborts
// the generation run; the transform is deterministic so nothing is retried.
type ErrorKind string

const (
	UnresolvedReference         ErrorKind = "UnresolvedReference"
	SchemaCycleWithoutName      ErrorKind = "SchemaCycleWithoutName"
	UnsupportedSchema           ErrorKind = "UnsupportedSchema"
	UnsupportedFormat           ErrorKind = "UnsupportedFormat"
	UnsupportedContentType      ErrorKind = "UnsupportedContentType"
	MissingParameterSchema      ErrorKind = "MissingParameterSchema"
	MultipleRequestContentTypes ErrorKind = "MultipleRequestContentTypes"
	MultipartBodyMustBeObject   ErrorKind = "MultipartBodyMustBeObject"
	// UnhandledIrVariant means an emitter is missing a case: a bug, not bad input.
	UnhandledIrVariant ErrorKind = "UnhandledIrVariant"
)

// Error is a typed generation failure. Context such as the schema path or
// operation is attached by wrapping.
type Error struct {
	Kind    ErrorKind
	Subject string
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
}

// Errorf builds an *Error with a stack trace attached.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return errors.WithStack(&Error{Kind: kind, Subject: fmt.Sprintf(format, args...)})
}

// KindOf extracts the ErrorKind from err, looking through wraps.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Unhandled reports an emitter that met a kind it has no rendering for.
func Unhandled(target string, k Kind) error {
	return Errorf(UnhandledIrVariant, "%s emitter: %T", target, k)
}
