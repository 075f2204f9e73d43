package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures crossing component boundaries.
type ErrorKind string

const (
	// KindUpstreamUnavailable means a billing, inventory or metrics call failed.
	KindUpstreamUnavailable ErrorKind = "UpstreamUnavailable"
	// KindActionFailed means a mutating cleanup action failed.
	KindActionFailed ErrorKind = "ActionFailed"
	// KindPersistenceFailed means a report could not be written.
	KindPersistenceFailed ErrorKind = "PersistenceFailed"
	// KindNotificationFailed means a notification could not be published.
	KindNotificationFailed ErrorKind = "NotificationFailed"
	// KindUnclassified covers every other error reaching a pipeline boundary.
	KindUnclassified ErrorKind = "Unclassified"
)

// ErrResourceGone is wrapped by action implementations when the target no
// longer exists. Callers treat it as a soft failure.
var ErrResourceGone = errors.New("resource no longer exists")

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with kind and op. It returns nil when err is nil.
func NewError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnclassified when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}
