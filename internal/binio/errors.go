package binio

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind int

const (
	KindTagMismatch Kind = iota + 1
	KindTruncated
	KindOffsetOutOfBounds
	KindCountMismatch
	KindBadMagic
	KindUnknownType
)

func (k Kind) String() string {
	switch k {
	case KindTagMismatch:
		return "tag mismatch"
	case KindTruncated:
		return "truncated"
	case KindOffsetOutOfBounds:
		return "offset out of bounds"
	case KindCountMismatch:
		return "count mismatch"
	case KindBadMagic:
		return "bad magic"
	case KindUnknownType:
		return "unknown type"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is. A *DecodeError matches the sentinel of its Kind.
var (
	ErrTagMismatch       = &DecodeError{Kind: KindTagMismatch, Offset: -1}
	ErrTruncated         = &DecodeError{Kind: KindTruncated, Offset: -1}
	ErrOffsetOutOfBounds = &DecodeError{Kind: KindOffsetOutOfBounds, Offset: -1}
	ErrCountMismatch     = &DecodeError{Kind: KindCountMismatch, Offset: -1}
	ErrBadMagic          = &DecodeError{Kind: KindBadMagic, Offset: -1}
	ErrUnknownType       = &DecodeError{Kind: KindUnknownType, Offset: -1}
)

// DecodeError is the single structured failure reported by every decoder.
type DecodeError struct {
	Kind     Kind
	Offset   int
	Expected any
	Actual   any
	Err      error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.String()
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at 0x%X", msg, e.Offset)
	}
	if e.Expected != nil || e.Actual != nil {
		msg = fmt.Sprintf("%s: expected %v, got %v", msg, e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches any *DecodeError of the same Kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

// NewError builds a DecodeError at offset.
func NewError(kind Kind, offset int, expected, actual any) *DecodeError {
	return &DecodeError{
		Kind:     kind,
		Offset:   offset,
		Expected: expected,
		Actual:   actual,
	}
}

// KindOf returns the Kind of the first DecodeError in err's chain, or 0.
func KindOf(err error) Kind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
