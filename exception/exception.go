package exception

import (
	"unicode/utf8"

	"github.com/wippyai/engine-bridge/engine"
)

// fallbackMessage replaces exception text that failed to decode, so a bad
// byte buffer can never leave the context without a thrown error.
const fallbackMessage = "an unknown engine bridge error occurred"

// Throw raises v as the pending exception in the current execution context.
// An active region must be open.
func Throw(r *engine.Region, v engine.Value) {
	r.Instance().SetPending(v)
}

// NewError constructs (but does not throw) a generic error value.
func NewError(r *engine.Region, msg string) engine.Value {
	return engine.NewErrorValue(r, engine.ErrPlain, msg)
}

// NewTypeError constructs a TypeError value.
func NewTypeError(r *engine.Region, msg string) engine.Value {
	return engine.NewErrorValue(r, engine.ErrType, msg)
}

// NewRangeError constructs a RangeError value.
func NewRangeError(r *engine.Region, msg string) engine.Value {
	return engine.NewErrorValue(r, engine.ErrRange, msg)
}

// ThrowFromUtf8 decodes raw text, builds a generic error, and throws it.
// Invalid byte content substitutes the fixed fallback message rather than
// leaving the context without a pending exception.
func ThrowFromUtf8(r *engine.Region, data []byte) {
	msg := fallbackMessage
	if utf8.Valid(data) {
		msg = string(data)
	}
	Throw(r, NewError(r, msg))
}

// IsError reports whether v carries the native-error tag.
func IsError(v engine.Value) bool {
	return v.IsError()
}
