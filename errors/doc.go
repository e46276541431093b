// Package errors provides structured error types for the engine-bridge library.
//
// Errors are categorized by Phase (which bridge layer the error occurred in)
// and Kind (error category). The Error type includes rich context: field
// path, offending value, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseClass, errors.KindRegistration).
//		Path("Point", "constructor").
//		Detail("class name must be valid UTF-8").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidUTF8(errors.PhaseConvert, data)
//	err := errors.Dropped(errors.PhaseHandle, "persistent slot")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
