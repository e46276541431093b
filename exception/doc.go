// Package exception is the single funnel for turning a foreign-detected
// problem into an engine-visible exception.
//
// Constructors build typed error values without throwing; Throw installs a
// value as the pending exception of the current execution context. Every
// other bridge layer surfaces failure through Go error returns and never
// raises engine exceptions on its own.
package exception
