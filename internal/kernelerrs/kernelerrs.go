// Package kernelerrs defines the typed errors the kernel's launcher returns
// when a script cannot be loaded. It exists as its own package so both the
// kernel (which produces these errors) and the interpreter (which reports
// them to the user) can depend on it without depending on each other.
package kernelerrs

import (
	"errors"
	"fmt"
)

// ErrStackFull means the interpreter's nested 'run'/'exec' depth limit was
// reached; the kernel aborts whatever batch is in flight in response.
var ErrStackFull = errors.New("maximum script recursion depth reached")

// NotFoundError means a script file named in an 'exec' command does not
// exist (os.Stat on its name fails).
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("script %q not found", e.Name)
}

// TooLargeError means a script needs more pages than RAM has frames.
type TooLargeError struct {
	Name     string
	RAMSize  int
	Requires int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("script %q could not be loaded: it has more than %d instructions", e.Name, e.RAMSize)
}

// NoVictimError means a page fault during preloading found no free frame
// and no victim frame that the faulting PCB did not already own.
type NoVictimError struct {
	Name string
}

func (e *NoVictimError) Error() string {
	return fmt.Sprintf("script %q could not be loaded: a victim frame could not be found", e.Name)
}
