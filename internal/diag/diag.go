// Package diag turns fatal failures into diagnostics the host can read.
//
// Install is called once at process start. Host entry points then defer
// Recover; a panic raised inside the call is written to the installed sink
// and returned as a *Diagnostic instead of terminating the process.
// Without Install, Recover re-panics.
package diag

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
)

// ErrAlreadyInstalled is returned by a second call to Install
var ErrAlreadyInstalled = errors.New("diagnostic hook already installed")

var (
	mu   sync.RWMutex
	sink io.Writer
)

// Install sets the writer diagnostics are reported to. It may be called
// once per process; later calls leave the first sink in place.
func Install(w io.Writer) error {
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		return ErrAlreadyInstalled
	}
	if w == nil {
		w = io.Discard
	}
	sink = w
	return nil
}

// Installed reports whether Install has run
func Installed() bool {
	mu.RLock()
	defer mu.RUnlock()
	return sink != nil
}

// Diagnostic describes a fatal failure recovered at the host boundary
type Diagnostic struct {
	Op    string
	Value any
	Stack []byte
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: fatal: %v", d.Op, d.Value)
}

// Unwrap exposes the panic value when it is an error
func (d *Diagnostic) Unwrap() error {
	if err, ok := d.Value.(error); ok {
		return err
	}
	return nil
}

// Recover must be deferred directly by a host entry point. It converts a
// panic into a *Diagnostic stored in *errp.
func Recover(op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}

	mu.RLock()
	w := sink
	mu.RUnlock()
	if w == nil {
		panic(r)
	}

	d := &Diagnostic{Op: op, Value: r, Stack: debug.Stack()}
	fmt.Fprintf(w, "%s\n%s", d.Error(), d.Stack)
	if errp != nil {
		*errp = d
	}
}

// Guard runs fn and reports a panic inside it as a *Diagnostic
func Guard(op string, fn func() error) (err error) {
	defer Recover(op, &err)
	return fn()
}

// reset clears the installed sink. Tests only.
func reset() {
	mu.Lock()
	sink = nil
	mu.Unlock()
}
