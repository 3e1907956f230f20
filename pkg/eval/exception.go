package eval

import "fmt"

// SpawnStatus is the exit status of a pipeline whose command could not be
// started.
const SpawnStatus = 127

// SpawnError is returned when an external command cannot be started.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("Error spawning %s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Status returns the exit status reported for the failed pipeline.
func (e *SpawnError) Status() int { return SpawnStatus }

// UnsetError is returned from ${name:?message} when name is unset and the
// exit hook of the State returns.
type UnsetError struct {
	Name    string
	Message string
}

func (e *UnsetError) Error() string {
	return e.Name + ": " + e.Message
}

// RedirectError is returned when the input of a redirect cannot be written to
// the command reading it.
type RedirectError struct {
	Target string
	Err    error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirecting from %s: %v", e.Target, e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }
