package canonizer

import (
	"context"
	"errors"
	"fmt"
)

// stderrLimit caps how much engine stderr is carried into an error.
const stderrLimit = 500

// Result carries the raw process outcome of one engine invocation. The
// caller decides what a non-zero exit means.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// FailureError describes a non-zero exit, naming the exit code and at
// most the first 500 chars of stderr. An empty subject drops the
// "on <subject>" clause.
func (r Result) FailureError(subject string) error {
	msg := "canonizer failed"
	if subject != "" {
		msg += " on " + subject
	}
	msg += fmt.Sprintf(" with exit code %d", r.ExitCode)
	if r.Stderr != "" {
		stderr := r.Stderr
		if len(stderr) > stderrLimit {
			stderr = stderr[:stderrLimit]
		}
		msg += ": " + stderr
	}
	return errors.New(msg)
}

// Engine is the capability boundary around the external transform engine.
// Stage code only ever sees this interface, so tests substitute a fake
// instead of spawning processes.
type Engine interface {
	Configure(Config) error
	// Transform feeds input to the engine's stdin for the named transform
	// metadata file and captures stdout/stderr.
	Transform(ctx context.Context, metaPath, input string) (Result, error)
	Close() error
}
