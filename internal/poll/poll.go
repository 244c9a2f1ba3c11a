// Package poll implements a generic poll-until-terminal-state protocol for
// asynchronous Azure control-plane operations. Each operation kind carries an
// explicit status vocabulary; a status outside the vocabulary is a protocol
// error, distinct from an operation failure.
package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// State is the classification of a raw status string.
type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
	StateUnrecognized
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unrecognized"
	}
}

// Classifier maps a raw status string to a State. Implementations must be
// pure: no I/O, no timing.
type Classifier func(status string) State

// Status is one observation of an asynchronous operation.
type Status struct {
	Value     string
	Exception string
}

// Operation is a handle to an in-flight asynchronous operation. Fetch
// re-queries the current status; it is called exactly once per poll
// iteration. An Operation must not be reused after Wait returns.
type Operation struct {
	ID       string
	Fetch    func(ctx context.Context) (Status, error)
	Classify Classifier
}

// FailureError reports an operation that reached a failure-class terminal
// state, or reported an exception.
type FailureError struct {
	Op        string
	Status    string
	Exception string
}

func (e *FailureError) Error() string {
	if e.Exception != "" {
		return fmt.Sprintf("%s failed with status %q: %s", e.Op, e.Status, e.Exception)
	}
	return fmt.Sprintf("%s failed with status %q", e.Op, e.Status)
}

// ProtocolError reports a status outside the operation's vocabulary. Unknown
// is neither success nor failure, and waiting on it risks looping forever.
type ProtocolError struct {
	Op     string
	Status string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s returned unrecognized status %q", e.Op, e.Status)
}

// Poller drives an Operation to a terminal state, sleeping a fixed interval
// between non-terminal observations. No backoff, no jitter.
type Poller struct {
	Interval time.Duration
	Logger   zerolog.Logger

	// Sleep is called between non-terminal observations; nil means
	// time.Sleep. Tests substitute it to run without real delays.
	Sleep func(time.Duration)
}

// New returns a Poller with the given fixed interval.
func New(interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{Interval: interval, Logger: logger}
}

// Wait polls op until a terminal state. It returns nil on success, a
// *FailureError on a failure-class terminal state or reported exception, a
// *ProtocolError on an unrecognized status, and a wrapped fetch error if the
// status query itself fails. It never sleeps after observing a terminal
// status.
func (p *Poller) Wait(ctx context.Context, op Operation) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	for {
		st, err := op.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("query %s: %w", op.ID, err)
		}
		switch op.Classify(st.Value) {
		case StateSucceeded:
			if st.Exception != "" {
				return &FailureError{Op: op.ID, Status: st.Value, Exception: st.Exception}
			}
			p.Logger.Info().Str("operation", op.ID).Str("status", st.Value).Msg("operation succeeded")
			return nil
		case StateFailed:
			return &FailureError{Op: op.ID, Status: st.Value, Exception: st.Exception}
		case StateUnrecognized:
			return &ProtocolError{Op: op.ID, Status: st.Value}
		}
		p.Logger.Info().Str("operation", op.ID).Str("status", st.Value).Dur("interval", p.Interval).Msg("operation in progress")
		if err := ctx.Err(); err != nil {
			return err
		}
		sleep(p.Interval)
	}
}
