package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/logger"
)

// Defaults for Ensure.
const (
	DefaultTimeout      = 3 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// State is a step of the prerequisite check for one library.
type State int

const (
	StateUnchecked State = iota
	StatePresent
	StateAbsent
	StateAwaiting
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StatePresent:
		return "present"
	case StateAbsent:
		return "absent"
	case StateAwaiting:
		return "awaiting"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Options tunes Ensure. Zero values fall back to the defaults.
type Options struct {
	URI          string        // overrides Loader.LibraryURI
	Timeout      time.Duration // bounded wait after injection
	PollInterval time.Duration

	// OnTransition, when set, is called for every state change.
	OnTransition func(l Loader, from, to State)
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// Check runs the loader's check script. A nil or non-boolean result counts as absent.
func Check(ctx context.Context, exec core.ScriptExecutor, l Loader) (bool, error) {
	raw, err := exec.ExecuteScript(ctx, l.CheckScript())
	if err != nil {
		return false, fmt.Errorf("check %s: %w", l.Name, err)
	}
	present, _ := raw.(bool)
	return present, nil
}

// CheckSupport fails with core.ErrSelectorNotSupported when the page has no
// native querySelectorAll.
func CheckSupport(ctx context.Context, exec core.ScriptExecutor) error {
	ok, err := Check(ctx, exec, QuerySelectorSupport())
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrSelectorNotSupported
	}
	return nil
}

// Ensure makes sure the library described by l is available on the page,
// injecting it when absent and polling until it shows up or opts.Timeout
// elapses. A library that is already present is never injected again.
func Ensure(ctx context.Context, exec core.ScriptExecutor, l Loader, opts Options) error {
	opts = opts.withDefaults()
	state := StateUnchecked
	move := func(to State) {
		logger.Debug("loader %s: %s -> %s", l.Name, state, to)
		if opts.OnTransition != nil {
			opts.OnTransition(l, state, to)
		}
		state = to
	}

	present, err := Check(ctx, exec, l)
	if err != nil {
		return err
	}
	if present {
		move(StatePresent)
		return nil
	}
	move(StateAbsent)

	uri := opts.URI
	if uri == "" {
		uri = l.LibraryURI
	}
	load, err := l.LoadScript(uri)
	if err != nil {
		return err
	}
	if _, err := exec.ExecuteScript(ctx, load); err != nil {
		return fmt.Errorf("inject %s from %s: %w", l.Name, uri, err)
	}
	logger.Info("injected %s from %s", l.Name, uri)
	move(StateAwaiting)

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		present, err := Check(waitCtx, exec, l)
		if err == nil && present {
			move(StatePresent)
			return nil
		}
		if err != nil {
			// The page may still be evaluating the injected script.
			lastErr = err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			move(StateTimedOut)
			timeoutErr := core.ErrLibraryLoadTimeout.
				WithMessage(fmt.Sprintf("%s did not load within %s", l.Name, opts.Timeout)).
				WithDetails(map[string]interface{}{
					"loader":  l.Name,
					"uri":     uri,
					"timeout": opts.Timeout.String(),
				})
			if lastErr != nil {
				return timeoutErr.WithCause(lastErr)
			}
			return timeoutErr
		case <-ticker.C:
		}
	}
}
