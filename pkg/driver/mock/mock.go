// Package mock provides a script executor for testing without a browser.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
)

// Executor is a scripted implementation of core.ScriptExecutor. It records
// every script it receives.
type Executor struct {
	// Configuration
	Config Config

	// Internal state
	mu      sync.Mutex
	calls   int
	scripts []string
}

// Config configures mock executor behavior.
type Config struct {
	// Delegate runs scripts no response matches. Nil answers them with nil.
	Delegate core.ScriptExecutor
	// Responses answer scripts containing Match; the first match wins.
	Responses []Response
	// FailOnCall makes call N fail (1-indexed). 0 = never fail.
	FailOnCall int
	// Delay adds artificial latency per call
	Delay time.Duration
}

// Response is a canned answer.
type Response struct {
	Match string
	Value interface{}
	Err   error
}

// New creates a new mock executor.
func New(cfg Config) *Executor {
	return &Executor{Config: cfg}
}

// Recorder returns an executor that records scripts and passes them to exec.
func Recorder(exec core.ScriptExecutor) *Executor {
	return New(Config{Delegate: exec})
}

// ExecuteScript records script and answers it.
func (e *Executor) ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.scripts = append(e.scripts, script)
	cfg := e.Config
	e.mu.Unlock()

	// Simulate latency
	if cfg.Delay > 0 {
		t := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	if cfg.FailOnCall > 0 && call == cfg.FailOnCall {
		return nil, core.ErrJavaScript.WithMessage(fmt.Sprintf("mock failure on call %d", call))
	}

	for _, r := range cfg.Responses {
		if strings.Contains(script, r.Match) {
			return r.Value, r.Err
		}
	}
	if cfg.Delegate != nil {
		return cfg.Delegate.ExecuteScript(ctx, script, args...)
	}
	return nil, nil
}

// Scripts returns a copy of the scripts received so far.
func (e *Executor) Scripts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.scripts...)
}

// Last returns the most recent script, or "" before the first call.
func (e *Executor) Last() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.scripts) == 0 {
		return ""
	}
	return e.scripts[len(e.scripts)-1]
}

// Reset forgets recorded scripts and restarts the call count.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = 0
	e.scripts = nil
}
