// Package jsengine runs browser scripts without a browser. It checks script
// syntax with goja and provides Page, a small simulated document that can
// evaluate selector scripts offline.
package jsengine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/dop251/goja"
)

// Engine wraps a goja runtime with the globals a browser script expects.
type Engine struct {
	runtime   *goja.Runtime
	variables map[string]interface{}
	mu        sync.Mutex
}

// New creates a new JS engine instance
func New() *Engine {
	e := &Engine{
		runtime:   goja.New(),
		variables: make(map[string]interface{}),
	}

	e.setupBuiltins()
	return e
}

// setupBuiltins registers all built-in functions and objects
func (e *Engine) setupBuiltins() {
	e.setupConsole()

	// Scripts address globals through window.
	e.runtime.Set("window", e.runtime.GlobalObject())
}

// setupConsole routes console.log, console.error, etc. to the debug log.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			logger.Debug("console.%s: %v", level, args)
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc("log"))
	console.Set("info", makeConsoleFunc("info"))
	console.Set("error", makeConsoleFunc("error"))
	console.Set("warn", makeConsoleFunc("warn"))
	e.runtime.Set("console", console)
}

// SetVariable sets a variable accessible in JS as a global
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.variables[name] = value
	e.runtime.Set(name, value)
}

// Eval evaluates a JavaScript expression and returns the exported result
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, scriptError(err)
	}

	return result.Export(), nil
}

// RunScript runs a script for its side effects
func (e *Engine) RunScript(script string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.runtime.RunString(script); err != nil {
		return scriptError(err)
	}
	return nil
}

// Close interrupts any script still running. Safe to call multiple times.
func (e *Engine) Close() {
	e.runtime.Interrupt("engine closed")
}

// Check reports whether script is a syntactically valid function body, the
// form every script sent to a ScriptExecutor takes.
func Check(script string) error {
	if _, err := goja.Compile("script.js", wrapFunction(script), false); err != nil {
		return core.ErrJavaScript.
			WithMessage(fmt.Sprintf("script does not compile: %v", err)).
			WithCause(err)
	}
	return nil
}

// CheckExpression reports whether expr is a valid JavaScript expression.
func CheckExpression(expr string) error {
	return Check("return (" + expr + "\n);")
}

func wrapFunction(body string) string {
	return "(function() {\n" + body + "\n})"
}

// scriptError maps goja failures onto the error taxonomy.
func scriptError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return core.ErrScriptTimeout.WithMessage("script interrupted").WithCause(cause)
		}
		return core.ErrScriptTimeout.WithMessage(fmt.Sprintf("script interrupted: %v", interrupted.Value()))
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return core.ErrJavaScript.WithMessage(exception.Error()).WithCause(err)
	}
	return core.ErrJavaScript.WithMessage(fmt.Sprintf("JS runtime error: %v", err)).WithCause(err)
}
