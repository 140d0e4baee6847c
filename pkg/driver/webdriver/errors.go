package webdriver

import (
	"fmt"

	"github.com/devicelab-dev/webquery/pkg/core"
)

// W3C error codes mapped onto the core taxonomy. Codes not listed here are
// reported as plain errors.
var w3cErrors = map[string]*core.ExecutionError{
	"no such element":         core.ErrNoSuchElement,
	"stale element reference": core.ErrNoSuchElement,
	"javascript error":        core.ErrJavaScript,
	"script timeout":          core.ErrScriptTimeout,
	"timeout":                 core.ErrScriptTimeout,
	"invalid session id":      core.ErrNoSession,
	"no such window":          core.ErrNoSession,
	"invalid argument":        core.ErrInvalidArgument,
	"invalid selector":        core.ErrInvalidArgument,
	"unsupported operation":   core.ErrSelectorNotSupported,
}

// JSON Wire Protocol status codes still returned by older grids.
var legacyStatus = map[int]string{
	6:  "invalid session id",
	7:  "no such element",
	10: "stale element reference",
	17: "javascript error",
	21: "timeout",
	28: "script timeout",
	32: "invalid selector",
}

// responseError extracts the error carried by a WebDriver response, if any.
func responseError(result map[string]interface{}) error {
	code, message := "", ""
	if value, ok := result["value"].(map[string]interface{}); ok {
		code, _ = value["error"].(string)
		message, _ = value["message"].(string)
	}
	if code == "" {
		status, ok := result["status"].(float64)
		if !ok || status == 0 {
			return nil
		}
		code = legacyStatus[int(status)]
		if code == "" {
			code = fmt.Sprintf("status %d", int(status))
		}
	}

	details := map[string]interface{}{"webdriverError": code}
	base, ok := w3cErrors[code]
	if !ok {
		return fmt.Errorf("%s: %s", code, message)
	}
	if message == "" {
		message = code
	}
	return base.WithMessage(message).WithDetails(details)
}
