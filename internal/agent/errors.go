package agent

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for agent runtime operations.
var (
	ErrToolNotFound = errors.New("tool not found")
	ErrToolTimeout  = errors.New("tool execution timed out")
	ErrToolPanic    = errors.New("tool panicked")
)

// ToolErrorType categorizes a tool execution failure so DISPATCH_TOOLS can
// decide whether the loop should keep going or whether the failure is
// worth calling out distinctly in the tool_result content.
type ToolErrorType string

const (
	ToolErrorNotFound     ToolErrorType = "not_found"
	ToolErrorInvalidInput ToolErrorType = "invalid_input"
	ToolErrorTimeout      ToolErrorType = "timeout"
	ToolErrorNetwork      ToolErrorType = "network"
	ToolErrorPermission   ToolErrorType = "permission"
	ToolErrorBlocked      ToolErrorType = "blocked"
	ToolErrorExecution    ToolErrorType = "execution"
	ToolErrorPanic        ToolErrorType = "panic"
	ToolErrorUnknown      ToolErrorType = "unknown"
)

// ToolError is the ToolError kind of §7: a handler exception, schema
// mismatch, blocked command, SSRF, or path traversal. It is always
// wrapped into a tool_result with is_error=true; the loop continues.
type ToolError struct {
	Type       ToolErrorType
	ToolName   string
	ToolCallID string
	Message    string
	Cause      error
}

func (e *ToolError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[tool:%s]", e.Type))
	if e.ToolName != "" {
		parts = append(parts, e.ToolName)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *ToolError) Unwrap() error { return e.Cause }

// NewToolError classifies cause and wraps it for a given tool.
func NewToolError(toolName string, cause error) *ToolError {
	err := &ToolError{ToolName: toolName, Cause: cause, Type: ToolErrorUnknown}
	if cause != nil {
		err.Message = cause.Error()
		err.Type = classifyToolError(cause)
	}
	return err
}

func classifyToolError(err error) ToolErrorType {
	if err == nil {
		return ToolErrorUnknown
	}
	if errors.Is(err, ErrToolNotFound) {
		return ToolErrorNotFound
	}
	if errors.Is(err, ErrToolTimeout) {
		return ToolErrorTimeout
	}
	if errors.Is(err, ErrToolPanic) {
		return ToolErrorPanic
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "blocked"):
		return ToolErrorBlocked
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return ToolErrorTimeout
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"), strings.Contains(msg, "dns"), strings.Contains(msg, "refused"):
		return ToolErrorNetwork
	case strings.Contains(msg, "permission"), strings.Contains(msg, "forbidden"), strings.Contains(msg, "traversal"):
		return ToolErrorPermission
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "required"), strings.Contains(msg, "missing"):
		return ToolErrorInvalidInput
	default:
		return ToolErrorExecution
	}
}

// IsToolError reports whether err is or wraps a *ToolError.
func IsToolError(err error) bool {
	var toolErr *ToolError
	return errors.As(err, &toolErr)
}

// ConfigError is the ConfigError kind of §7: missing required keys or
// invalid JSON. Fatal at startup; falls back to defaults at request time
// where safe (e.g. a per-tool schema failing to compile falls back to a
// shape check rather than aborting every request).
type ConfigError struct {
	Component string
	Message   string
	Cause     error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error in %s: %s: %v", e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// SessionCorruption is the SessionCorruption kind of §7: an unparseable
// line in a session file. session.Store.Load does not return it: Load
// skips such lines, logs a warning, and returns the entries it could
// parse, so a corrupt line never fails the turn.
type SessionCorruption struct {
	Path string
	Line int
	Raw  string
}

func (e *SessionCorruption) Error() string {
	return fmt.Sprintf("session %s: unparseable line %d: %q", e.Path, e.Line, e.Raw)
}

// LoopPhase names a state in the tool-loop state machine (§4.5).
type LoopPhase string

const (
	PhaseInit          LoopPhase = "init"
	PhasePrepare       LoopPhase = "prepare"
	PhaseCallModel     LoopPhase = "call_model"
	PhaseDispatchTools LoopPhase = "dispatch_tools"
	PhaseFinalize      LoopPhase = "finalize"
)

// LoopError carries the phase and iteration an unrecoverable failure
// occurred at, for logging; it is never itself returned to the channel
// caller (per §7, the caller always receives a string reply).
type LoopError struct {
	Phase     LoopPhase
	Iteration int
	Message   string
	Cause     error
}

func (e *LoopError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("loop error at %s (iteration %d): %v", e.Phase, e.Iteration, e.Cause)
	}
	return fmt.Sprintf("loop error at %s (iteration %d): %s", e.Phase, e.Iteration, e.Message)
}

func (e *LoopError) Unwrap() error { return e.Cause }
