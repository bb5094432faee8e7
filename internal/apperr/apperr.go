package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Kind classifies failures surfaced by the API pipeline.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidContentType
	KindMalformedJSON
	KindRouteNotFound
	KindMethodNotAllowed
	KindNotFound
	KindInvalidInput
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidContentType:
		return "InvalidContentType"
	case KindMalformedJSON:
		return "MalformedJson"
	case KindRouteNotFound:
		return "RouteNotFound"
	case KindMethodNotAllowed:
		return "MethodNotAllowed"
	case KindNotFound:
		return "NotFound"
	case KindInvalidInput:
		return "InvalidInput"
	case KindConflict:
		return "Conflict"
	default:
		return "Internal"
	}
}

// StatusCode maps the kind to the HTTP status it is rendered with.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidContentType, KindMalformedJSON, KindInvalidInput:
		return http.StatusBadRequest
	case KindRouteNotFound, KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

const (
	msgInvalidContentType = "The request content type is invalid. It must be application/json"
	msgMalformedJSON      = "The request content is not valid json."
)

// Error is a classified failure that remembers where it was raised.
type Error struct {
	kind      Kind
	msg       string
	err       error
	exception string
	file      string
	line      int
	stack     string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	if e.err != nil {
		return e.err.Error()
	}
	return e.kind.String()
}

// Kind returns the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the client facing message.
func (e *Error) Message() string { return e.Error() }

// Exception returns the name the failure is reported under.
func (e *Error) Exception() string {
	if e.exception != "" {
		return e.exception
	}
	return e.kind.String()
}

// File returns the source file the error was constructed in.
func (e *Error) File() string { return e.file }

// Line returns the source line the error was constructed on.
func (e *Error) Line() int { return e.line }

// Stack returns the captured call stack, one frame per line.
func (e *Error) Stack() string { return e.stack }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.err }

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int { return e.kind.StatusCode() }

// InvalidContentType reports a mutating request that is not declared as JSON.
func InvalidContentType() *Error {
	return newError(KindInvalidContentType, msgInvalidContentType, nil)
}

// MalformedJSON reports a body that does not decode to a JSON value.
func MalformedJSON(cause error) *Error {
	return newError(KindMalformedJSON, msgMalformedJSON, cause)
}

// RouteNotFound reports a path that no route matches.
func RouteNotFound(method, path string) *Error {
	return newError(KindRouteNotFound, fmt.Sprintf("No route found for \"%s %s\"", method, path), nil)
}

// MethodNotAllowed reports a path matched only under other methods.
func MethodNotAllowed(method, path string, allowed []string) *Error {
	msg := fmt.Sprintf("No route found for \"%s %s\": Method Not Allowed (Allow: %s)", method, path, strings.Join(allowed, ", "))
	return newError(KindMethodNotAllowed, msg, nil)
}

// NotFound reports a missing resource.
func NotFound(cause error, msg string) *Error {
	return newError(KindNotFound, msg, cause)
}

// Conflict reports a resource that already exists.
func Conflict(cause error, msg string) *Error {
	return newError(KindConflict, msg, cause)
}

// InvalidInput reports a request the domain refused.
func InvalidInput(cause error, msg string) *Error {
	return newError(KindInvalidInput, msg, cause)
}

// Internal wraps an unclassified failure.
func Internal(cause error) *Error {
	return newError(KindInternal, "", cause)
}

// Recovered converts a recovered panic value into an Internal error. It must
// be called from the deferred function that recovered, so the panicking frame
// is still on the stack.
func Recovered(v any) *Error {
	cause, ok := v.(error)
	if !ok {
		cause = fmt.Errorf("%v", v)
	}

	frames := callers(2)
	e := &Error{
		kind:      KindInternal,
		err:       cause,
		exception: TypeName(v),
	}

	// Drop everything up to and including runtime.gopanic, then the runtime
	// frames a runtime error panics through.
	for i, f := range frames {
		if f.Function == "runtime.gopanic" {
			frames = frames[i+1:]
			break
		}
	}
	for len(frames) > 1 && strings.HasPrefix(frames[0].Function, "runtime.") {
		frames = frames[1:]
	}
	if len(frames) > 0 {
		e.file, e.line = frames[0].File, frames[0].Line
	}
	e.stack = formatFrames(frames)
	return e
}

// As reports whether err carries an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// TypeName returns the package qualified type of v without pointer markers.
func TypeName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}

// CaptureStack formats the stack of the calling goroutine, skipping skip
// frames above the caller.
func CaptureStack(skip int) string {
	return formatFrames(callers(skip + 3))
}

func newError(kind Kind, msg string, cause error) *Error {
	// 0 runtime.Callers, 1 callers, 2 newError, 3 constructor, 4 origin.
	frames := callers(4)
	e := &Error{kind: kind, msg: msg, err: cause}
	if len(frames) > 0 {
		e.file, e.line = frames[0].File, frames[0].Line
	}
	e.stack = formatFrames(frames)
	return e
}

func callers(skip int) []runtime.Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	it := runtime.CallersFrames(pcs[:n])

	var frames []runtime.Frame
	for {
		f, more := it.Next()
		frames = append(frames, f)
		if !more {
			break
		}
	}
	return frames
}

func formatFrames(frames []runtime.Frame) string {
	var b strings.Builder
	for i, f := range frames {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "#%d %s(%d): %s", i, f.File, f.Line, f.Function)
	}
	return b.String()
}
