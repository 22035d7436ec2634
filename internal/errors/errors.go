package errors

import (
	stderrors "errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"
)

// BuildError represents a failure (or warning) tied to a source file.
type BuildError struct {
	Component string
	File      string
	Line      int
	Column    int
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
	Err       error
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (be *BuildError) Error() string {
	msg := be.Message
	if be.Err != nil {
		if msg == "" {
			msg = be.Err.Error()
		} else {
			msg = msg + ": " + be.Err.Error()
		}
	}
	if be.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", be.File, be.Line, be.Column, be.Severity, msg)
	}
	return fmt.Sprintf("%s: %s: %s", be.File, be.Severity, msg)
}

// Unwrap returns the underlying cause.
func (be *BuildError) Unwrap() error {
	return be.Err
}

// ErrorCollector collects build errors from concurrent workers.
type ErrorCollector struct {
	buildErrors []BuildError
	errors      []error
	mutex       sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		buildErrors: make([]BuildError, 0),
		errors:      make([]error, 0),
	}
}

// Add adds a build error to the collector
func (ec *ErrorCollector) Add(err BuildError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	ec.buildErrors = append(ec.buildErrors, err)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetErrors returns all collected build errors sorted by file then line.
func (ec *ErrorCollector) GetErrors() []BuildError {
	ec.mutex.RLock()
	result := make([]BuildError, len(ec.buildErrors))
	copy(result, ec.buildErrors)
	ec.mutex.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].File != result[j].File {
			return result[i].File < result[j].File
		}
		return result[i].Line < result[j].Line
	})
	return result
}

// GetAllErrors returns all collected errors (build and general)
func (ec *ErrorCollector) GetAllErrors() []error {
	buildErrors := ec.GetErrors()

	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	allErrors := make([]error, 0, len(buildErrors)+len(ec.errors))
	for i := range buildErrors {
		allErrors = append(allErrors, &buildErrors[i])
	}
	allErrors = append(allErrors, ec.errors...)

	return allErrors
}

// HasErrors reports whether anything at error severity or above was collected.
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	if len(ec.errors) > 0 {
		return true
	}
	for _, be := range ec.buildErrors {
		if be.Severity >= ErrorSeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of collected entries of any severity.
func (ec *ErrorCollector) Count() int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.buildErrors) + len(ec.errors)
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.buildErrors = ec.buildErrors[:0]
	ec.errors = ec.errors[:0]
}

// GetErrorsByFile returns errors for a specific file
func (ec *ErrorCollector) GetErrorsByFile(file string) []BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var fileErrors []BuildError
	for _, err := range ec.buildErrors {
		if err.File == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// Err joins every collected error of error severity or above into a single
// error, or returns nil when there are none.
func (ec *ErrorCollector) Err() error {
	var errs []error
	for _, err := range ec.GetAllErrors() {
		var be *BuildError
		if stderrors.As(err, &be) && be.Severity < ErrorSeverityError {
			continue
		}
		errs = append(errs, err)
	}
	return stderrors.Join(errs...)
}

// ErrorOverlay renders the collected build errors as an HTML fragment that
// the dev server pushes to connected browsers.
func (ec *ErrorCollector) ErrorOverlay() string {
	errs := ec.GetErrors()
	if len(errs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div id="livedocs-error-overlay" class="error-overlay">`)
	b.WriteString(`<div class="error-overlay-header"><h2>Build Errors</h2>`)
	b.WriteString(`<button type="button" onclick="this.closest('#livedocs-error-overlay').remove()">Close</button></div>`)
	for _, err := range errs {
		fmt.Fprintf(&b, `<div class="error-overlay-item severity-%s">`, err.Severity)
		fmt.Fprintf(&b, `<strong>%s</strong>`, html.EscapeString(err.Error()))
		fmt.Fprintf(&b, `<span class="error-overlay-time">%s</span>`, err.Timestamp.Format("15:04:05"))
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)

	return b.String()
}
