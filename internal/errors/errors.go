// Package errors provides a structured error type (BuildError) for
// category-based classification across the build pipeline and CLI.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies a BuildError for reporting and exit-code mapping.
type Category string

const (
	// User-facing configuration and input errors
	CategoryConfig     Category = "config"
	CategoryValidation Category = "validation"

	// Content processing errors
	CategoryFrontMatter Category = "frontmatter"
	CategoryRender      Category = "render"
	CategoryRoute       Category = "route"
	CategoryAsset       Category = "asset"

	// Infrastructure errors
	CategoryFileSystem Category = "filesystem"
	CategoryGit        Category = "git"
	CategoryServer     Category = "server"
	CategoryInternal   Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Stops the build
	SeverityError   Severity = "error"   // Error, but not fatal
	SeverityWarning Severity = "warning" // Continues with degraded functionality
)

// BuildError is a structured error with category, severity, and context.
type BuildError struct {
	Category Category      `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := e.Message
	if file, ok := e.Context["file"]; ok {
		msg = fmt.Sprintf("%s (file: %v)", msg, file)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, msg, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, msg)
}

// Unwrap implements error unwrapping for errors.Is/As chains.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithFile records the offending source file on the error. Every error that
// aborts a build must name the file that caused it.
func (e *BuildError) WithFile(file string) *BuildError {
	return e.WithContext("file", file)
}

// File returns the offending source file recorded on the error, if any.
func (e *BuildError) File() string {
	if f, ok := e.Context["file"].(string); ok {
		return f
	}
	return ""
}

// New creates a new BuildError.
func New(category Category, severity Severity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error.
func Wrap(err error, category Category, severity Severity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category Category) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns
// CategoryInternal if the chain contains no BuildError.
func GetCategory(err error) Category {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryInternal
}
