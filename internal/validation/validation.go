// Package validation provides input validation helpers for the ScreenMind API.
package validation

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxTextLength is the maximum length for free-text fields (journal entries).
const MaxTextLength = 10000

// DateLayout is the calendar-day key format used throughout the service.
const DateLayout = "2006-01-02"

// packageNameRegex validates Android-style application identifiers.
var packageNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidPackageName checks if a string looks like an app package identifier.
func IsValidPackageName(pkg string) bool {
	return len(pkg) <= 256 && packageNameRegex.MatchString(pkg)
}

// IsValidDate checks that s is a YYYY-MM-DD calendar day.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsValidLatLng checks coordinate ranges.
func IsValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// SanitizeString trims whitespace, strips null bytes, and limits length.
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// Validate collects the non-nil results of a set of field checks.
func Validate(checks ...*ValidationError) ValidationErrors {
	var errs ValidationErrors
	for _, c := range checks {
		if c != nil {
			errs = append(errs, *c)
		}
	}
	return errs
}

// ValidDate returns an error when s is not a YYYY-MM-DD day.
func ValidDate(field, s string) *ValidationError {
	if !IsValidDate(s) {
		return &ValidationError{Field: field, Message: "must be a YYYY-MM-DD date"}
	}
	return nil
}

// ValidTimeRange returns an error when from/to do not form a usable window.
func ValidTimeRange(field string, fromMs, toMs int64) *ValidationError {
	if fromMs < 0 || toMs < 0 || toMs < fromMs {
		return &ValidationError{Field: field, Message: "must satisfy 0 <= from <= to"}
	}
	return nil
}

// ValidPackageName returns an error when pkg is set but malformed.
// Empty values pass; package names are optional on most events.
func ValidPackageName(field, pkg string) *ValidationError {
	if pkg != "" && !IsValidPackageName(pkg) {
		return &ValidationError{Field: field, Message: "must be a dotted app identifier"}
	}
	return nil
}
