package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Size limits (in bytes unless noted)
const (
	MaxJSONSize        = 1 * 1024 * 1024 // 1MB - maximum request body
	MaxCodeSize        = 256 * 1024      // 256KB - one source or test blob
	MaxInstructionSize = 4 * 1024        // 4KB - generator instruction
	MaxNameLength      = 200             // characters
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid input")

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the default 1MB limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxJSONSize)
}

// MaxSize returns the configured limit
func (v *JSONSizeValidator) MaxSize() int {
	return v.maxSize
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	if size := len(data); size > v.maxSize {
		return invalid("body", "size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Check size first (faster than parsing)
	if err := v.ValidateSize(data); err != nil {
		return err
	}
	if !sonic.Valid(data) {
		return invalid("body", "malformed JSON")
	}
	return nil
}

// ValidateCode checks one JavaScript blob. Empty code is allowed.
func ValidateCode(field, code string) error {
	if len(code) > MaxCodeSize {
		return invalid(field, "size %d bytes exceeds maximum %d bytes", len(code), MaxCodeSize)
	}
	if !utf8.ValidString(code) {
		return invalid(field, "must be valid UTF-8")
	}
	return nil
}

// ValidateInstruction checks an optional generator instruction
func ValidateInstruction(instruction string) error {
	if len(instruction) > MaxInstructionSize {
		return invalid("instruction", "size %d bytes exceeds maximum %d bytes", len(instruction), MaxInstructionSize)
	}
	return nil
}

// ValidateName checks a project name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name", "is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return invalid("name", "must be at most %d characters", MaxNameLength)
	}
	if strings.ContainsAny(trimmed, "\x00\r\n") {
		return invalid("name", "must be a single line")
	}
	return nil
}

// ValidateOneOf checks that value is one of allowed
func ValidateOneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return invalid(field, "must be one of %s", strings.Join(allowed, ", "))
}
