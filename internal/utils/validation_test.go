package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONSizeValidator(t *testing.T) {
	v := NewJSONSizeValidator(16)

	assert.NoError(t, v.ValidateJSON([]byte(`{"a":1}`)))
	assert.ErrorIs(t, v.ValidateJSON([]byte(`{"a":`)), ErrInvalid)
	assert.ErrorIs(t, v.ValidateSize([]byte(strings.Repeat("x", 17))), ErrInvalid)
	assert.Equal(t, MaxJSONSize, DefaultJSONValidator().MaxSize())
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "empty", code: ""},
		{name: "normal", code: "function f() {}"},
		{name: "too large", code: strings.Repeat("a", MaxCodeSize+1), wantErr: true},
		{name: "invalid utf8", code: "\xff\xfe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCode("code", tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				assert.Contains(t, err.Error(), "code:")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "Calculator"},
		{name: "unicode", input: "Rechner für Brüche"},
		{name: "blank", input: "   ", wantErr: true},
		{name: "multi line", input: "a\nb", wantErr: true},
		{name: "too long", input: strings.Repeat("n", MaxNameLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("language", "javascript", "javascript", "typescript"))

	err := ValidateOneOf("language", "python", "javascript", "typescript")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "language", ve.Field)
	assert.Equal(t, "language: must be one of javascript, typescript", err.Error())
}

func TestValidateInstruction(t *testing.T) {
	assert.NoError(t, ValidateInstruction("cover edge cases"))
	assert.Error(t, ValidateInstruction(strings.Repeat("x", MaxInstructionSize+1)))
}
