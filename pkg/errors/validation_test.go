package errors

import (
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Start", false},
		{"valid underscore prefix", "_tmp", false},
		{"valid digits", "Motor1", false},
		{"valid single underscore", "_", false},

		{"empty", "", true},
		{"too long", "A" + string(make([]byte, 70)), true},
		{"leading digit", "1abc", true},
		{"double underscore", "a__b", true},
		{"trailing underscore", "abc_", true},
		{"reserved", "and", true},
		{"space", "a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVariableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"identifier", "StartButton", false},
		{"structure access", "Motor.Running", false},
		{"input bit", "%IX0.0", false},
		{"output word", "%QW3", false},
		{"memory lowercase", "%mx1.2", false},

		{"empty", "", true},
		{"bad address", "%ZX0", true},
		{"dangling dot", "Motor.", true},
		{"control char", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVariableName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVariableName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidVariable {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidVariable)
			}
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"simple", "main_rung", false},

		{"empty", "", true},
		{"path traversal", "../etc", true},
		{"slash", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
