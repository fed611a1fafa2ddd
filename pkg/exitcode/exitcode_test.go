package exitcode

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{ValidationFailure, "Validation failure"},
		{ConfigError, "Configuration error"},
		{IOError, "I/O error"},
		{PublishError, "Publish error"},
		{99, "Unknown error"},
	}

	for _, tt := range tests {
		if got := String(tt.code); got != tt.expected {
			t.Errorf("String(%d) = %q, expected %q", tt.code, got, tt.expected)
		}
	}
}

func TestContractCodes(t *testing.T) {
	// The CLI contract fixes these three values; a change here breaks callers.
	if Success != 0 || ValidationFailure != 1 || ConfigError != 2 {
		t.Fatalf("contract exit codes changed: success=%d validation=%d config=%d",
			Success, ValidationFailure, ConfigError)
	}
}
