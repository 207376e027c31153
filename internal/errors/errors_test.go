package errors

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("subject not found"), expected: "Error: subject not found"},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("failed to save: %w", errors.New("disk full")),
			expected: "Error: failed to save: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("unknown category %q", "Art")
	want := `Error: unknown category "Art"`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestWithHint(t *testing.T) {
	base := errors.New("storage not initialized")
	err := WithHint(base, "run 'studymon init'")

	if err.Error() != base.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), base.Error())
	}
	if !errors.Is(err, base) {
		t.Error("hinted error should unwrap to its cause")
	}
	if got := Hint(fmt.Errorf("load: %w", err)); got != "run 'studymon init'" {
		t.Errorf("Hint() = %q", got)
	}
	if WithHint(nil, "x") != nil {
		t.Error("WithHint(nil) should be nil")
	}
	if Hint(base) != "" {
		t.Error("plain error should carry no hint")
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("boom"), want: "Error: boom\n"},
		{name: "hinted", err: WithHint(errors.New("locked"), "close the other instance"), want: "Error: locked\nHint: close the other instance\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Report(&buf, tt.err)
			if buf.String() != tt.want {
				t.Errorf("Report() wrote %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
