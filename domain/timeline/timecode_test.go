package timeline

import (
	"strings"
	"testing"
)

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        float64
		wantErr     bool
		errContains string
	}{
		{name: "bare seconds", input: "42", want: 42},
		{name: "fractional seconds", input: "3.25", want: 3.25},
		{name: "minutes and seconds", input: "1:30", want: 90},
		{name: "hours minutes seconds", input: "01:02:03", want: 3723},
		{name: "full form with fraction", input: "0:01:05.5", want: 65.5},
		{name: "empty", input: "", wantErr: true, errContains: "invalid timecode"},
		{name: "not a number", input: "abc", wantErr: true, errContains: "invalid timecode"},
		{name: "seconds overflow with minutes", input: "1:75", wantErr: true, errContains: "seconds must be 0-59"},
		{name: "minutes overflow with hours", input: "1:75:00", wantErr: true, errContains: "minutes must be 0-59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimecode(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimecode(%q) expected error, got nil", tt.input)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("ParseTimecode(%q) error = %v, want error containing %q", tt.input, err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimecode(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimecode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00.0"},
		{5.25, "0:05.2"},
		{65.5, "1:05.5"},
		{59.99, "1:00.0"},
		{-3, "0:00.0"},
	}

	for _, tt := range tests {
		if got := FormatTimecode(tt.seconds); got != tt.want {
			t.Errorf("FormatTimecode(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
