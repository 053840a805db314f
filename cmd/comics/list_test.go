package comics

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer title", 8, "much lo…"},
		{"ünïcödé title", 6, "ünïcö…"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestOrDash(t *testing.T) {
	if orDash("") != "-" {
		t.Error("Expected dash for empty slug")
	}
	if orDash("a") != "a" {
		t.Error("Expected slug unchanged")
	}
}
