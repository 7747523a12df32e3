package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole_PreservesCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Protocol", "Protocol"},
		{"  Security  ", "Security"},
		{"protocol", "protocol"}, // distinct from "Protocol"
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Role(tt.input)
			if got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPortalRole(t *testing.T) {
	if got := PortalRole("  Admin "); got != "admin" {
		t.Errorf("PortalRole = %q, want %q", got, "admin")
	}
}
