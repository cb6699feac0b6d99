package util

import "testing"

func TestMarkerNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"empty string", "", 0, false},
		{"no parentheses", "Harbour", 0, false},
		{"simple", "Harbour (12)", 12, true},
		{"leading", "(3) Lighthouse", 3, true},
		{"not digits", "Harbour (north)", 0, false},
		{"first numeric group wins", "Pier (a) (7) (9)", 7, true},
		{"unclosed", "Pier (7", 0, false},
		{"empty parentheses", "Pier () (4)", 4, true},
		{"mixed content", "Pier (7a)", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MarkerNumber(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MarkerNumber(%q) = %d, %v, want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsLink(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty string", "", false},
		{"plain text", "first date here", false},
		{"http", "http://example.com/photo.jpg", true},
		{"https", "https://example.com", true},
		{"uppercase scheme", "HTTPS://example.com", true},
		{"padded", "  https://example.com  ", true},
		{"no host", "http://", false},
		{"other scheme", "mailto:someone@example.com", false},
		{"text mentioning http", "see http://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsLink(tt.input); result != tt.expected {
				t.Errorf("IsLink(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFirstSegment(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Paris", "Paris"},
		{"Paris, Île-de-France, France", "Paris"},
		{" Lisbon , Portugal", "Lisbon"},
	}

	for _, tt := range tests {
		if result := FirstSegment(tt.input); result != tt.expected {
			t.Errorf("FirstSegment(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
