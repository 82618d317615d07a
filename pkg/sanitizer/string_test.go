package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"collapses inner runs", "  Sea   view\t\tvilla  ", "Sea view villa"},
		{"unicode kept", " Casa  Peñón ", "Casa Peñón"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana.Silva@Example.COM "); got != "ana.silva@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizeTimeSlot(t *testing.T) {
	tests := map[string]string{
		"10:00 - 11:00": "10:00-11:00",
		"10:00-11:00":   "10:00-11:00",
		" 09:30 -10:30": "09:30-10:30",
	}
	for in, want := range tests {
		if got := NormalizeTimeSlot(in); got != want {
			t.Errorf("NormalizeTimeSlot(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"cdn.Example.com/img/Front.JPG", "https://cdn.example.com/img/Front.JPG"},
		{"HTTP://cdn.example.com/a/", "https://cdn.example.com/a"},
		{"https://cdn.example.com/a.jpg?w=800#top", "https://cdn.example.com/a.jpg?w=800"},
		{"https://", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.input); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
