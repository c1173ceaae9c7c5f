package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "movie.mkv", "movie.mkv"},
		{"slashes", "a/b\\c", "a-b-c"},
		{"colon and star", "a:b*c", "a-b-c"},
		{"removed chars", `a?"<>|b`, "ab"},
		{"trimmed", "  movie  ", "movie"},
		{"empty", "   ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
