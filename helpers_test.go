package galleria

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Fuji, Japan", "fuji-japan"},
		{"Hello World", "hello-world"},
		{"  spaced  ", "spaced"},
		{"Already-Slugged", "already-slugged"},
		{"Trailing!", "trailing"},
		{"2021-01-01 Fuji, Japan", "2021-01-01-fuji-japan"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestWebPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Summit.webp", "summit.webp"},
		{"Summit.WEBP", "summit.webp"},
		{"My Photo.JPG", "my-photo.jpg"},
		{"2021-01-01 Fuji, Japan", "2021-01-01-fuji-japan"},
		{"no-extension", "no-extension"},
	}
	for _, tt := range tests {
		if got := webPath(tt.input); got != tt.expected {
			t.Errorf("webPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"2021-01-01-fuji-japan"}, "https://example.com/2021-01-01-fuji-japan/"},
		{"https://example.com/sub", []string{"a", "b"}, "https://example.com/sub/a/b/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}
