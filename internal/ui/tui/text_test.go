package tui

import (
	"reflect"
	"testing"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"narrow width hard cut", "hello", 3, "hel"},
		{"zero width", "hello", 0, ""},
		{"negative width", "hello", -1, ""},
		{"empty text", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateText(tt.text, tt.width); got != tt.want {
				t.Errorf("truncateText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		maxLines int
		want     []string
	}{
		{
			name:     "simple wrap",
			text:     "one two three",
			width:    10,
			maxLines: 3,
			want:     []string{"one two", "three"},
		},
		{
			name:     "single line",
			text:     "short",
			width:    20,
			maxLines: 2,
			want:     []string{"short"},
		},
		{
			name:     "empty text",
			text:     "",
			width:    10,
			maxLines: 2,
			want:     []string{""},
		},
		{
			name:     "long word hard broken",
			text:     "abcdefghijkl",
			width:    5,
			maxLines: 5,
			want:     []string{"abcde", "fghij", "kl"},
		},
		{
			name:     "overflow gets ellipsis",
			text:     "alpha beta gamma delta epsilon",
			width:    10,
			maxLines: 2,
			want:     []string{"alpha beta", "gamma..."},
		},
		{
			name:     "newlines treated as spaces",
			text:     "one\ntwo",
			width:    10,
			maxLines: 2,
			want:     []string{"one two"},
		},
		{
			name:     "zero width",
			text:     "anything",
			width:    0,
			maxLines: 2,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width, tt.maxLines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapText(%q, %d, %d) = %v, want %v", tt.text, tt.width, tt.maxLines, got, tt.want)
			}
		})
	}
}

func TestPadLines(t *testing.T) {
	got := padLines([]string{"a"}, 3)
	want := []string{"a", "", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("padLines = %v, want %v", got, want)
	}

	full := padLines([]string{"a", "b", "c"}, 2)
	if len(full) != 3 {
		t.Errorf("expected padLines to leave longer input alone, got %v", full)
	}
}
