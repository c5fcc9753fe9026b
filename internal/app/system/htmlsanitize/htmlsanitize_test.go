package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/campusvoice/internal/app/system/htmlsanitize"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Broken AC in room 204", "Broken AC in room 204"},
		{"trims", "  Broken AC  ", "Broken AC"},
		{"ampersand kept", "Fish & chips are cold", "Fish & chips are cold"},
		{"bold removed", "<b>Leaky</b> tap", "Leaky tap"},
		{"link text kept", `<a href="javascript:alert(1)">here</a>`, "here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.StripTags(tt.input); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripTags_RemovesScript(t *testing.T) {
	got := htmlsanitize.StripTags("<script>alert('xss')</script>Water cooler broken")
	if strings.Contains(got, "<script") || strings.Contains(got, "alert") {
		t.Errorf("script survived: %q", got)
	}
	if !strings.Contains(got, "Water cooler broken") {
		t.Errorf("text lost: %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	if !htmlsanitize.IsPlainText("votes > 5") {
		t.Error("greater-than alone is plain text")
	}
	if htmlsanitize.IsPlainText("<p>x</p>") {
		t.Error("tags are not plain text")
	}
}
