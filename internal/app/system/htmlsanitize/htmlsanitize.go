// Package htmlsanitize strips markup from user-submitted text.
//
// Complaint titles, descriptions and comments are plain text. Clients render
// them as text, but the stored value is still cleaned so that a browser that
// does insert it as HTML cannot run scripts.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// StripTags removes every HTML element (script and style bodies included)
// and returns trimmed plain text. Entities escaped by the sanitizer are
// decoded again so "Fish & chips" survives unchanged.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(policy().Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like sequences.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<")
}
