// Package normalize canonicalizes user-supplied identifiers and query values
// before they reach validation or the database.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Category trims and lowercases a complaint category.
func Category(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Filter normalizes a category/status query filter. "all" means no filter
// and becomes the empty string.
func Filter(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "all" {
		return ""
	}
	return v
}

// QueryParam trims a free-form query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
