package models

import "strings"

// Slugify creates a URL-friendly slug from a name: ASCII alphanumeric runs,
// lower-cased and hyphen-joined. Non-alphanumeric characters act as
// separators rather than being dropped in place.
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var runs []string
	var current strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			runs = append(runs, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		runs = append(runs, current.String())
	}
	return strings.Join(runs, "-")
}
