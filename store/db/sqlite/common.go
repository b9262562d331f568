package sqlite

import "strings"

// placeholder returns a parameter placeholder for SQLite.
func placeholder(int) string {
	return "?"
}

// placeholders returns n comma-separated placeholders.
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}
