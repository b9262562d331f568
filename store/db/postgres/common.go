package postgres

import (
	"fmt"
	"strings"
)

// placeholder returns the n-th parameter placeholder for PostgreSQL.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n comma-separated placeholders starting at $1.
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}
