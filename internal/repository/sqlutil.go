package repository

import "strings"

// placeholders returns "?, ?, ..., ?" with n markers, for IN clauses
// and bulk VALUES lists.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// toArgs widens a slice of ids into the []interface{} shape that
// database/sql expects for variadic query arguments.
func toArgs(ids []uint64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
