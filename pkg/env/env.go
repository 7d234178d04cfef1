// Package env holds small helpers for reading process environment
// variables outside the typed config path.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or empty.
// An explicitly empty variable counts as unset.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
