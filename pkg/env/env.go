package env

import "os"

// Get returns the named environment variable or the fallback when unset.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
