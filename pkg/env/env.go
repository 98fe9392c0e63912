package env

import "os"

// Get returns the environment value for key, falling back when unset.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
