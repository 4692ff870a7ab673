package redis

import "fmt"

// Key prefix for all client data
const keyPrefix = "sovereign"

// tokenKey returns the fixed Redis key of the session slot for a profile
func tokenKey(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return fmt.Sprintf("%s:session:%s:token", keyPrefix, profile)
}
