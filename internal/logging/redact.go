package logging

import "strings"

// secretKeyPatterns are substrings that mark an attribute key as sensitive.
// Keys are matched case-insensitively.
var secretKeyPatterns = []string{
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"API_KEY",
	"CREDENTIAL",
	"PRIVATE",
}

// tokenPrefixes are well-known credential prefixes masked regardless of key.
var tokenPrefixes = []string{
	"ghp_",
	"gho_",
	"sk-",
	"AKIA",
	"xoxb-",
	"xoxp-",
}

// maskValue keeps the last four characters of longer values.
func maskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

func shouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

func containsTokenPrefix(value string) bool {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
