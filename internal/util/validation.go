package util

import (
	"regexp"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

var joinCodeRegex = regexp.MustCompile(`^[A-Z2-9]{6}$`)

func IsValidJoinCode(s string) bool {
	return joinCodeRegex.MatchString(s)
}
