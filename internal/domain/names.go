package domain

import "strings"

func IsValidModelName(name string) bool {
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return !strings.HasPrefix(name, "$")
}
