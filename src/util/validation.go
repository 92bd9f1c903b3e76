package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxDescriptionLength = 200
	MaxGoalNameLength    = 100
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateUsername(username string) bool {
	if !StorableText(username) {
		return false
	}
	n := utf8.RuneCountInString(username)
	return n >= 3 && n <= 30
}

func ValidateDescription(description string) bool {
	return validateText(description, MaxDescriptionLength)
}

func ValidateGoalName(name string) bool {
	return validateText(name, MaxGoalNameLength)
}

func validateText(s string, max int) bool {
	if strings.TrimSpace(s) == "" || !StorableText(s) {
		return false
	}
	return utf8.RuneCountInString(s) <= max
}

// StorableText reports whether s fits a text column. It rejects invalid UTF-8 and NUL bytes.
func StorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
