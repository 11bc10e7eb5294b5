package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// NormalizeSwissPhone rewrites local (0xx) and bare country-code (41xx)
// numbers to the +41 form. Spreadsheet blanks ("nan") become empty.
func NormalizeSwissPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.EqualFold(phone, "nan") {
		return ""
	}
	if strings.HasPrefix(phone, "0") {
		phone = "+41" + phone[1:]
	}
	if strings.HasPrefix(phone, "41") {
		phone = "+" + phone
	}
	return phone
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// IsDigits reports whether s is non-empty and made only of ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsLetters reports whether s is non-empty and contains no digit
func IsLetters(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, "0123456789")
}
