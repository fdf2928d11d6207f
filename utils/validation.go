// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Clean the phone number
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(phone)

	// Allows + prefix followed by 7-15 digits
	return phonePattern.MatchString(cleaned)
}

// NormalizeVIN upper-cases a VIN and strips surrounding and inner spaces.
func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(vin), " ", ""))
}
