package common

import (
	"regexp"
	"strconv"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CleanString trims the value and collapses inner runs of whitespace.
func CleanString(value string) string {
	fields := strings.Fields(value)
	return strings.Join(fields, " ")
}

// SafeInt parses value as int, reporting failure instead of erroring.
func SafeInt(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SafeFloat parses value as float64, reporting failure instead of erroring.
func SafeFloat(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseBool accepts the loose truthy spellings the admin forms send;
// anything else is false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "si", "on":
		return true
	}
	return false
}

// IsEmail reports whether value looks like an email address.
func IsEmail(value string) bool {
	return emailRegex.MatchString(value)
}

// ParseIDList coerces a comma-separated list to ints, skipping anything
// invalid.
func ParseIDList(raw string) []int {
	parts := strings.Split(raw, ",")
	result := make([]int, 0, len(parts))
	for _, item := range parts {
		if id, ok := SafeInt(item); ok {
			result = append(result, id)
		}
	}
	return result
}
