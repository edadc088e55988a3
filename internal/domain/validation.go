package domain

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@.]+$`)
	productIDPattern = regexp.MustCompile(`^prod_[A-Za-z0-9_-]+$`)
)

// IsValidEmail reports whether email has a basic local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidProductID reports whether id looks like a catalog product identifier (prod_...).
func IsValidProductID(id string) bool {
	return productIDPattern.MatchString(id)
}

func validateEmail(field, email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError(field, "is required")
	}
	if !IsValidEmail(email) {
		return NewValidationError(field, "must look like local@domain.tld")
	}
	return nil
}

func validateProductID(id string) error {
	if !IsValidProductID(id) {
		return NewValidationError("product_id", "must be a catalog product id (prod_...)")
	}
	return nil
}

// AddMonths advances t by n calendar months. The day of month is clamped to the
// last day of the target month, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + n
	targetYear := year + total/12
	targetMonth := total % 12
	if targetMonth < 0 {
		targetMonth += 12
		targetYear--
	}

	lastDay := daysIn(time.Month(targetMonth+1), targetYear)
	if day > lastDay {
		day = lastDay
	}

	return time.Date(targetYear, time.Month(targetMonth+1), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
