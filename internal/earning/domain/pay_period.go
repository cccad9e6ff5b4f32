package domain

import (
	"strings"
	"time"
)

const payPeriodLayout = "2006-01"

// ParsePayPeriod validates a YYYY-MM calendar month.
func ParsePayPeriod(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != len(payPeriodLayout) {
		return "", ErrInvalidPayPeriod
	}
	if _, err := time.Parse(payPeriodLayout, raw); err != nil {
		return "", ErrInvalidPayPeriod
	}
	return raw, nil
}

// PayPeriodOf returns the pay period containing t.
func PayPeriodOf(t time.Time) string {
	return t.UTC().Format(payPeriodLayout)
}
