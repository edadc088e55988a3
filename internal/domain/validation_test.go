package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"shop@kw.com", true},
		{"a.b+c@sub.example.org", true},
		{"", false},
		{"no-at-sign.com", false},
		{"a@b", false},
		{"a b@kw.com", false},
		{"a@kw.", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsValidProductID(t *testing.T) {
	assert.True(t, IsValidProductID("prod_123"))
	assert.True(t, IsValidProductID("prod_AbC-9"))
	assert.False(t, IsValidProductID("prod_"))
	assert.False(t, IsValidProductID("123"))
	assert.False(t, IsValidProductID("product_123"))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "plain",
			start:  time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
			months: 12,
			want:   time.Date(2027, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:   "clamps to end of february",
			start:  time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "leap year",
			start:  time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "crosses year boundary",
			start:  time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
			months: 3,
			want:   time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "negative",
			start:  time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			months: -1,
			want:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.months))
		})
	}
}
