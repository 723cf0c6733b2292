package dateformat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrptime_BasicConversions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"year short", "yy", "%y"},
		{"year long", "yyyy", "%Y"},
		{"month numeric", "MM", "%m"},
		{"month abbreviated", "MMM", "%b"},
		{"month full", "MMMM", "%B"},
		{"day", "dd", "%d"},
		{"literal separators", "yyyy-MM-dd", "%Y-%m-%d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Strptime(tt.input))
		})
	}
}

func TestStrptime_TimeConversions(t *testing.T) {
	assert.Equal(t, "%H:%M:%S", Strptime("HH:mm:ss"))
	assert.Equal(t, "%I:%M:%S %p", Strptime("hh:mm:ss a"))
}

func TestStrptime_WeekdayConversions(t *testing.T) {
	assert.Equal(t, "%a", Strptime("E"))
	assert.Equal(t, "%a", Strptime("EEE"))
	assert.Equal(t, "%A", Strptime("EEEE"))
}

func TestStrptime_TimezoneConversions(t *testing.T) {
	assert.Equal(t, "%z", Strptime("z"))
	assert.Equal(t, "%z", Strptime("zzz"))
	assert.Equal(t, "%Z", Strptime("zzzz"))
	assert.Equal(t, "%Z", Strptime("Z"))
}

func TestStrptime_WeebcentralFormat(t *testing.T) {
	assert.Equal(t, "%Y-%m-%dT%H:%M:%S.%fZ", Strptime("yyyy-MM-dd'T'HH:mm:ss.SSS'Z'"))
}

func TestParse_Conversions(t *testing.T) {
	tests := []struct {
		name     string
		dateStr  string
		format   string
		expected time.Time
	}{
		{
			name:     "weebcentral timestamp",
			dateStr:  "2024-09-07T17:04:15.717Z",
			format:   "yyyy-MM-dd'T'HH:mm:ss.SSS'Z'",
			expected: time.Date(2024, 9, 7, 17, 4, 15, 717000000, time.UTC),
		},
		{
			name:     "simple date",
			dateStr:  "2023-01-05",
			format:   "yyyy-MM-dd",
			expected: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.dateStr, tt.format, "", "")
			assert.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestParse_InvalidInputReturnsFalse(t *testing.T) {
	_, ok := Parse("not a date", "yyyy-MM-dd", "", "")
	assert.False(t, ok)
}
