package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil list",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty list",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single broker",
			input:    []string{"kafka-0:9092"},
			expected: []string{"kafka-0:9092"},
		},
		{
			name:     "trims whitespace from a broker list",
			input:    []string{"  kafka-0:9092  ", "kafka-1:9092 ", " kafka-2:9092"},
			expected: []string{"kafka-0:9092", "kafka-1:9092", "kafka-2:9092"},
		},
		{
			name:     "repeated variant ids keep their first position",
			input:    []string{"pv-1", "pv-2", "pv-1", "pv-3", "pv-2"},
			expected: []string{"pv-1", "pv-2", "pv-3"},
		},
		{
			name:     "blank entries are dropped",
			input:    []string{"pv-1", "", "  ", "pv-2"},
			expected: []string{"pv-1", "pv-2"},
		},
		{
			name:     "trim, dedupe and drop combined",
			input:    []string{"  pv-1 ", "pv-2", "pv-1", "", "  ", "pv-2"},
			expected: []string{"pv-1", "pv-2"},
		},
		{
			name:     "case is preserved",
			input:    []string{"Topic", "topic", "TOPIC"},
			expected: []string{"Topic", "topic", "TOPIC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil list",
			input:    nil,
			expected: nil,
		},
		{
			name:     "checklist names collapse case-insensitively",
			input:    []string{"Daily_Expenses", "daily_expenses", "DAILY_EXPENSES"},
			expected: []string{"daily_expenses"},
		},
		{
			name:     "trims, lowercases and dedupes",
			input:    []string{"  STOCK_LEDGER ", "daily_expenses", "Stock_Ledger", "DAILY_EXPENSES"},
			expected: []string{"stock_ledger", "daily_expenses"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
