package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{0, "0.0 o"},
		{512, "512.0 o"},
		{1023, "1023.0 o"},
		{1024, "1.0 Ko"},
		{1536, "1.5 Ko"},
		{5 * 1024 * 1024, "5.0 Mo"},
		{3 * 1024 * 1024 * 1024, "3.0 Go"},
		{-2048, "-2.0 Ko"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSize(tt.size))
		})
	}
}

func TestFormatDatetime(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	t.Run("zero time", func(t *testing.T) {
		assert.Equal(t, "-", FormatDatetime(time.Time{}, paris))
	})

	t.Run("converts to location", func(t *testing.T) {
		ts := time.Date(2024, 7, 14, 10, 30, 5, 0, time.UTC)
		assert.Equal(t, "14/07/2024 12:30:05", FormatDatetime(ts, paris))
	})

	t.Run("nil location means UTC", func(t *testing.T) {
		ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		assert.Equal(t, "02/01/2024 03:04:05", FormatDatetime(ts, nil))
	})
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{123, "123"},
		{1234, "1 234"},
		{123456, "123 456"},
		{1234567, "1 234 567"},
		{-98765, "-98 765"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.n))
		})
	}
}
