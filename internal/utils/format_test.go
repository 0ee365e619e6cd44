package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Number(tt.in))
	}
}

func TestBytes(t *testing.T) {
	require.Equal(t, "512 B", Bytes(512))
	require.Equal(t, "1.5 KiB", Bytes(1536))
	require.Equal(t, "-2.0 KiB", Bytes(-2048))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "0s"},
		{5200 * time.Millisecond, "5.2s"},
		{3*time.Minute + 5200*time.Millisecond, "3m5.2s"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Duration(tt.in))
	}
}

func TestRate(t *testing.T) {
	require.Equal(t, "0", Rate(10, 0))
	require.Equal(t, "5", Rate(10, 2*time.Second))
	require.Equal(t, "12.5k", Rate(25000, 2*time.Second))
	require.Equal(t, "1.5M", Rate(3000000, 2*time.Second))
}
