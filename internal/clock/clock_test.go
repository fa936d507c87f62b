package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAdvance(t *testing.T) {
	c := NewFake(time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-09", Today(c))
	assert.Equal(t, "2024-03-08", Yesterday(c))

	c.Advance(time.Hour)
	assert.Equal(t, "2024-03-10", Today(c))
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		from, to string
		want     int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-01", "2024-01-02", 1},
		{"2024-02-27", "2024-03-01", 3},
		{"2023-12-30", "2024-01-02", 3},
		{"2024-03-09", "2024-03-11", 2},
	}
	for _, tc := range cases {
		got, err := DaysBetween(tc.from, tc.to)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s -> %s", tc.from, tc.to)
	}

	_, err := DaysBetween("yesterday", "2024-01-01")
	assert.Error(t, err)
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)
}
