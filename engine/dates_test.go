package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDateDimensionInclusiveRange(t *testing.T) {
	start := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	rows := BuildDateDimension(start, end)
	require.Len(t, rows, 4) // leap year: Feb 29 exists

	assert.Equal(t, start, rows[0].Date)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), rows[1].Date)
	assert.Equal(t, end, rows[3].Date)
}

func TestBuildDateDimensionFields(t *testing.T) {
	// 2024-03-02 is a Saturday.
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := BuildDateDimension(day, day)
	require.Len(t, rows, 1)

	d := rows[0]
	assert.Equal(t, 20240302, d.DateKey)
	assert.Equal(t, 2024, d.Year)
	assert.Equal(t, 1, d.Quarter)
	assert.Equal(t, 3, d.Month)
	assert.Equal(t, "March", d.MonthName)
	assert.Equal(t, 9, d.ISOWeek)
	assert.Equal(t, 2, d.DayOfMonth)
	assert.Equal(t, 5, d.DayOfWeek) // Monday=0, so Saturday=5
	assert.Equal(t, "Saturday", d.DayName)
	assert.True(t, d.IsWeekend)
	assert.False(t, d.IsMonthStart)
	assert.False(t, d.IsMonthEnd)
}

func TestBuildDateDimensionMonthBoundaries(t *testing.T) {
	rows := BuildDateDimension(
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsMonthEnd)
	assert.False(t, rows[0].IsMonthStart)
	assert.True(t, rows[1].IsMonthStart)
	assert.False(t, rows[1].IsMonthEnd)
}

func TestBuildDateDimensionQuarters(t *testing.T) {
	tests := []struct {
		month int
		want  int
	}{
		{1, 1}, {3, 1}, {4, 2}, {6, 2}, {7, 3}, {9, 3}, {10, 4}, {12, 4},
	}
	for _, tt := range tests {
		day := time.Date(2024, time.Month(tt.month), 15, 0, 0, 0, 0, time.UTC)
		rows := BuildDateDimension(day, day)
		require.Len(t, rows, 1)
		assert.Equal(t, tt.want, rows[0].Quarter, "month=%d", tt.month)
	}
}

func TestBuildDateDimensionEmptyWhenReversed(t *testing.T) {
	start := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, BuildDateDimension(start, end))
}

func TestMondayIndexed(t *testing.T) {
	assert.Equal(t, 0, mondayIndexed(time.Monday))
	assert.Equal(t, 4, mondayIndexed(time.Friday))
	assert.Equal(t, 6, mondayIndexed(time.Sunday))
}
