package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourlyCoverage(t *testing.T) {
	hours := Hours{Start: 8, End: 11}
	employees := []GridEmployee{
		{ID: "a", Blocks: []HourBlock{{Hour: 8, Active: true}, {Hour: 9, Active: true}}},
		{ID: "b", Blocks: []HourBlock{{Hour: 9, Active: true}, {Hour: 10, Active: false}}},
	}

	coverage := hours.HourlyCoverage(employees)
	require.Len(t, coverage, 3)
	assert.Equal(t, HourCoverage{Hour: 8, ActiveStaff: 1}, coverage[0])
	assert.Equal(t, HourCoverage{Hour: 9, ActiveStaff: 2}, coverage[1])
	assert.Equal(t, HourCoverage{Hour: 10, ActiveStaff: 0}, coverage[2])
}

func TestHourlyCoverageEmptyWindow(t *testing.T) {
	hours := Hours{Start: 10, End: 10}
	assert.Nil(t, hours.HourlyCoverage(nil))
}

func TestCurrentCoverage(t *testing.T) {
	employees := []GridEmployee{
		{ID: "a", Blocks: []HourBlock{{Hour: 9, Active: true}}},
		{ID: "b", Blocks: []HourBlock{{Hour: 14, Active: true}}},
	}
	now := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)

	active, total := CurrentCoverage(employees, now)
	assert.Equal(t, 1, active)
	assert.Equal(t, 2, total)
}
