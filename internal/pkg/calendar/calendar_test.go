package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-05-18")
	require.NoError(t, err)
	assert.Equal(t, time.May, d.Month())

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
	_, err = ParseDate("18/05/2025")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("16:30")
	require.NoError(t, err)
	assert.Equal(t, 16*60+30, m)

	_, err = ParseClock("24:00")
	assert.Error(t, err)
	_, err = ParseClock("4pm")
	assert.Error(t, err)
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2025-06-01", AddDays("2025-05-31", 1))
	assert.Equal(t, "2025-05-17", AddDays("2025-05-18", -1))
	assert.Equal(t, "garbage", AddDays("garbage", 1))
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2025, 5, 18, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-05-18", DateOf(instant))
	assert.Equal(t, "2025-05-19", DateOf(instant.In(loc)))
}

func TestFormatClockNormalizes(t *testing.T) {
	m, err := ParseClock("8:05")
	assert.NoError(t, err)
	assert.Equal(t, "08:05", FormatClock(m))
	assert.Equal(t, "16:00", FormatClock(16*60))
}
