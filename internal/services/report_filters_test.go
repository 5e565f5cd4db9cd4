package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildDailyRangeSingleDay(t *testing.T) {
	// Tucumán is UTC-3 year round: local midnight is 03:00 UTC.
	r, err := BuildDailyRange("2024-03-10", "2024-03-10", "")
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), r.Start.UTC())
	require.Equal(t, time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC), r.End.UTC())
	require.Equal(t, "10/03/2024", r.FormattedDate)
	require.Equal(t, "2024-03-10", r.StartISODate)
}

func TestBuildDailyRangeMultiDay(t *testing.T) {
	r, err := BuildDailyRange("2024-03-10", "2024-03-12", "")
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), r.Start.UTC())
	require.Equal(t, time.Date(2024, 3, 13, 3, 0, 0, 0, time.UTC), r.End.UTC())
}

func TestBuildDailyRangeDefaultsToToday(t *testing.T) {
	r, err := BuildDailyRange("", "", "")
	require.NoError(t, err)

	zone, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	now := time.Now().In(zone)

	require.Equal(t, StartOfDay(now, zone), r.Start)
	require.Equal(t, 24*time.Hour, r.End.Sub(r.Start))

	// The window brackets the current instant.
	require.False(t, time.Now().Before(r.Start))
	require.True(t, time.Now().Before(r.End))
}

func TestBuildDailyRangeEmptyToDefaultsToFrom(t *testing.T) {
	r, err := BuildDailyRange("2024-07-01", "", "")
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, r.End.Sub(r.Start))
	require.Equal(t, "2024-07-01", r.StartISODate)
}

func TestBuildDailyRangeCustomTimezone(t *testing.T) {
	r, err := BuildDailyRange("2024-03-10", "2024-03-10", "UTC")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), r.Start.UTC())
	require.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), r.End.UTC())
}

func TestBuildDailyRangeRejectsBadInput(t *testing.T) {
	_, err := BuildDailyRange("10/03/2024", "", "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = BuildDailyRange("2024-03-10", "not-a-date", "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = BuildDailyRange("2024-03-10", "2024-03-10", "Mars/Olympus")
	require.ErrorIs(t, err, ErrValidation)
}

func TestBuildReportFiltersUserPrecedence(t *testing.T) {
	opts := ReportOptions{
		From:     "2024-03-10",
		To:       "2024-03-10",
		UserID:   int64Ptr(7),
		UserName: strPtr("caja1"),
	}
	filters, _, err := BuildReportFilters(opts)
	require.NoError(t, err)

	// An explicit user id wins over the name filter.
	require.NotNil(t, filters.UserID)
	require.Equal(t, int64(7), *filters.UserID)
	require.Nil(t, filters.UserName)

	opts.UserID = nil
	filters, _, err = BuildReportFilters(opts)
	require.NoError(t, err)
	require.Nil(t, filters.UserID)
	require.NotNil(t, filters.UserName)
	require.Equal(t, "caja1", *filters.UserName)
}

func TestBuildReportFiltersWindowIsUTC(t *testing.T) {
	filters, _, err := BuildReportFilters(ReportOptions{From: "2024-03-10", To: "2024-03-10"})
	require.NoError(t, err)
	require.Equal(t, time.UTC, filters.Start.Location())
	require.Equal(t, time.UTC, filters.End.Location())
}
