package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildDailySummaryTopLoader(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createCustomer(t, "30111222", "Ana García", 0)
	svc := NewDailySummaryService(env.transactions, DefaultTimezone)

	window := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	env.seedLoad(t, ana.ID, 200, 7, "caja1", window)
	env.seedLoad(t, ana.ID, 100, 7, "caja1", window.Add(time.Hour))
	env.seedLoad(t, ana.ID, 250, 8, "caja2", window.Add(2*time.Hour))

	summary, err := svc.BuildDailySummary(ReportOptions{From: "2024-03-10", To: "2024-03-10"})
	require.NoError(t, err)

	require.Equal(t, 550, summary.TotalPoints)
	require.Equal(t, "caja1", summary.TopUserName)
	require.Equal(t, 300, summary.TopUserPoints)
	require.Equal(t, "10/03/2024", summary.FormattedDate)
	require.Equal(t, "2024-03-10", summary.StartISODate)
}

func TestBuildDailySummaryEmptyWindow(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDailySummaryService(env.transactions, DefaultTimezone)

	summary, err := svc.BuildDailySummary(ReportOptions{From: "2024-03-10", To: "2024-03-10"})
	require.NoError(t, err)

	require.Equal(t, 0, summary.TotalPoints)
	require.Equal(t, NoLoadsPlaceholder, summary.TopUserName)
	require.Equal(t, 0, summary.TopUserPoints)
}

func TestBuildDailySummaryIgnoresVoidedLoads(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer(t, "30111222", "Ana García", 0)
	points := env.pointsService()
	voids := env.voidService()
	svc := NewDailySummaryService(env.transactions, DefaultTimezone)

	loaded, err := points.LoadPoints("30111222", 400, nil, testActor(7, "caja1"))
	require.NoError(t, err)
	_, err = points.LoadPoints("30111222", 100, nil, testActor(8, "caja2"))
	require.NoError(t, err)
	_, err = voids.VoidLoad(loaded.TransactionID, "", testActor(1, "admin"))
	require.NoError(t, err)

	summary, err := svc.BuildDailySummary(ReportOptions{})
	require.NoError(t, err)
	require.Equal(t, 100, summary.TotalPoints)
	require.Equal(t, "caja2", summary.TopUserName)
}
