package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandcert/internal/certification"
	"brandcert/internal/kpi"
	id "brandcert/pkg/domain"
	"brandcert/pkg/requestcontext"
)

var today = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

func seedPending(t *testing.T, store *certification.InMemoryStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		recordID := id.NewRecordID()
		require.NoError(t, store.Save(context.Background(), &certification.Record{
			ID:           recordID,
			BrandNumber:  "M-" + recordID.String(),
			OwnerName:    "Juan Flores",
			NationalID:   "4578123",
			Breed:        certification.BreedCriollo,
			Purpose:      certification.PurposeMeat,
			HeadCount:    10,
			Department:   certification.DeptSantaCruz,
			Status:       certification.StatusPending,
			RegisteredAt: today.Add(-time.Hour),
		}))
	}
}

func storedSnapshot(date time.Time, approvalRate float64, logoRate float64, logoCount int) *kpi.Snapshot {
	return &kpi.Snapshot{
		Date:            kpi.Day(date),
		RegisteredCount: 4,
		ApprovedCount:   3,
		RejectedCount:   1,
		ApprovalRate:    approvalRate,
		Purposes:        kpi.PurposeDistribution{Meat: 4},
		Departments:     kpi.DepartmentDistribution{SantaCruz: 4},
		LogoCount:       logoCount,
		LogoSuccessRate: logoRate,
		ComputedAt:      date,
	}
}

func TestComposeWithTodaysSnapshot(t *testing.T) {
	records := certification.NewInMemoryStore()
	snapshots := kpi.NewInMemorySnapshotStore()
	require.NoError(t, snapshots.Upsert(context.Background(), storedSnapshot(today, 75, 90, 10)))
	seedPending(t, records, 3)

	composer := NewComposer(records, snapshots)
	ctx := requestcontext.WithTime(context.Background(), today)

	view, err := composer.Compose(ctx)
	require.NoError(t, err)
	assert.True(t, view.Available)
	require.NotNil(t, view.Snapshot)
	assert.Equal(t, kpi.Day(today), view.Snapshot.Date)
	assert.InDelta(t, 25.0, view.RejectionRate, 0.001)
	assert.Equal(t, 3, view.LiveCounts.Pending)
	assert.Equal(t, 0, view.LiveCounts.InReview)
	assert.Empty(t, view.Alerts)
	assert.Equal(t, today, view.GeneratedAt)
}

func TestComposeFallsBackToLatestSnapshot(t *testing.T) {
	records := certification.NewInMemoryStore()
	snapshots := kpi.NewInMemorySnapshotStore()
	lastWeek := today.AddDate(0, 0, -7)
	require.NoError(t, snapshots.Upsert(context.Background(), storedSnapshot(lastWeek, 75, 90, 10)))

	composer := NewComposer(records, snapshots)
	view, err := composer.Compose(requestcontext.WithTime(context.Background(), today))
	require.NoError(t, err)
	assert.True(t, view.Available)
	assert.Equal(t, kpi.Day(lastWeek), view.Snapshot.Date)
}

func TestComposeWithoutAnySnapshot(t *testing.T) {
	records := certification.NewInMemoryStore()
	seedPending(t, records, 2)

	composer := NewComposer(records, kpi.NewInMemorySnapshotStore())
	view, err := composer.Compose(requestcontext.WithTime(context.Background(), today))
	require.NoError(t, err, "an empty snapshot store is not an error")
	assert.False(t, view.Available)
	assert.Nil(t, view.Snapshot)
	assert.Equal(t, 2, view.LiveCounts.Pending, "live counts are still served")
}

func TestComposeAlerts(t *testing.T) {
	t.Run("pending backlog", func(t *testing.T) {
		records := certification.NewInMemoryStore()
		seedPending(t, records, 51)
		composer := NewComposer(records, kpi.NewInMemorySnapshotStore())

		view, err := composer.Compose(requestcontext.WithTime(context.Background(), today))
		require.NoError(t, err)
		require.Len(t, view.Alerts, 1)
		assert.Equal(t, SeverityWarning, view.Alerts[0].Severity)
		assert.Equal(t, "Pending backlog", view.Alerts[0].Title)
	})

	t.Run("low approval rate", func(t *testing.T) {
		snapshots := kpi.NewInMemorySnapshotStore()
		require.NoError(t, snapshots.Upsert(context.Background(), storedSnapshot(today, 40, 90, 10)))
		composer := NewComposer(certification.NewInMemoryStore(), snapshots)

		view, err := composer.Compose(requestcontext.WithTime(context.Background(), today))
		require.NoError(t, err)
		require.Len(t, view.Alerts, 1)
		assert.Equal(t, SeverityError, view.Alerts[0].Severity)
		assert.Equal(t, "Low approval rate", view.Alerts[0].Title)
	})

	t.Run("degraded logo generation", func(t *testing.T) {
		snapshots := kpi.NewInMemorySnapshotStore()
		require.NoError(t, snapshots.Upsert(context.Background(), storedSnapshot(today, 80, 55, 20)))
		composer := NewComposer(certification.NewInMemoryStore(), snapshots)

		view, err := composer.Compose(requestcontext.WithTime(context.Background(), today))
		require.NoError(t, err)
		require.Len(t, view.Alerts, 1)
		assert.Equal(t, SeverityWarning, view.Alerts[0].Severity)
		assert.Equal(t, "Logo generation degraded", view.Alerts[0].Title)
	})

	t.Run("no logo alert when nothing was generated", func(t *testing.T) {
		snapshots := kpi.NewInMemorySnapshotStore()
		require.NoError(t, snapshots.Upsert(context.Background(), storedSnapshot(today, 80, 0, 0)))
		composer := NewComposer(certification.NewInMemoryStore(), snapshots)

		view, err := composer.Compose(requestcontext.WithTime(context.Background(), today))
		require.NoError(t, err)
		assert.Empty(t, view.Alerts)
	})

	t.Run("custom thresholds", func(t *testing.T) {
		records := certification.NewInMemoryStore()
		seedPending(t, records, 6)
		composer := NewComposer(records, kpi.NewInMemorySnapshotStore(),
			WithThresholds(Thresholds{PendingWarning: 5, ApprovalRateError: 60, LogoSuccessWarning: 70}))

		view, err := composer.Compose(requestcontext.WithTime(context.Background(), today))
		require.NoError(t, err)
		require.Len(t, view.Alerts, 1)
	})
}

// stubCache serves a fixed view and records writes.
type stubCache struct {
	view *View
	sets int
}

func (c *stubCache) Get(context.Context) (*View, bool, error) {
	if c.view == nil {
		return nil, false, nil
	}
	return c.view, true, nil
}

func (c *stubCache) Set(_ context.Context, view *View) error {
	c.view = view
	c.sets++
	return nil
}

func TestComposeUsesCache(t *testing.T) {
	records := certification.NewInMemoryStore()
	cache := &stubCache{}
	composer := NewComposer(records, kpi.NewInMemorySnapshotStore(), WithCache(cache))
	ctx := requestcontext.WithTime(context.Background(), today)

	first, err := composer.Compose(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	seedPending(t, records, 5)
	second, err := composer.Compose(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.LiveCounts, second.LiveCounts, "cached view is served as-is")
	assert.Equal(t, 1, cache.sets, "a cache hit skips recompute")
}
