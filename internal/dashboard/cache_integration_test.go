//go:build integration

package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"brandcert/internal/dashboard"
	"brandcert/internal/kpi"
	"brandcert/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func sampleView() *dashboard.View {
	return &dashboard.View{
		Available: true,
		Snapshot: &kpi.Snapshot{
			Date:            time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			RegisteredCount: 3,
			ApprovedCount:   2,
			PendingCount:    1,
			ApprovalRate:    100,
			Purposes:        kpi.PurposeDistribution{Meat: 3},
			Departments:     kpi.DepartmentDistribution{SantaCruz: 3},
		},
		LiveCounts:  dashboard.LiveCounts{Pending: 4, InReview: 2},
		GeneratedAt: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *RedisCacheSuite) TestSetAndGetRoundTrip() {
	ctx := context.Background()
	cache := dashboard.NewRedisCache(s.redis.Client)

	view := sampleView()
	s.Require().NoError(cache.Set(ctx, view))

	got, ok, err := cache.Get(ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(view.LiveCounts, got.LiveCounts)
	s.Require().NotNil(got.Snapshot)
	s.Equal(3, got.Snapshot.RegisteredCount)
	s.True(got.GeneratedAt.Equal(view.GeneratedAt))
}

func (s *RedisCacheSuite) TestEmptyCacheIsAMiss() {
	_, ok, err := dashboard.NewRedisCache(s.redis.Client).Get(context.Background())
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisCacheSuite) TestCorruptEntryIsAMiss() {
	ctx := context.Background()
	err := s.redis.Client.Set(ctx, "brandcert:dashboard:view", "{not json", 0).Err()
	s.Require().NoError(err)

	_, ok, err := dashboard.NewRedisCache(s.redis.Client).Get(ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisCacheSuite) TestEntryExpires() {
	ctx := context.Background()
	cache := dashboard.NewRedisCache(s.redis.Client,
		dashboard.WithTTL(100*time.Millisecond))

	s.Require().NoError(cache.Set(ctx, sampleView()))
	time.Sleep(200 * time.Millisecond)

	_, ok, err := cache.Get(ctx)
	s.Require().NoError(err)
	s.False(ok)
}
