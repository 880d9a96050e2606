//go:build integration

package audittrail_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
	"brandcert/pkg/testutil/containers"
)

type PostgresTrailSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	records  *certification.PostgresStore
	trail    *audittrail.PostgresStore
}

func TestPostgresTrailSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresTrailSuite))
}

func (s *PostgresTrailSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.records = certification.NewPostgresStore(s.postgres.DB)
	s.trail = audittrail.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresTrailSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"audit_entries", "certification_records")
	s.Require().NoError(err)
}

func (s *PostgresTrailSuite) seedRecord() id.RecordID {
	record := &certification.Record{
		ID:           id.NewRecordID(),
		BrandNumber:  "M-" + uuid.NewString(),
		OwnerName:    "Rosa Quispe",
		NationalID:   "7788990",
		Breed:        certification.BreedCriollo,
		Purpose:      certification.PurposeDairy,
		HeadCount:    40,
		Department:   certification.DeptBeni,
		Municipality: "Trinidad",
		Amount:       200_00,
		Status:       certification.StatusPending,
		RegisteredAt: time.Now().UTC(),
	}
	s.Require().NoError(s.records.Save(context.Background(), record))
	return record.ID
}

func (s *PostgresTrailSuite) entryFor(recordID id.RecordID, changedAt time.Time) audittrail.Entry {
	return audittrail.Entry{
		ID:             id.NewEntryID(),
		RecordID:       recordID,
		PreviousStatus: certification.StatusPending,
		NewStatus:      certification.StatusInReview,
		ChangedAt:      changedAt,
		Actor:          "inspector",
	}
}

func (s *PostgresTrailSuite) TestAppendAndListForRecord() {
	ctx := context.Background()
	recordID := s.seedRecord()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	first := s.entryFor(recordID, base)
	s.Require().NoError(s.trail.Append(ctx, first))

	second := audittrail.Entry{
		ID:             id.NewEntryID(),
		RecordID:       recordID,
		PreviousStatus: certification.StatusInReview,
		NewStatus:      certification.StatusApproved,
		ChangedAt:      base.Add(3 * time.Hour),
		Actor:          "supervisor",
		Notes:          "documentation complete",
	}
	s.Require().NoError(s.trail.Append(ctx, second))

	entries, err := s.trail.ListForRecord(ctx, recordID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(second.ID, entries[0].ID)
	s.Equal("documentation complete", entries[0].Notes)
	s.Equal(first.ID, entries[1].ID)
}

func (s *PostgresTrailSuite) TestAppendUnknownRecordFails() {
	entry := s.entryFor(id.NewRecordID(), time.Now().UTC())
	err := s.trail.Append(context.Background(), entry)
	s.True(dErrors.HasCode(err, dErrors.CodeIntegrity))
}

func (s *PostgresTrailSuite) TestListRecentHonorsSince() {
	ctx := context.Background()
	recordID := s.seedRecord()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	old := s.entryFor(recordID, base.Add(-48*time.Hour))
	s.Require().NoError(s.trail.Append(ctx, old))
	recent := s.entryFor(recordID, base)
	s.Require().NoError(s.trail.Append(ctx, recent))

	entries, err := s.trail.ListRecent(ctx, base.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(recent.ID, entries[0].ID)
}

func (s *PostgresTrailSuite) TestAggregates() {
	ctx := context.Background()
	recordID := s.seedRecord()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.trail.Append(ctx, s.entryFor(recordID, base)))
	s.Require().NoError(s.trail.Append(ctx, audittrail.Entry{
		ID:             id.NewEntryID(),
		RecordID:       recordID,
		PreviousStatus: certification.StatusInReview,
		NewStatus:      certification.StatusRejected,
		ChangedAt:      base.Add(26 * time.Hour),
		Actor:          "supervisor",
	}))

	byActor, err := s.trail.AggregateByActor(ctx)
	s.Require().NoError(err)
	s.Equal(1, byActor["inspector"])
	s.Equal(1, byActor["supervisor"])

	byDay, err := s.trail.AggregateByDay(ctx, base.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().Len(byDay, 2)
	s.True(byDay[0].Date.Before(byDay[1].Date))
	s.Equal(1, byDay[0].Count)
	s.Equal(1, byDay[1].Count)
}
