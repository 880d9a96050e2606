//go:build integration

package certification_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brandcert/internal/certification"
	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
	"brandcert/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *certification.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = certification.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"audit_entries", "logo_generations", "certification_records")
	s.Require().NoError(err)
}

func newTestRecord(brandNumber string) *certification.Record {
	return &certification.Record{
		ID:           id.NewRecordID(),
		BrandNumber:  brandNumber,
		OwnerName:    "Juan Mamani",
		NationalID:   "4567890",
		Breed:        certification.BreedNelore,
		Purpose:      certification.PurposeMeat,
		HeadCount:    120,
		Department:   certification.DeptSantaCruz,
		Municipality: "Montero",
		Amount:       350_00,
		Status:       certification.StatusPending,
		RegisteredAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestInsertAndGetRoundTrip() {
	ctx := context.Background()
	record := newTestRecord("M-" + uuid.NewString())

	s.Require().NoError(s.store.Save(ctx, record))
	s.Equal(1, record.Version)

	got, err := s.store.Get(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.BrandNumber, got.BrandNumber)
	s.Equal(record.OwnerName, got.OwnerName)
	s.Equal(certification.StatusPending, got.Status)
	s.Equal(record.HeadCount, got.HeadCount)
	s.Equal(record.Amount, got.Amount)
	s.True(got.RegisteredAt.Equal(record.RegisteredAt))
	s.Nil(got.ProcessedAt)
	s.Nil(got.ProcessingHours)
}

func (s *PostgresStoreSuite) TestGetUnknownRecord() {
	_, err := s.store.Get(context.Background(), id.NewRecordID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestDuplicateBrandNumberRejected() {
	ctx := context.Background()
	brandNumber := "M-" + uuid.NewString()

	s.Require().NoError(s.store.Save(ctx, newTestRecord(brandNumber)))

	err := s.store.Save(ctx, newTestRecord(brandNumber))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *PostgresStoreSuite) TestVersionConflictOnStaleUpdate() {
	ctx := context.Background()
	record := newTestRecord("M-" + uuid.NewString())
	s.Require().NoError(s.store.Save(ctx, record))

	stale := *record

	record.Status = certification.StatusInReview
	s.Require().NoError(s.store.Save(ctx, record))
	s.Equal(2, record.Version)

	stale.Status = certification.StatusRejected
	err := s.store.Save(ctx, &stale)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	got, err := s.store.Get(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(certification.StatusInReview, got.Status)
}

func (s *PostgresStoreSuite) TestUpdatePersistsTerminalFields() {
	ctx := context.Background()
	record := newTestRecord("M-" + uuid.NewString())
	s.Require().NoError(s.store.Save(ctx, record))

	processedAt := record.RegisteredAt.Add(30 * time.Hour)
	hours := 30
	record.Status = certification.StatusApproved
	record.ProcessedAt = &processedAt
	record.ProcessingHours = &hours
	s.Require().NoError(s.store.Save(ctx, record))

	got, err := s.store.Get(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(certification.StatusApproved, got.Status)
	s.Require().NotNil(got.ProcessedAt)
	s.True(got.ProcessedAt.Equal(processedAt))
	s.Require().NotNil(got.ProcessingHours)
	s.Equal(30, *got.ProcessingHours)
}

func (s *PostgresStoreSuite) TestListFilterAndOrder() {
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	older := newTestRecord("M-" + uuid.NewString())
	older.RegisteredAt = base
	s.Require().NoError(s.store.Save(ctx, older))

	newer := newTestRecord("M-" + uuid.NewString())
	newer.RegisteredAt = base.Add(2 * time.Hour)
	s.Require().NoError(s.store.Save(ctx, newer))

	beni := newTestRecord("M-" + uuid.NewString())
	beni.Department = certification.DeptBeni
	beni.RegisteredAt = base.Add(time.Hour)
	s.Require().NoError(s.store.Save(ctx, beni))

	all, err := s.store.List(ctx, certification.ListFilter{}, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(newer.ID, all[0].ID)
	s.Equal(older.ID, all[2].ID)

	santaCruz, err := s.store.List(ctx,
		certification.ListFilter{Department: certification.DeptSantaCruz}, 0, 0)
	s.Require().NoError(err)
	s.Len(santaCruz, 2)

	// Upper bound is exclusive: a record registered exactly at To is out.
	window, err := s.store.List(ctx, certification.ListFilter{
		RegisteredFrom: base,
		RegisteredTo:   base.Add(2 * time.Hour),
	}, 0, 0)
	s.Require().NoError(err)
	s.Len(window, 2)
}

func (s *PostgresStoreSuite) TestListPagination() {
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		record := newTestRecord("M-" + uuid.NewString())
		record.RegisteredAt = base.Add(time.Duration(i) * time.Hour)
		s.Require().NoError(s.store.Save(ctx, record))
	}

	page, err := s.store.List(ctx, certification.ListFilter{}, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.True(page[0].RegisteredAt.After(page[1].RegisteredAt))

	count, err := s.store.Count(ctx, certification.ListFilter{})
	s.Require().NoError(err)
	s.Equal(5, count)
}
