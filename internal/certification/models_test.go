package certification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "brandcert/pkg/domain"
	dErrors "brandcert/pkg/domain-errors"
)

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusInReview, StatusApproved, StatusRejected}
	legal := map[Status]map[Status]bool{
		StatusPending:  {StatusInReview: true, StatusApproved: true, StatusRejected: true},
		StatusInReview: {StatusApproved: true, StatusRejected: true},
		StatusApproved: {},
		StatusRejected: {},
	}

	// Exhaustive: every (from, to) pair must match the table exactly.
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[from][to], from.CanTransitionTo(to),
				"%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInReview.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("IN_REVIEW")
	require.NoError(t, err)
	assert.Equal(t, StatusInReview, st)

	_, err = ParseStatus("CANCELLED")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseEnums(t *testing.T) {
	_, err := ParsePurpose("MEAT")
	assert.NoError(t, err)
	_, err = ParsePurpose("WOOL")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = ParseBreed("NELORE")
	assert.NoError(t, err)
	_, err = ParseBreed("SHEEP")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = ParseDepartment("BENI")
	assert.NoError(t, err)
	_, err = ParseDepartment("MADRID")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func validRecord() *Record {
	return &Record{
		ID:           id.NewRecordID(),
		BrandNumber:  "M-0001",
		OwnerName:    "Juan Flores",
		NationalID:   "4578123",
		Breed:        BreedNelore,
		Purpose:      PurposeMeat,
		HeadCount:    50,
		Department:   DeptSantaCruz,
		Municipality: "Montero",
		Amount:       125000,
		Status:       StatusPending,
		RegisteredAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRecordValidate(t *testing.T) {
	t.Run("valid record passes", func(t *testing.T) {
		assert.NoError(t, validRecord().Validate())
	})

	t.Run("rejects zero head count", func(t *testing.T) {
		r := validRecord()
		r.HeadCount = 0
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		r := validRecord()
		r.Amount = -1
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("rejects empty brand number", func(t *testing.T) {
		r := validRecord()
		r.BrandNumber = ""
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("rejects processed_at before registered_at", func(t *testing.T) {
		r := validRecord()
		before := r.RegisteredAt.Add(-time.Hour)
		r.ProcessedAt = &before
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("rejects unknown enum values", func(t *testing.T) {
		r := validRecord()
		r.Status = Status("LOST")
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})
}
