package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "brandcert/pkg/domain-errors"
)

// IDs must be valid, non-empty, non-nil UUIDs at every trust boundary.
func TestParseRecordID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRecordID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRecordID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseRecordID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts valid UUID and round-trips", func(t *testing.T) {
		raw := uuid.New().String()
		id, err := ParseRecordID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
		assert.False(t, id.IsNil())
	})
}

func TestParseEntryID(t *testing.T) {
	raw := uuid.New().String()
	id, err := ParseEntryID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, id.String())

	_, err = ParseEntryID("nope")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestZeroIDIsNil(t *testing.T) {
	assert.True(t, RecordID{}.IsNil())
	assert.True(t, EntryID{}.IsNil())
	assert.False(t, NewRecordID().IsNil())
	assert.False(t, NewEntryID().IsNil())
}
