package kernel_test

import (
	"encoding/json"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID(t *testing.T) {
	t.Run("should generate distinct valid ids", func(t *testing.T) {
		a, b := kernel.NewUUID(), kernel.NewUUID()

		require.NoError(t, a.Validate())
		assert.False(t, a.IsEqual(b))
	})

	t.Run("should round trip through its string form", func(t *testing.T) {
		id := kernel.NewUUID()

		parsed, err := kernel.UUIDFromString(id.String())

		require.NoError(t, err)
		assert.True(t, id.IsEqual(parsed))
		assert.Equal(t, id.Raw(), parsed.Raw())
	})

	t.Run("should reject malformed strings", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject the nil uuid", func(t *testing.T) {
		_, err := kernel.UUIDFromRaw(uuid.Nil)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)

		var zero kernel.UUID
		require.Error(t, zero.Validate())
	})
}

func TestUUID_MarshalJSON(t *testing.T) {
	t.Run("should encode as a string", func(t *testing.T) {
		id := kernel.NewUUID()

		raw, err := json.Marshal(struct {
			ID kernel.UUID `json:"id"`
		}{ID: id})

		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(raw))
	})
}
