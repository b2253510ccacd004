package guard_test

import (
	"errors"
	"testing"

	"fulfillment/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("quote must be created via NewQuote")

	t.Run("should pass for a constructed guard", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("should return the supplied error for a zero value", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, errNotConstructed, g.Validate(errNotConstructed))
	})

	t.Run("should fall back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, guard.ErrDefaultConstructorGuard, g.Validate(nil))
	})
}

func TestConstructorGuard_Embedded(t *testing.T) {
	type quote struct {
		carrier string
		guard   guard.ConstructorGuard
	}
	errQuote := errors.New("quote is not constructed")

	newQuote := func(carrier string) quote {
		return quote{carrier: carrier, guard: guard.NewConstructorGuard()}
	}

	t.Run("should accept values built by the constructor", func(t *testing.T) {
		q := newQuote("olva")
		require.NoError(t, q.guard.Validate(errQuote))
	})

	t.Run("should reject struct literals", func(t *testing.T) {
		q := quote{carrier: "olva"}
		require.ErrorIs(t, q.guard.Validate(errQuote), errQuote)
	})
}
