package deliveryfsm

import (
	"testing"

	"fulfillment/internal/core/domain/model/delivery"

	"github.com/stretchr/testify/assert"
)

func TestEffects_MirrorWhitelist(t *testing.T) {
	for _, state := range delivery.States() {
		t.Run(state.String(), func(t *testing.T) {
			var actions []delivery.Action
			for _, a := range delivery.Actions() {
				if _, ok := effects[state][a]; ok {
					actions = append(actions, a)
				}
			}
			assert.ElementsMatch(t, delivery.Allowed(state), actions)
		})
	}
}
