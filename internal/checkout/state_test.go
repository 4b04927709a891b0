package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateBrowsing, StateVariantPrompt},
		{StateBrowsing, StatePaymentEntry},
		{StateVariantPrompt, StateBrowsing},
		{StatePaymentEntry, StateBrowsing},
		{StatePaymentEntry, StateSubmitting},
		{StateSubmitting, StateSuccess},
		{StateSubmitting, StateFailed},
		{StateSuccess, StateBrowsing},
		{StateFailed, StatePaymentEntry},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransitionTo(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	forbidden := []struct{ from, to State }{
		{StateBrowsing, StateSubmitting},
		{StateBrowsing, StateSuccess},
		{StateVariantPrompt, StatePaymentEntry},
		{StateVariantPrompt, StateSubmitting},
		{StateSubmitting, StateBrowsing},
		{StateSubmitting, StatePaymentEntry},
		{StateSuccess, StatePaymentEntry},
		{StateSuccess, StateSubmitting},
		{StateFailed, StateBrowsing},
		{StateFailed, StateSuccess},
	}
	for _, tc := range forbidden {
		assert.False(t, CanTransitionTo(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
