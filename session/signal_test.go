package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/verdantlabs/verdant/session"
)

func pending(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSignal_NotifyReachesAllSubscribers(t *testing.T) {
	sig := session.NewSignal()
	a, cancelA := sig.Subscribe()
	defer cancelA()
	b, cancelB := sig.Subscribe()
	defer cancelB()

	sig.Notify()

	assert.True(t, pending(a))
	assert.True(t, pending(b))
}

func TestSignal_DeliveriesCoalesce(t *testing.T) {
	sig := session.NewSignal()
	ch, cancel := sig.Subscribe()
	defer cancel()

	sig.Notify()
	sig.Notify()
	sig.Notify()

	assert.True(t, pending(ch), "one delivery expected")
	assert.False(t, pending(ch), "bursts must coalesce into a single pending delivery")
}

func TestSignal_ResetDropsPending(t *testing.T) {
	sig := session.NewSignal()
	ch, cancel := sig.Subscribe()
	defer cancel()

	sig.Notify()
	sig.Reset()

	assert.False(t, pending(ch), "reset must clear deliveries from the ended session")
}

func TestSignal_CancelledSubscriberIgnored(t *testing.T) {
	sig := session.NewSignal()
	ch, cancel := sig.Subscribe()
	cancel()

	sig.Notify()

	assert.False(t, pending(ch))
}
