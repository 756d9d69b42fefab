package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventar/internal/auth"
	"ventar/internal/models"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bc := auth.NewBroadcaster()

	sub1 := bc.Subscribe()
	defer sub1.Close()
	sub2 := bc.Subscribe()
	defer sub2.Close()

	session := &models.Session{HostID: "h1"}
	seq := bc.Publish(auth.SignedIn, session)

	for _, sub := range []*auth.Subscription{sub1, sub2} {
		event := <-sub.C
		assert.Equal(t, auth.SignedIn, event.Type)
		assert.Equal(t, seq, event.Seq)
		assert.Equal(t, "h1", event.Session.HostID)
	}
}

func TestSequenceIsMonotonic(t *testing.T) {
	bc := auth.NewBroadcaster()

	first := bc.Publish(auth.SignedIn, nil)
	second := bc.Publish(auth.SignedOut, nil)

	assert.Greater(t, second, first)
	assert.Equal(t, second, bc.Seq())
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bc := auth.NewBroadcaster()
	sub := bc.Subscribe()
	defer sub.Close()

	// Overflow the buffer without draining; Publish must keep returning.
	for i := 0; i < 100; i++ {
		bc.Publish(auth.SignedIn, nil)
	}
	assert.Equal(t, uint64(100), bc.Seq())
}

func TestCloseStopsDelivery(t *testing.T) {
	bc := auth.NewBroadcaster()
	sub := bc.Subscribe()
	sub.Close()

	// The channel is closed; ranging over it terminates.
	_, open := <-sub.C
	require.False(t, open)

	// Publishing after a close does not panic.
	bc.Publish(auth.SignedOut, nil)

	// Closing twice is harmless.
	sub.Close()
}
