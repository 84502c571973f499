package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	h := NewHub(8)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(TypeFaultArmed, IntentPayload{
		IntentID: "intent-1",
		Label:    "PANIC",
		Source:   "api",
		RawLen:   6,
	})

	ev := <-ch
	assert.Equal(t, TypeFaultArmed, ev.Type)
	assert.Equal(t, int64(1), ev.ID)

	var got IntentPayload
	require.NoError(t, json.Unmarshal(ev.Data, &got))
	assert.Equal(t, "PANIC", got.Label)
	assert.Equal(t, "intent-1", got.IntentID)
}

func TestSnapshotSinceFiltersByID(t *testing.T) {
	h := NewHub(8)

	h.Publish(TypeHarnessStarted, StartedPayload{Armed: true})
	h.Publish(TypeCommandIgnored, IgnoredPayload{Command: "reboot", Source: "ctlfile"})
	h.Publish(TypeFaultRejected, RejectPayload{Reason: "too_large", Source: "api", RawLen: 512})

	all := h.SnapshotSince(0)
	require.Len(t, all, 3)
	assert.Equal(t, TypeHarnessStarted, all[0].Type)

	later := h.SnapshotSince(all[0].ID)
	require.Len(t, later, 2)
	assert.Equal(t, TypeCommandIgnored, later[0].Type)
	assert.Equal(t, TypeFaultRejected, later[1].Type)
}

func TestRingOverwritesOldestWhenFull(t *testing.T) {
	h := NewHub(2)

	h.Publish(TypeCommandIgnored, IgnoredPayload{Command: "a"})
	h.Publish(TypeCommandIgnored, IgnoredPayload{Command: "b"})
	h.Publish(TypeCommandIgnored, IgnoredPayload{Command: "c"})

	snap := h.SnapshotSince(0)
	require.Len(t, snap, 2)
	assert.Equal(t, int64(2), snap[0].ID)
	assert.Equal(t, int64(3), snap[1].ID)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub(4)
	ch, cancel := h.Subscribe()
	defer cancel()

	// The subscriber buffer holds 128; filling past it must not wedge.
	for range 200 {
		h.Publish(TypeCommandIgnored, nil)
	}

	assert.Len(t, ch, 128)
}

func TestCancelIsIdempotent(t *testing.T) {
	h := NewHub(4)
	_, cancel := h.Subscribe()

	cancel()
	assert.NotPanics(t, cancel)

	h.Publish(TypeHarnessStarted, nil)
}
