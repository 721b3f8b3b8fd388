package events

import (
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub(8)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(TypeDeliveryProcessed, map[string]string{"delivery_id": "d1"})

	select {
	case ev := <-ch:
		if ev.Type != TypeDeliveryProcessed {
			t.Errorf("Type = %q, want %q", ev.Type, TypeDeliveryProcessed)
		}
		if ev.ID != 1 {
			t.Errorf("ID = %d, want 1", ev.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestHubSnapshotSince(t *testing.T) {
	h := NewHub(4)
	for i := 0; i < 6; i++ {
		h.Publish(TypeDeliveryProcessed, nil)
	}

	// Ring holds the newest 4 events (ids 3..6).
	all := h.SnapshotSince(0)
	if len(all) != 4 {
		t.Fatalf("snapshot length = %d, want 4", len(all))
	}
	if all[0].ID != 3 || all[3].ID != 6 {
		t.Errorf("snapshot ids = %d..%d, want 3..6", all[0].ID, all[3].ID)
	}

	since := h.SnapshotSince(5)
	if len(since) != 1 || since[0].ID != 6 {
		t.Errorf("SnapshotSince(5) = %v, want single event id 6", since)
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(4)
	_, cancel := h.Subscribe()
	defer cancel()

	// Fill the subscriber channel beyond its buffer; Publish must not hang.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(TypeDeliveryRejected, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
