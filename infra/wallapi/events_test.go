package wallapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"wallterm/app"
)

func TestSubscribe_DeliversEventsAndCloses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/walls/w1/events" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"type":"messageReceived","wallId":"w1","message":{"id":"m1","author":{"id":"u2","username":"alice"},"content":"hi","createdAt":"2026-08-30T10:00:00Z"}}` + "\n"))
		w.Write([]byte(`{"type":"videoProcessed","wallId":"w1","messageId":"m1","videoId":"v9","hlsPath":"/hls/v9/index.m3u8"}` + "\n"))
		w.Write([]byte(`{"type":"callReceived","wallId":"w1","caller":"bob"}` + "\n"))
	})

	ch, err := NewEventStream(client, "me").Subscribe(context.Background(), "w1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	var events []app.Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				goto done
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out with %d events", len(events))
		}
	}
done:
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Type != app.EventMessageReceived || events[0].Message.ID != "m1" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Type != app.EventVideoProcessed || events[1].VideoID != "v9" {
		t.Errorf("second event = %+v", events[1])
	}
	if events[2].Type != app.EventCallReceived || events[2].Caller != "bob" {
		t.Errorf("third event = %+v", events[2])
	}
}

func TestSubscribe_NonOKStatusFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := NewEventStream(client, "me").Subscribe(context.Background(), "w1"); err == nil {
		t.Fatalf("expected error for 403")
	}
}
