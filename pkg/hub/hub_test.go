package hub

import (
	"testing"
	"time"
)

func TestBroadcastReachesSubscribers(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	client := &Client{hub: h, send: make(chan []byte, sendBuffer)}
	h.register <- client

	if err := h.BroadcastJSON(map[string]string{"event": "scored"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	select {
	case msg := <-client.send:
		want := `{"event":"scored"}`
		if string(msg) != want {
			t.Errorf("got %s, want %s", msg, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}

	h.unregister <- client
}

func TestSlowClientDropped(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	// No buffer: the first undelivered broadcast marks the client slow.
	client := &Client{hub: h, send: make(chan []byte)}
	h.register <- client

	h.BroadcastJSON(map[string]int{"n": 1})

	deadline := time.After(time.Second)
	for h.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("slow client was not dropped")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// The hub closes the send channel of a dropped client.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}

func TestBroadcastJSONMarshalError(t *testing.T) {
	h := New("test", nil)
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected marshal error for unencodable value")
	}
}
