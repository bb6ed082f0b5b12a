package watch

import (
	"testing"
	"time"
)

func drain(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestSubscribeReplaysHistory(t *testing.T) {
	h := NewHub(time.Minute)
	h.Open("r1")
	h.Publish("r1", Event{Kind: EventAttempt, Word: "atlas", Attempt: 1})
	h.Publish("r1", Event{Kind: EventAttempt, Word: "atlas", Attempt: 2})

	ch, cancel, ok := h.Subscribe("r1")
	if !ok {
		t.Fatalf("Subscribe: stream not found")
	}
	defer cancel()

	for want := 1; want <= 2; want++ {
		select {
		case ev := <-ch:
			if ev.Attempt != want {
				t.Errorf("replayed attempt = %d, want %d", ev.Attempt, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for replayed event %d", want)
		}
	}
}

func TestTerminalEventClosesSubscribers(t *testing.T) {
	h := NewHub(time.Minute)
	h.Open("r1")

	ch, cancel, ok := h.Subscribe("r1")
	if !ok {
		t.Fatalf("Subscribe: stream not found")
	}
	defer cancel()

	h.Publish("r1", Event{Kind: EventAttempt, Attempt: 1})
	h.Publish("r1", Event{Kind: EventAccepted})

	got := drain(ch)
	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if !got[len(got)-1].Terminal() {
		t.Errorf("last event = %+v, want terminal", got[len(got)-1])
	}
}

func TestSubscribeAfterTerminalReplaysThenCloses(t *testing.T) {
	h := NewHub(time.Minute)
	h.Open("r1")
	h.Publish("r1", Event{Kind: EventAttempt, Attempt: 1})
	h.Publish("r1", Event{Kind: EventExhausted})

	ch, _, ok := h.Subscribe("r1")
	if !ok {
		t.Fatalf("Subscribe after terminal: stream not found")
	}
	got := drain(ch)
	if len(got) != 2 || got[0].Kind != EventAttempt || got[1].Kind != EventExhausted {
		t.Errorf("replay after terminal = %+v", got)
	}
}

func TestSubscribeUnknownID(t *testing.T) {
	h := NewHub(time.Minute)
	if _, _, ok := h.Subscribe("nope"); ok {
		t.Errorf("Subscribe on unknown id reported ok")
	}
}

func TestSlowSubscriberDropsOldestNotNewest(t *testing.T) {
	h := NewHub(time.Minute)
	h.Open("r1")

	ch, cancel, ok := h.Subscribe("r1")
	if !ok {
		t.Fatalf("Subscribe: stream not found")
	}
	defer cancel()

	const published = 12
	for i := 1; i <= published; i++ {
		h.Publish("r1", Event{Kind: EventAttempt, Attempt: i})
	}
	h.Publish("r1", Event{Kind: EventAccepted})

	got := drain(ch)
	if len(got) >= published+1 {
		t.Fatalf("slow subscriber received all %d events, expected drops", len(got))
	}
	if len(got) == 0 || !got[len(got)-1].Terminal() {
		t.Errorf("newest (terminal) event was dropped: %+v", got)
	}
}

func TestCancelDetachesSubscriber(t *testing.T) {
	h := NewHub(time.Minute)
	h.Open("r1")

	ch, cancel, ok := h.Subscribe("r1")
	if !ok {
		t.Fatalf("Subscribe: stream not found")
	}
	cancel()
	cancel() // second call must be harmless

	if _, open := <-ch; open {
		t.Errorf("channel still open after cancel")
	}
	// Publishing after cancel must not panic on the closed channel.
	h.Publish("r1", Event{Kind: EventAttempt, Attempt: 1})
}

func TestStreamForgottenAfterRetention(t *testing.T) {
	h := NewHub(20 * time.Millisecond)
	h.Open("r1")
	h.Publish("r1", Event{Kind: EventFailed, Error: "provider down"})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, _, ok := h.Subscribe("r1"); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stream still subscribable after retention window")
}

func TestPublishBeforeOpenIsNoop(t *testing.T) {
	h := NewHub(time.Minute)
	h.Publish("ghost", Event{Kind: EventAttempt})
	if _, _, ok := h.Subscribe("ghost"); ok {
		t.Errorf("publish must not create streams")
	}
}
