package events

import (
	"testing"
)

func TestBusEmitDeliversToSubscribers(t *testing.T) {
	b := NewBus()
	var got []Event
	b.Subscribe(func(e Event) { got = append(got, e) })

	b.Emit(Event{Type: JobSubmitted, JobID: "job-1"})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].JobID != "job-1" {
		t.Errorf("expected job-1, got %q", got[0].JobID)
	}
	if got[0].Time.IsZero() {
		t.Error("expected Emit to stamp a non-zero Time")
	}
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	count := 0
	unsubscribe := b.Subscribe(func(Event) { count++ })

	b.Emit(Event{Type: JobSubmitted})
	unsubscribe()
	b.Emit(Event{Type: JobSubmitted})

	if count != 1 {
		t.Errorf("expected 1 delivery before unsubscribe, got %d", count)
	}
}

func TestBusFansOutToAllSubscribers(t *testing.T) {
	b := NewBus()
	var a, c int
	b.Subscribe(func(Event) { a++ })
	b.Subscribe(func(Event) { c++ })

	b.Emit(Event{Type: ExecutionStarted})

	if a != 1 || c != 1 {
		t.Errorf("expected both subscribers called once, got a=%d c=%d", a, c)
	}
}

func TestEventIsFailure(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected bool
	}{
		{"explicit err", Event{Type: ExecutionCompleted, Err: "boom"}, true},
		{"failed suffix", Event{Type: ExecutionFailed}, true},
		{"success", Event{Type: ExecutionCompleted}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsFailure(); got != tt.expected {
				t.Errorf("IsFailure() = %v, want %v", got, tt.expected)
			}
		})
	}
}
