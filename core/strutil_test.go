package core

import "testing"

func TestItoa(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{25, "25"},
		{-40, "-40"},
		{100000, "100000"},
	}
	for _, tt := range tests {
		if got := itoa(tt.in); got != tt.want {
			t.Errorf("itoa(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHex8(t *testing.T) {
	tests := []struct {
		in   uint8
		want string
	}{
		{0x00, "0x00"},
		{0x68, "0x68"},
		{0xF8, "0xf8"},
	}
	for _, tt := range tests {
		if got := hex8(tt.in); got != tt.want {
			t.Errorf("hex8(%#x) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTraceRingWraps(t *testing.T) {
	var r TraceRing
	for i := 0; i < TraceRingSize+5; i++ {
		r.record(TraceEvent{Kind: EvtWrite, Value: uint8(i)})
	}

	events := r.Snapshot()
	if len(events) != TraceRingSize {
		t.Fatalf("Expected %d events, got %d", TraceRingSize, len(events))
	}
	if events[0].Value != 5 || events[0].Seq != 6 {
		t.Errorf("Expected oldest event value 5 seq 6, got value %d seq %d", events[0].Value, events[0].Seq)
	}
	last := events[len(events)-1]
	if last.Value != TraceRingSize+4 {
		t.Errorf("Expected newest event value %d, got %d", TraceRingSize+4, last.Value)
	}

	r.Clear()
	if n := len(r.Snapshot()); n != 0 {
		t.Errorf("Expected empty ring after Clear, got %d events", n)
	}
}
