package transcribe

import (
	"testing"
	"time"
)

func TestRecognitionStats_EmptySnapshot(t *testing.T) {
	s := NewRecognitionStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got count %d", snap.Count)
	}
}

func TestRecognitionStats_BasicAggregates(t *testing.T) {
	s := NewRecognitionStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		s.Record(ms)
	}
	snap := s.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected 5 samples, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Errorf("expected min 100 max 500, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Errorf("expected avg 300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Errorf("expected p50 300, got %f", snap.P50Ms)
	}
}

func TestRecognitionStats_NegativeClamped(t *testing.T) {
	s := NewRecognitionStats(time.Hour)
	s.Record(-5)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected negative duration clamped to 0, got %d", snap.MinMs)
	}
}

func TestRecognitionStats_WindowPruning(t *testing.T) {
	s := NewRecognitionStats(10 * time.Millisecond)
	s.Record(100)
	time.Sleep(25 * time.Millisecond)
	s.Record(200)
	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected old sample pruned, got %d samples", snap.Count)
	}
	if snap.MinMs != 200 {
		t.Errorf("expected surviving sample 200, got %d", snap.MinMs)
	}
}
