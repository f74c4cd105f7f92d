package timeutil

import (
	"testing"
	"time"
)

func TestParseInstantISO(t *testing.T) {
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	got, err := ParseInstant("2026-09-12T14:30:00Z", day)
	if err != nil {
		t.Fatalf("ParseInstant failed: %v", err)
	}
	if got.Hour() != 14 || got.Minute() != 30 {
		t.Errorf("expected 14:30, got %s", got)
	}
}

func TestParseInstantClockString(t *testing.T) {
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		in     string
		minute int
	}{
		{"2:30 PM", 14*60 + 30},
		{"2:30pm", 14*60 + 30},
		{"9:05 AM", 9*60 + 5},
		{"16:45", 16*60 + 45},
	}
	for _, tc := range cases {
		got, err := ParseInstant(tc.in, day)
		if err != nil {
			t.Errorf("ParseInstant(%q) failed: %v", tc.in, err)
			continue
		}
		if !SameDay(got, day) {
			t.Errorf("ParseInstant(%q) not anchored to day: %s", tc.in, got)
		}
		if MinuteOfDay(got) != tc.minute {
			t.Errorf("ParseInstant(%q) = minute %d, want %d", tc.in, MinuteOfDay(got), tc.minute)
		}
	}
}

func TestParseInstantRejectsGarbage(t *testing.T) {
	day := time.Now()
	for _, in := range []string{"", "   ", "whenever", "25:99"} {
		if _, err := ParseInstant(in, day); err == nil {
			t.Errorf("ParseInstant(%q) should fail", in)
		}
	}
}

func TestEffectiveWindow(t *testing.T) {
	start := time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	s, e, ok := EffectiveWindow(&start, &end)
	if !ok || !e.Equal(end) {
		t.Errorf("explicit end not honored: %s–%s ok=%v", s, e, ok)
	}

	s, e, ok = EffectiveWindow(&start, nil)
	if !ok || e.Sub(s) != DefaultDuration {
		t.Errorf("expected default duration window, got %s", e.Sub(s))
	}

	if _, _, ok := EffectiveWindow(nil, &end); ok {
		t.Error("window without start should not resolve")
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	a1 := time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC)
	a2 := a1.Add(time.Hour)
	b1 := a1.Add(30 * time.Minute)
	b2 := b1.Add(90 * time.Minute)

	if !Overlaps(a1, a2, b1, b2) {
		t.Error("overlapping intervals not detected")
	}
	if !Overlaps(b1, b2, a1, a2) {
		t.Error("overlap must be symmetric")
	}
	// Touching endpoints do not overlap
	if Overlaps(a1, a2, a2, a2.Add(time.Hour)) {
		t.Error("half-open intervals must not overlap at the boundary")
	}
}
