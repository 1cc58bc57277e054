package clock

import (
	"strings"
	"testing"
	"time"
)

func TestFormat_TrailingZ(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := Format(ts)
	if !strings.HasSuffix(got, "Z") {
		t.Fatalf("expected trailing Z, got %q", got)
	}
}

func TestFake_AdvanceIsMonotonicWithinTest(t *testing.T) {
	f := NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	first := f.Now()
	f.Advance(time.Second)
	second := f.Now()
	if !second.After(first) {
		t.Fatalf("expected %v to be after %v", second, first)
	}
}
