package registry

import (
	"strings"
	"testing"
)

type fakeWorld struct{ points int }

func (f fakeWorld) Points() int { return f.points }

func TestWriteTop5ReportRanksByPointsDescending(t *testing.T) {
	r := New(4)
	s1, err := r.Acquire(1, fakeWorld{points: 50})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	s2, err := r.Acquire(2, fakeWorld{points: 120})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer s1.Release()
	defer s2.Release()

	var buf strings.Builder
	if err := r.WriteTop5Report(&buf); err != nil {
		t.Fatalf("WriteTop5Report: %v", err)
	}

	out := buf.String()
	idx120 := strings.Index(out, "Client ID 2 - Points: 120")
	idx50 := strings.Index(out, "Client ID 1 - Points: 50")
	if idx120 < 0 || idx50 < 0 || idx120 > idx50 {
		t.Fatalf("expected client 2 (120 pts) ranked above client 1 (50 pts), got:\n%s", out)
	}
}

func TestWriteTop5ReportEmptyRegistry(t *testing.T) {
	r := New(4)
	var buf strings.Builder
	if err := r.WriteTop5Report(&buf); err != nil {
		t.Fatalf("WriteTop5Report: %v", err)
	}
	if !strings.Contains(buf.String(), "No active games") {
		t.Fatalf("expected a no-active-games line, got:\n%s", buf.String())
	}
}

func TestReleaseIsIdempotentAndFreesTheSlot(t *testing.T) {
	r := New(1)
	s, err := r.Acquire(1, fakeWorld{points: 1})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	s.Release()
	s.Release() // must not panic or double-free another slot

	if _, err := r.Acquire(2, fakeWorld{points: 2}); err != nil {
		t.Fatalf("expected the freed slot to be reusable: %v", err)
	}
}

func TestAcquireFailsWhenRegistryIsFull(t *testing.T) {
	r := New(1)
	if _, err := r.Acquire(1, fakeWorld{points: 1}); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := r.Acquire(2, fakeWorld{points: 2}); err == nil {
		t.Fatal("expected an error acquiring a slot in a full registry")
	}
}
