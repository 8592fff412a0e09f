package rate

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	interval := 20 * time.Millisecond
	l := NewLimiter(1, interval, time.Hour)
	defer l.Stop()

	phone := "+15550001111"

	if !l.Allow(phone) {
		t.Fatal("first attempt should be allowed")
	}
	if l.Allow(phone) {
		t.Fatal("second attempt within the interval should be throttled")
	}
	if !l.Allow("+15550002222") {
		t.Fatal("keys should be throttled independently")
	}

	time.Sleep(interval + 10*time.Millisecond)

	if !l.Allow(phone) {
		t.Fatal("attempt after the interval should be allowed")
	}
}

func TestLimiterWithBurst(t *testing.T) {
	l := NewLimiter(3, time.Hour, time.Hour)
	defer l.Stop()

	phone := "+15550001111"
	expected := []bool{true, true, true, false, false}

	for i, exp := range expected {
		if got := l.Allow(phone); got != exp {
			t.Fatalf("attempt %d: expected %v, got %v", i, exp, got)
		}
	}
}

func TestLimiterEvict(t *testing.T) {
	l := NewLimiter(1, time.Hour, time.Minute)
	defer l.Stop()

	l.Allow("a")
	l.evict(time.Now().Add(2 * time.Minute))

	l.mu.Lock()
	n := len(l.keys)
	l.mu.Unlock()

	if n != 0 {
		t.Fatalf("expected idle keys to be evicted, %d left", n)
	}
	if !l.Allow("a") {
		t.Fatal("evicted key should start with a fresh bucket")
	}
}
