package netlink

import (
	"math/rand"
	"testing"
)

func TestDelayIncludesPropagationTime(t *testing.T) {
	l := New(5, 1000, 100, rand.New(rand.NewSource(1)))
	d := l.Delay(500)
	if d < 5 {
		t.Errorf("Delay = %v, want at least the fixed propagation time of 5", d)
	}
}

func TestNilLinkDelayIsZero(t *testing.T) {
	var l *Link
	if d := l.Delay(100); d != 0 {
		t.Errorf("nil Link should have zero delay, got %v", d)
	}
}
