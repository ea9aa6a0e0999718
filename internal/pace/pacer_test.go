package pace

import (
	"testing"
	"time"
)

func TestPacerBounds(t *testing.T) {
	p := NewPacer(500*time.Millisecond, 2*time.Second)
	for i := 0; i < 1000; i++ {
		d := p.Next()
		if d < 500*time.Millisecond || d >= 2*time.Second {
			t.Fatalf("delay %v out of [500ms, 2s)", d)
		}
	}
}

func TestPacerDegenerateBounds(t *testing.T) {
	p := NewPacer(time.Second, time.Second)
	if d := p.Next(); d != time.Second {
		t.Errorf("equal bounds must return min, got %v", d)
	}

	// Max below min is clamped, not a panic.
	p = NewPacer(2*time.Second, time.Second)
	if d := p.Next(); d != 2*time.Second {
		t.Errorf("inverted bounds must clamp to min, got %v", d)
	}
}

func TestPacerWaitUsesInjectedSleep(t *testing.T) {
	p := NewPacer(10*time.Millisecond, 20*time.Millisecond)
	var slept time.Duration
	p.SetSleep(func(d time.Duration) { slept = d })

	p.Wait()
	if slept < 10*time.Millisecond || slept >= 20*time.Millisecond {
		t.Errorf("slept %v, want within bounds", slept)
	}
}
