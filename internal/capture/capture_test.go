package capture

import (
	"errors"
	"testing"
	"time"
)

func waitAnswer(t *testing.T, ch <-chan Answer, timeout time.Duration) Answer {
	t.Helper()
	select {
	case a := <-ch:
		return a
	case <-time.After(timeout):
		t.Fatal("timed out waiting for answer")
		return Answer{}
	}
}

func assertNoAnswer(t *testing.T, ch <-chan Answer, wait time.Duration) {
	t.Helper()
	select {
	case a := <-ch:
		t.Fatalf("unexpected answer emitted: %+v", a)
	case <-time.After(wait):
	}
}

func TestQuietPeriodCompletesAnswer(t *testing.T) {
	m := NewManager(nil)
	got := make(chan Answer, 1)
	c, err := m.Acquire("s1", "q1", Config{
		QuietPeriod: 30 * time.Millisecond,
		OnAnswer:    func(a Answer) { got <- a },
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	c.PushTranscript("I worked on a distributed billing system", true)

	a := waitAnswer(t, got, time.Second)
	if !a.AutoCompleted {
		t.Fatal("expected auto-completed answer")
	}
	if a.Transcript != "I worked on a distributed billing system" {
		t.Fatalf("transcript = %q", a.Transcript)
	}
}

func TestQuietPeriodRequiresMinimumContent(t *testing.T) {
	m := NewManager(nil)
	got := make(chan Answer, 1)
	c, err := m.Acquire("s1", "q1", Config{
		QuietPeriod: 20 * time.Millisecond,
		OnAnswer:    func(a Answer) { got <- a },
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// ten characters exactly: at the bound, must NOT fire
	c.PushTranscript("ten chars.", true)
	assertNoAnswer(t, got, 100*time.Millisecond)

	// more content arrives, window re-arms and now exceeds the bound
	c.PushTranscript("and then some more detail", true)
	a := waitAnswer(t, got, time.Second)
	if a.Transcript != "ten chars. and then some more detail" {
		t.Fatalf("transcript = %q", a.Transcript)
	}
}

func TestInterimFragmentsNeverComplete(t *testing.T) {
	m := NewManager(nil)
	got := make(chan Answer, 1)
	c, err := m.Acquire("s1", "q1", Config{
		QuietPeriod: 20 * time.Millisecond,
		OnAnswer:    func(a Answer) { got <- a },
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	c.PushTranscript("this is a long interim hypothesis that keeps changing", false)
	assertNoAnswer(t, got, 100*time.Millisecond)
}

func TestManualStopShortCircuits(t *testing.T) {
	m := NewManager(nil)
	got := make(chan Answer, 1)
	c, err := m.Acquire("s1", "q1", Config{
		QuietPeriod: time.Hour, // heuristic can never fire
		OnAnswer:    func(a Answer) { got <- a },
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	c.PushTranscript("short", true)
	a := c.Stop()
	if a == nil || a.AutoCompleted {
		t.Fatalf("Stop answer = %+v, want manual answer", a)
	}
	if a.Transcript != "short" {
		t.Fatalf("transcript = %q", a.Transcript)
	}
	waitAnswer(t, got, time.Second)
}

func TestManualStopWithEmptyTranscriptIsNoOp(t *testing.T) {
	m := NewManager(nil)
	got := make(chan Answer, 1)
	c, err := m.Acquire("s1", "q1", Config{
		OnAnswer: func(a Answer) { got <- a },
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	c.PushTranscript("   ", true) // whitespace-only recognitions are dropped
	if a := c.Stop(); a != nil {
		t.Fatalf("Stop on empty capture emitted %+v", a)
	}
	assertNoAnswer(t, got, 50*time.Millisecond)

	// capture is closed now, late fragments are dropped
	c.PushTranscript("too late", true)
	if got := c.Transcript(); got != "" {
		t.Fatalf("transcript after close = %q", got)
	}
}

func TestAcquirePreemptsActiveCapture(t *testing.T) {
	m := NewManager(nil)
	got := make(chan Answer, 1)
	first, err := m.Acquire("s1", "q1", Config{
		QuietPeriod: 20 * time.Millisecond,
		OnAnswer:    func(a Answer) { got <- a },
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	first.PushTranscript("an answer the speaker abandoned half-way through", true)

	second, err := m.Acquire("s1", "q2", Config{})
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if second.QuestionID() != "q2" {
		t.Fatalf("question = %q, want q2", second.QuestionID())
	}
	if c, ok := m.Get("s1"); !ok || c != second {
		t.Fatal("new capture not registered for the session")
	}

	// the preempted capture is closed without emitting: its quiet period
	// never fires and late fragments are dropped
	assertNoAnswer(t, got, 100*time.Millisecond)
	first.PushTranscript("too late", true)
	if tr := first.Transcript(); tr != "an answer the speaker abandoned half-way through" {
		t.Fatalf("preempted transcript = %q", tr)
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	m := NewManager(nil)
	if _, err := m.Acquire("s1", "q1", Config{}); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	m.Release("s1")
	if _, ok := m.Get("s1"); ok {
		t.Fatal("capture still registered after Release")
	}
	if _, err := m.Acquire("s1", "q2", Config{}); err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
}

func TestVolumeClamped(t *testing.T) {
	m := NewManager(nil)
	c, err := m.Acquire("s1", "q1", Config{})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	c.PushVolume(250)
	if v := c.Volume(); v != 100 {
		t.Fatalf("volume = %d, want 100", v)
	}
	c.PushVolume(-5)
	if v := c.Volume(); v != 0 {
		t.Fatalf("volume = %d, want 0", v)
	}
}

func TestTransientErrorsAbsorbed(t *testing.T) {
	m := NewManager(nil)
	c, err := m.Acquire("s1", "q1", Config{QuietPeriod: time.Hour})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	c.PushTranscript("partial answer before a glitch", true)
	c.PushError(errors.New("recognizer hiccup"))
	c.PushTranscript("and after it", true)

	if got := c.Transcript(); got != "partial answer before a glitch and after it" {
		t.Fatalf("transcript = %q", got)
	}

	// device-level errors terminate the capture
	c.PushError(ErrPermissionDenied)
	c.PushTranscript("dropped", true)
	if got := c.Transcript(); got != "partial answer before a glitch and after it" {
		t.Fatalf("transcript after device error = %q", got)
	}
}
