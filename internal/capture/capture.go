// Package capture tracks live answer capture for interview sessions: it
// accumulates recognized transcript fragments, watches microphone volume,
// and decides when an answer is finished.
//
// An answer auto-completes when the accumulated final transcript is longer
// than a minimum length and no new fragments have arrived for a quiet
// period. A manual stop short-circuits the quiet period; stopping with an
// empty transcript emits nothing.
package capture

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultQuietPeriod is how long the speaker must stay silent before an
	// answer is considered finished.
	DefaultQuietPeriod = 3500 * time.Millisecond
	// DefaultMinContentLength is the transcript length (in characters, after
	// trimming) that must be exceeded before the quiet period can fire.
	DefaultMinContentLength = 10
)

// Sentinel errors mirroring what a capture device can report.
var (
	ErrPermissionDenied = errors.New("capture: microphone permission denied")
	ErrDeviceNotFound   = errors.New("capture: no capture device found")
	ErrDeviceBusy       = errors.New("capture: capture device is busy")
)

// Answer is what a finished capture hands to its consumer.
type Answer struct {
	Transcript      string
	DurationSeconds int
	AutoCompleted   bool // true when the quiet-period heuristic fired
}

type Config struct {
	QuietPeriod      time.Duration // defaults to DefaultQuietPeriod
	MinContentLength int           // defaults to DefaultMinContentLength

	// OnAnswer is invoked at most once, when the capture completes with a
	// non-trivial transcript. Called without internal locks held.
	OnAnswer func(Answer)

	Clock func() time.Time
}

// Capture is the live state of one answer being recorded. All methods are
// safe for concurrent use; the expected callers are a websocket reader
// goroutine and the quiet-period timer.
type Capture struct {
	sessionID  string
	questionID string
	cfg        Config
	log        *logrus.Logger

	mu        sync.Mutex
	fragments []string
	interim   string
	volume    int
	startedAt time.Time
	timer     *time.Timer
	closed    bool
	answered  bool
}

// PushTranscript feeds one recognition fragment. Interim fragments only
// refresh the activity window; final fragments are appended to the answer
// transcript. Fragments arriving after the capture closed are dropped.
func (c *Capture) PushTranscript(text string, final bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if final {
		if t := strings.TrimSpace(text); t != "" {
			c.fragments = append(c.fragments, t)
		}
		c.interim = ""
	} else {
		c.interim = text
	}
	c.resetTimerLocked()
}

// PushVolume records the latest microphone level, clamped to 0-100. Volume
// alone never completes an answer.
func (c *Capture) PushVolume(level int) {
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	c.mu.Lock()
	if !c.closed {
		c.volume = level
	}
	c.mu.Unlock()
}

// PushError absorbs a recognition error. Transient recognizer failures must
// not lose the answer in progress, so the capture keeps running; only the
// device-level sentinels terminate it.
func (c *Capture) PushError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceNotFound) || errors.Is(err, ErrDeviceBusy) {
		c.log.WithError(err).WithField("session_id", c.sessionID).Warn("capture terminated by device error")
		c.mu.Lock()
		c.closeLocked()
		c.mu.Unlock()
		return
	}
	c.log.WithError(err).WithField("session_id", c.sessionID).Debug("transient recognition error")
}

// Stop ends the capture immediately. The accumulated transcript is emitted
// through OnAnswer if it is non-empty; a stop with nothing recognized is a
// no-op apart from closing the capture. The returned answer is nil when
// nothing was emitted.
func (c *Capture) Stop() *Answer {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	transcript := c.transcriptLocked()
	c.closeLocked()
	if c.answered || transcript == "" {
		c.mu.Unlock()
		return nil
	}
	c.answered = true
	a := c.answerLocked(transcript, false)
	c.mu.Unlock()

	if c.cfg.OnAnswer != nil {
		c.cfg.OnAnswer(a)
	}
	return &a
}

// Transcript returns the accumulated final transcript so far.
func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcriptLocked()
}

// Volume returns the most recent microphone level.
func (c *Capture) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *Capture) QuestionID() string { return c.questionID }

func (c *Capture) quietFired() {
	c.mu.Lock()
	if c.closed || c.answered {
		c.mu.Unlock()
		return
	}
	transcript := c.transcriptLocked()
	if len(transcript) <= c.cfg.MinContentLength {
		// too little content: keep listening, the window re-arms on the
		// next fragment
		c.mu.Unlock()
		return
	}
	c.answered = true
	c.closeLocked()
	a := c.answerLocked(transcript, true)
	c.mu.Unlock()

	if c.cfg.OnAnswer != nil {
		c.cfg.OnAnswer(a)
	}
}

func (c *Capture) transcriptLocked() string {
	return strings.TrimSpace(strings.Join(c.fragments, " "))
}

func (c *Capture) answerLocked(transcript string, auto bool) Answer {
	dur := int(c.cfg.Clock().Sub(c.startedAt).Seconds())
	if dur < 0 {
		dur = 0
	}
	return Answer{Transcript: transcript, DurationSeconds: dur, AutoCompleted: auto}
}

func (c *Capture) resetTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.QuietPeriod, c.quietFired)
}

func (c *Capture) closeLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.closed = true
}

// Manager tracks the active capture per session. A session has at most one
// capture at a time; starting a new one preempts the previous one.
type Manager struct {
	log *logrus.Logger

	mu     sync.Mutex
	active map[string]*Capture
}

func NewManager(log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{log: log, active: make(map[string]*Capture)}
}

// Acquire starts a capture for the given session and question. If the
// session already has a capture running it is stopped first, without
// emitting an answer; the new capture takes its place. A client abandoning
// an answer mid-way (or reconnecting after a drop) can therefore always
// start the next one.
func (m *Manager) Acquire(sessionID, questionID string, cfg Config) (*Capture, error) {
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = DefaultQuietPeriod
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = DefaultMinContentLength
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	c := &Capture{
		sessionID:  sessionID,
		questionID: questionID,
		cfg:        cfg,
		log:        m.log,
		startedAt:  cfg.Clock(),
	}

	m.mu.Lock()
	prev := m.active[sessionID]
	m.active[sessionID] = c
	m.mu.Unlock()

	if prev != nil {
		prev.mu.Lock()
		prev.closeLocked()
		prev.mu.Unlock()
	}
	return c, nil
}

// Release drops the session's capture registration. Safe to call whether or
// not a capture is active.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	c, ok := m.active[sessionID]
	delete(m.active, sessionID)
	m.mu.Unlock()
	if ok {
		c.mu.Lock()
		c.closeLocked()
		c.mu.Unlock()
	}
}

// Get returns the active capture for a session, if any.
func (m *Manager) Get(sessionID string) (*Capture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.active[sessionID]
	return c, ok
}
