package tui

import "time"

// sessionState tracks the study session stopwatch.
type sessionState int

const (
	sessionStopped sessionState = iota
	sessionRunning
	sessionPaused
)

// sessionTimer measures a live study session. It holds no store: stopping
// hands the elapsed time back so the caller can log it.
type sessionTimer struct {
	now func() time.Time

	state     sessionState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newSessionTimer() sessionTimer {
	return sessionTimer{
		now:          time.Now,
		state:        sessionStopped,
		lastActivity: time.Now(),
		idleTimeout:  10 * time.Minute,
	}
}

func (t *sessionTimer) start() {
	if t.state != sessionStopped {
		return
	}
	now := t.now()
	t.state = sessionRunning
	t.startTime = now
	t.elapsed = 0
	t.pauseGap = 0
	t.lastActivity = now
	t.isIdle = false
}

// stop ends the session and returns its length, excluding paused time.
func (t *sessionTimer) stop() time.Duration {
	if t.state == sessionStopped {
		return 0
	}
	d := t.currentElapsed()
	t.state = sessionStopped
	t.elapsed = 0
	t.isIdle = false
	return d
}

func (t *sessionTimer) pause() {
	if t.state != sessionRunning {
		return
	}
	t.state = sessionPaused
	t.pausedAt = t.now()
}

func (t *sessionTimer) resume() {
	if t.state != sessionPaused {
		return
	}
	now := t.now()
	t.pauseGap += now.Sub(t.pausedAt)
	t.state = sessionRunning
	t.isIdle = false
	t.lastActivity = now
}

func (t *sessionTimer) toggle() {
	switch t.state {
	case sessionRunning:
		t.pause()
	case sessionPaused:
		t.resume()
	}
}

func (t *sessionTimer) tick() {
	if t.state != sessionRunning {
		return
	}
	now := t.now()
	t.elapsed = now.Sub(t.startTime) - t.pauseGap

	if now.Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
		t.isIdle = true
		t.pause()
		// The idle stretch does not count: the session ended at the last keypress.
		t.pausedAt = t.lastActivity
		t.elapsed = t.currentElapsed()
	}
}

func (t *sessionTimer) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == sessionPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t sessionTimer) running() bool {
	return t.state != sessionStopped
}

func (t sessionTimer) paused() bool {
	return t.state == sessionPaused
}

func (t sessionTimer) currentElapsed() time.Duration {
	switch t.state {
	case sessionStopped:
		return 0
	case sessionPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	default:
		return t.now().Sub(t.startTime) - t.pauseGap
	}
}
