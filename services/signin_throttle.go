package services

import (
	"math"
	"sync"
	"time"
)

// SignInCooldownCapSeconds bounds the exponential cooldown.
const SignInCooldownCapSeconds = 30

type throttleEntry struct {
	failCount     int
	cooldownUntil time.Time
}

// SignInThrottle slows down repeated failed sign-ins per Telegram user. A
// failure sets a cooldown of min(30, 2^failCount) seconds; a success resets it.
type SignInThrottle struct {
	mu      sync.Mutex
	entries map[int64]throttleEntry
	now     func() time.Time
}

func NewSignInThrottle() *SignInThrottle {
	return &SignInThrottle{entries: make(map[int64]throttleEntry), now: time.Now}
}

// WaitSeconds returns how long tgUserID must wait before trying again (0 if no cooldown).
func (t *SignInThrottle) WaitSeconds(tgUserID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[tgUserID]
	if !ok {
		return 0
	}
	now := t.now()
	if now.Before(e.cooldownUntil) {
		return int(e.cooldownUntil.Sub(now).Seconds()) + 1 // round up
	}
	return 0
}

// Failed records a failed attempt and returns the new cooldown in seconds.
func (t *SignInThrottle) Failed(tgUserID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entries[tgUserID]
	e.failCount++
	secs := CooldownSecondsForFailCount(e.failCount)
	e.cooldownUntil = t.now().Add(time.Duration(secs) * time.Second)
	t.entries[tgUserID] = e
	return secs
}

// Succeeded forgets every failure recorded for tgUserID.
func (t *SignInThrottle) Succeeded(tgUserID int64) {
	t.mu.Lock()
	delete(t.entries, tgUserID)
	t.mu.Unlock()
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > SignInCooldownCapSeconds {
		return SignInCooldownCapSeconds
	}
	return s
}
