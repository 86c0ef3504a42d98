package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalLimiterRejectsInsideWindow(t *testing.T) {
	l := NewIntervalLimiter(30 * time.Second)

	assert.Zero(t, l.Wait(-100, 1), "first request proceeds")

	wait := l.Wait(-100, 1)
	assert.Greater(t, wait, time.Duration(0), "second request inside the window is rejected")
	assert.LessOrEqual(t, wait, 30*time.Second)

	// Rejections must not push the window further out.
	again := l.Wait(-100, 1)
	assert.Greater(t, again, time.Duration(0))
	assert.LessOrEqual(t, again, wait)
}

func TestIntervalLimiterKeysAreIndependent(t *testing.T) {
	l := NewIntervalLimiter(30 * time.Second)

	assert.Zero(t, l.Wait(-100, 1))
	assert.Zero(t, l.Wait(-100, 2), "different caller, same chat")
	assert.Zero(t, l.Wait(-200, 1), "same caller, different chat")
	assert.NotZero(t, l.Wait(-100, 1))
}

func TestIntervalLimiterAllowsAfterInterval(t *testing.T) {
	l := NewIntervalLimiter(10 * time.Millisecond)

	assert.Zero(t, l.Wait(-100, 1))
	time.Sleep(15 * time.Millisecond)
	assert.Zero(t, l.Wait(-100, 1))
}
