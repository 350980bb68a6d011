package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitReturns runs fn and reports whether it returned within the timeout.
func waitReturns(fn func(), timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestProgressWait_ReturnsAfterAbortedBar(t *testing.T) {
	ui := NewUI(false, true)
	bar := ui.ProgressBar("working", 3)
	require.NotNil(t, bar)

	// An error path never completes the bar; aborting it must still unblock
	// the render loop's Wait.
	bar.Abort(true)
	assert.True(t, waitReturns(ui.progress.Wait, 2*time.Second),
		"Wait blocked on an aborted bar")
}

func TestProgressWait_ReturnsAfterCompletedBar(t *testing.T) {
	ui := NewUI(false, true)
	bar := ui.ProgressBar("working", 2)
	require.NotNil(t, bar)

	bar.SetCurrent(1)
	bar.SetTotal(-1, true)
	assert.True(t, waitReturns(ui.progress.Wait, 2*time.Second),
		"Wait blocked on a completed bar")
}

func TestUI_JSONModeSuppressesBars(t *testing.T) {
	ui := NewUI(true, true)
	assert.Nil(t, ui.ProgressBar("working", 1))
	ui.Close()
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "2.5s", FormatDuration(2500*time.Millisecond))
	assert.Equal(t, "1.5m", FormatDuration(90*time.Second))
}
