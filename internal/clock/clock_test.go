// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_TimerFiresOnAdvance(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewFake(start)
	tm := c.NewTimer(time.Minute)

	c.Advance(30 * time.Second)
	select {
	case <-tm.C():
		t.Fatal("timer fired early")
	default:
	}

	c.Advance(30 * time.Second)
	select {
	case got := <-tm.C():
		assert.Equal(t, start.Add(time.Minute), got)
	default:
		t.Fatal("timer did not fire")
	}
	assert.Equal(t, 0, c.Timers())
}

func TestFake_StopAndReset(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	tm := c.NewTimer(time.Second)

	assert.True(t, tm.Stop())
	c.Advance(2 * time.Second)
	select {
	case <-tm.C():
		t.Fatal("stopped timer fired")
	default:
	}

	assert.False(t, tm.Reset(time.Second))
	assert.Equal(t, 1, c.Timers())
	c.Advance(time.Second)
	select {
	case <-tm.C():
	default:
		t.Fatal("reset timer did not fire")
	}
}

func TestFake_SetBackwards(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewFake(start)
	c.Set(start.Add(-time.Hour))
	assert.Equal(t, start.Add(-time.Hour), c.Now())
}
