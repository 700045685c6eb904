package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardAutoDismissesAfterDuration(t *testing.T) {
	c := newFakeClock()
	board := NewBoard(c, 5*time.Second)

	var reasons []CloseReason
	board.ShowWith(LevelInfo, "Saved", "task saved", func(r CloseReason) { reasons = append(reasons, r) })
	require.Len(t, board.Active(), 1)

	c.Advance(4999 * time.Millisecond)
	assert.Len(t, board.Active(), 1)

	c.Advance(time.Millisecond)
	assert.Empty(t, board.Active())
	assert.Equal(t, []CloseReason{ClosedExpired}, reasons)
}

func TestBoardDismissStopsTimer(t *testing.T) {
	c := newFakeClock()
	board := NewBoard(c, 0)

	var reasons []CloseReason
	id := board.ShowWith(LevelError, "Error", "could not save", func(r CloseReason) { reasons = append(reasons, r) })
	assert.True(t, board.Dismiss(id))
	assert.False(t, board.Dismiss(id))
	assert.Zero(t, c.Pending())

	c.Advance(DefaultToastDuration)
	assert.Equal(t, []CloseReason{ClosedByUser}, reasons)
}

func TestBoardDismissLatest(t *testing.T) {
	board := NewBoard(newFakeClock(), time.Second)
	assert.False(t, board.DismissLatest())

	board.Show(LevelInfo, "one", "")
	board.Show(LevelInfo, "two", "")
	require.True(t, board.DismissLatest())

	active := board.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "one", active[0].Title)
}
