package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBoardLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	b := NewBoardWithClock(Lifetime, clock.Now)

	assert.Equal(t, "", b.Current())

	b.Show("Gas estimated successfully")
	assert.Equal(t, "Gas estimated successfully", b.Current())

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, "Gas estimated successfully", b.Current())

	clock.Advance(time.Millisecond)
	assert.Equal(t, "", b.Current())
}

func TestBoardNewerNoticeRestartsLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	b := NewBoardWithClock(Lifetime, clock.Now)

	b.Show("Simulation successful")
	clock.Advance(2 * time.Second)
	b.Show("Transaction hash copied!")
	clock.Advance(2 * time.Second)

	assert.Equal(t, "Transaction hash copied!", b.Current())
}
