package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"trend", "momentum", "asian", "noop"} {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := ByName("martingale")
	assert.Error(t, err)
}

func TestNamesSorted(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"asian", "momentum", "noop", "trend"}, Names())
}

func TestProfileInSession(t *testing.T) {
	t.Parallel()

	always := Profile{}
	assert.True(t, always.InSession(0))
	assert.True(t, always.InSession(23))

	day := Profile{EntryStartHour: 7, EntryEndHour: 18}
	assert.False(t, day.InSession(6))
	assert.True(t, day.InSession(7))
	assert.True(t, day.InSession(17))
	assert.False(t, day.InSession(18))

	overnight := Profile{EntryStartHour: 22, EntryEndHour: 2}
	assert.True(t, overnight.InSession(23))
	assert.True(t, overnight.InSession(1))
	assert.False(t, overnight.InSession(12))
}

func TestNoopNeverSignals(t *testing.T) {
	t.Parallel()

	s := NewNoop()
	for hour := 0; hour < 24; hour++ {
		s.Update(hourBar(hour, 2000, 2010, 1990, 2005))
		assert.Equal(t, Hold, s.Signal())
	}
}
