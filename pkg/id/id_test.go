package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oklog/ulid/v2"
)

func TestNewIsValidULID(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := ulid.ParseStrict(s)
	require.NoError(t, err)
	assert.Len(t, s, 26)
}

func TestNewAtEncodesTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	parsed, err := ulid.ParseStrict(NewAt(at))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), parsed.Time())
}

func TestSameMillisecondIDsIncrease(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := NewAt(at)
	b := NewAt(at)
	assert.Less(t, a, b)
}
