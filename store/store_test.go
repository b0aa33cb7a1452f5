package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

func TestParseID(t *testing.T) {
	t.Run("valid hex id round-trips", func(t *testing.T) {
		want := bson.NewObjectID()
		got, err := parseID(want.Hex())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("malformed id is an ErrInvalidID, not a panic", func(t *testing.T) {
		cases := []string{
			"",
			"not-an-id",
			"12345",
			"zzzzzzzzzzzzzzzzzzzzzzzz",
			"68a1b2c3d4e5f6a7b8c9d0e1ff", // too long
		}
		for _, id := range cases {
			_, err := parseID(id)
			require.Error(t, err, "id %q", id)
			assert.ErrorIs(t, err, ErrInvalidID)
			assert.Contains(t, err.Error(), id)
		}
	})
}

func TestScheduleStatusIsTerminal(t *testing.T) {
	terminal := []ScheduleStatus{
		ScheduleStatusCompleted,
		ScheduleStatusFailed,
		ScheduleStatusCancelled,
	}
	for _, st := range terminal {
		assert.True(t, st.IsTerminal(), "%s should be terminal", st)
	}

	assert.False(t, ScheduleStatusPending.IsTerminal(), "pending should not be terminal")
}

func TestNewRequiresURI(t *testing.T) {
	_, err := New(context.Background(), Config{}, zap.NewNop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uri")
}

type captureRecorder struct {
	collection string
	operation  string
	duration   time.Duration
	calls      int
}

func (c *captureRecorder) RecordMongoOp(collection, operation string, duration time.Duration) {
	c.collection = collection
	c.operation = operation
	c.duration = duration
	c.calls++
}

func TestTimedRecordsOperation(t *testing.T) {
	rec := &captureRecorder{}
	s := &Store{logger: zap.NewNop(), rec: rec}

	done := s.timed("projects", "insert")
	time.Sleep(time.Millisecond)
	done()

	require.Equal(t, 1, rec.calls)
	assert.Equal(t, "projects", rec.collection)
	assert.Equal(t, "insert", rec.operation)
	assert.Greater(t, rec.duration, time.Duration(0))
}

func TestTimedWithoutRecorder(t *testing.T) {
	s := &Store{logger: zap.NewNop()}

	// Must not panic when no recorder is wired.
	s.timed("projects", "insert")()
}
