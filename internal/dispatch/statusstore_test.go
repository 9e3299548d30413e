// internal/dispatch/statusstore_test.go
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
	"card-dispatch/internal/guests"
)

func newTestMirror(t *testing.T) (*RedisMirror, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisMirror(client, time.Hour, logger.NewTest(t)), mr
}

func sampleSummary() Summary {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	return Summary{
		JobID:   "job-1",
		Channel: guests.ChannelEmail,
		Total:   2,
		Sent:    1,
		Pending: 1,
		Messages: []MessageStatus{
			{ID: "m1", GuestID: "g1", To: "a@x.com", Channel: guests.ChannelEmail, Status: StateSent, UpdatedAt: now},
			{ID: "m2", GuestID: "g2", To: "b@x.com", Channel: guests.ChannelEmail, Status: StatePending, UpdatedAt: now},
		},
		CreatedAt: now,
	}
}

func TestRedisMirror_SaveLoadRoundTrip(t *testing.T) {
	mirror, _ := newTestMirror(t)
	ctx := context.Background()

	s := sampleSummary()
	require.NoError(t, mirror.Save(ctx, s))

	got, err := mirror.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestRedisMirror_SaveSetsTTL(t *testing.T) {
	mirror, mr := newTestMirror(t)

	require.NoError(t, mirror.Save(context.Background(), sampleSummary()))
	assert.Greater(t, mr.TTL("dispatch:job:job-1"), time.Duration(0))
}

func TestRedisMirror_SaveOverwrites(t *testing.T) {
	mirror, _ := newTestMirror(t)
	ctx := context.Background()

	s := sampleSummary()
	require.NoError(t, mirror.Save(ctx, s))

	s.Sent = 2
	s.Pending = 0
	s.Done = true
	require.NoError(t, mirror.Save(ctx, s))

	got, err := mirror.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Sent)
	assert.True(t, got.Done)
}

func TestRedisMirror_SaveErrorPropagates(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mirror := NewRedisMirror(client, time.Hour, logger.NewTest(t))

	s := sampleSummary()
	payload, err := json.Marshal(s)
	require.NoError(t, err)

	mock.ExpectSet("dispatch:job:job-1", payload, time.Hour).SetErr(errors.New("connection refused"))

	err = mirror.Save(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write job snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisMirror_LoadUnknownJob(t *testing.T) {
	mirror, _ := newTestMirror(t)

	_, err := mirror.Load(context.Background(), "missing")
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeJobNotFound, stdErr.Code)
}
