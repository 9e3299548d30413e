// internal/dispatch/statusstore.go
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
)

const jobKeyPrefix = "dispatch:job:"

// RedisMirror keeps a write-behind JSON snapshot of each job so status
// survives a process restart long enough for operators to read it. The
// in-memory job is always authoritative while the process lives.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewRedisMirror(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisMirror {
	return &RedisMirror{
		client: client,
		ttl:    ttl,
		log:    log.WithFields(map[string]interface{}{"component": "job-mirror"}),
	}
}

// Save overwrites the snapshot for s.JobID.
func (m *RedisMirror) Save(ctx context.Context, s Summary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal job snapshot: %w", err)
	}
	if err := m.client.Set(ctx, jobKeyPrefix+s.JobID, payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write job snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot back, for status lookups of jobs the current process
// never owned.
func (m *RedisMirror) Load(ctx context.Context, jobID string) (Summary, error) {
	payload, err := m.client.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Summary{}, apperrors.NewJobNotFoundError(jobID)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read job snapshot: %w", err)
	}

	var s Summary
	if err := json.Unmarshal(payload, &s); err != nil {
		return Summary{}, fmt.Errorf("failed to decode job snapshot: %w", err)
	}
	return s, nil
}
