// Package gallery persists card templates in redis so a design can be saved
// from the editor and reloaded later. Templates are stored whole as JSON;
// there is no partial update.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"card-dispatch/internal/canvas"
	"card-dispatch/internal/common/logger"
)

const (
	templateKeyPrefix = "gallery:template:"
	templateSetKey    = "gallery:templates"
)

// ErrTemplateNotFound is returned when no template exists under the given ID.
var ErrTemplateNotFound = errors.New("template not found")

// Entry is one saved template with its catalog metadata.
type Entry struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SavedAt  time.Time       `json:"savedAt"`
	Template canvas.Template `json:"template"`
}

// Store is the redis-backed template gallery.
type Store struct {
	client *redis.Client
	log    logger.Logger
}

func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		log:    log.WithFields(map[string]interface{}{"component": "gallery"}),
	}
}

// Save stores the template under a fresh ID and registers it in the catalog.
func (s *Store) Save(ctx context.Context, name string, t canvas.Template) (string, error) {
	entry := Entry{
		ID:       uuid.New().String(),
		Name:     name,
		SavedAt:  time.Now().UTC(),
		Template: t.Clone(),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to marshal template: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, templateKeyPrefix+entry.ID, payload, 0)
	pipe.SAdd(ctx, templateSetKey, entry.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to save template: %w", err)
	}

	s.log.Info("template saved", map[string]interface{}{
		"templateId": entry.ID,
		"name":       name,
		"items":      len(t.Items),
	})
	return entry.ID, nil
}

// Load returns one saved template by ID.
func (s *Store) Load(ctx context.Context, id string) (Entry, error) {
	payload, err := s.client.Get(ctx, templateKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrTemplateNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load template: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to decode template: %w", err)
	}
	return entry, nil
}

// List returns every catalog entry. Entries whose payload expired or was
// deleted out-of-band are dropped from the catalog as they are discovered.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	ids, err := s.client.SMembers(ctx, templateSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.Load(ctx, id)
		if errors.Is(err, ErrTemplateNotFound) {
			s.client.SRem(ctx, templateSetKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// Delete removes a template and its catalog entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, templateKeyPrefix+id)
	pipe.SRem(ctx, templateSetKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if del.Val() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
