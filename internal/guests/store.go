// internal/guests/store.go
package guests

import (
	"context"
	"database/sql"

	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
)

// Store reads the guest list from the external event persistence service.
// Writes to that service stay outside this system; the dispatch pipeline only
// consumes Recipient rows.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.WithFields(map[string]interface{}{"component": "guest-store"}),
	}
}

// GuestsForEvent returns the guest list of one event in invitation order.
func (s *Store) GuestsForEvent(ctx context.Context, eventID string) ([]Guest, error) {
	const query = `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(location, ''), COALESCE(event_date, ''), COALESCE(event_time, ''),
		       COALESCE(channel, ''), valid
		FROM guests
		WHERE event_id = $1
		ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		s.log.Error("guest query failed", map[string]interface{}{
			"eventId": eventID,
			"error":   err,
		})
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}
	defer rows.Close()

	var out []Guest
	for rows.Next() {
		var g Guest
		var channel string
		if err := rows.Scan(&g.ID, &g.Name, &g.Email, &g.Phone,
			&g.Location, &g.Date, &g.Time, &channel, &g.Valid); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError(err)
		}
		g.Channel = Channel(channel)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError(err)
	}

	return out, nil
}
