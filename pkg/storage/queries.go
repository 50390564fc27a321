package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// EventQuery represents query parameters for retrieving events
type EventQuery struct {
	Limit     int
	Offset    int
	AfterID   int64
	Since     *time.Time
	Until     *time.Time
	SessionID string
	Kind      string
	Source    string
	// Oldest first instead of newest first
	Ascending bool
}

// EventStats summarizes the journal
type EventStats struct {
	TotalEvents  int            `json:"total_events"`
	StoredEvents int            `json:"stored_events"`
	ByKind       map[string]int `json:"by_kind"`
	Sessions     int            `json:"sessions"`
	LastCleanup  time.Time      `json:"last_cleanup"`
}

// FrequencyPoint is one entry of the frequency history
type FrequencyPoint struct {
	Timestamp time.Time `json:"timestamp"`
	VFO       string    `json:"vfo"`
	Frequency int64     `json:"frequency"`
}

const eventColumns = `id, session_id, timestamp, kind, source, vfo, frequency, mode, width, detail`

func scanEvents(rows *sql.Rows) ([]RigEvent, error) {
	defer rows.Close()

	var events []RigEvent
	for rows.Next() {
		var ev RigEvent
		var session sql.NullString
		err := rows.Scan(
			&ev.ID,
			&session,
			&ev.Timestamp,
			&ev.Kind,
			&ev.Source,
			&ev.VFO,
			&ev.Frequency,
			&ev.Mode,
			&ev.Width,
			&ev.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.SessionID = session.String
		events = append(events, ev)
	}

	return events, rows.Err()
}

// GetEvents retrieves events based on query parameters
func (es *EventStore) GetEvents(query EventQuery) ([]RigEvent, error) {
	var args []interface{}
	sqlQuery := "SELECT " + eventColumns + " FROM rig_events WHERE 1=1"

	if query.AfterID > 0 {
		sqlQuery += " AND id > ?"
		args = append(args, query.AfterID)
	}
	if query.Since != nil {
		sqlQuery += " AND timestamp >= ?"
		args = append(args, query.Since.UTC())
	}
	if query.Until != nil {
		sqlQuery += " AND timestamp <= ?"
		args = append(args, query.Until.UTC())
	}
	if query.SessionID != "" {
		sqlQuery += " AND session_id = ?"
		args = append(args, query.SessionID)
	}
	if query.Kind != "" {
		sqlQuery += " AND kind = ?"
		args = append(args, query.Kind)
	}
	if query.Source != "" {
		sqlQuery += " AND source = ?"
		args = append(args, query.Source)
	}

	if query.Ascending {
		sqlQuery += " ORDER BY id ASC"
	} else {
		sqlQuery += " ORDER BY id DESC"
	}

	if query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)

		if query.Offset > 0 {
			sqlQuery += " OFFSET ?"
			args = append(args, query.Offset)
		}
	}

	rows, err := es.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return scanEvents(rows)
}

// RecentEvents returns the newest events first
func (es *EventStore) RecentEvents(limit int) ([]RigEvent, error) {
	return es.GetEvents(EventQuery{Limit: limit})
}

// EventsSince returns events stored after id, oldest first
func (es *EventStore) EventsSince(id int64, limit int) ([]RigEvent, error) {
	return es.GetEvents(EventQuery{AfterID: id, Limit: limit, Ascending: true})
}

// EventsBySession returns the events of one session, newest first
func (es *EventStore) EventsBySession(session string, limit int) ([]RigEvent, error) {
	return es.GetEvents(EventQuery{SessionID: session, Limit: limit})
}

// FrequencyHistory lists frequency changes, newest first
func (es *EventStore) FrequencyHistory(limit int) ([]FrequencyPoint, error) {
	query := `
		SELECT timestamp, vfo, frequency
		FROM rig_events
		WHERE kind = 'freq'
		ORDER BY id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := es.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query frequency history: %w", err)
	}
	defer rows.Close()

	var points []FrequencyPoint
	for rows.Next() {
		var p FrequencyPoint
		if err := rows.Scan(&p.Timestamp, &p.VFO, &p.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan frequency: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// GetSession retrieves one session
func (es *EventStore) GetSession(id string) (*Session, error) {
	var s Session
	var closed sql.NullTime
	err := es.db.QueryRow(
		"SELECT id, model, device, opened_at, closed_at FROM sessions WHERE id = ?", id,
	).Scan(&s.ID, &s.Model, &s.Device, &s.OpenedAt, &closed)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	if closed.Valid {
		s.ClosedAt = &closed.Time
	}
	return &s, nil
}

// ListSessions returns sessions, newest first
func (es *EventStore) ListSessions(limit int) ([]Session, error) {
	query := "SELECT id, model, device, opened_at, closed_at FROM sessions ORDER BY opened_at DESC, rowid DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := es.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var closed sql.NullTime
		if err := rows.Scan(&s.ID, &s.Model, &s.Device, &s.OpenedAt, &closed); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if closed.Valid {
			t := closed.Time
			s.ClosedAt = &t
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Stats retrieves journal statistics
func (es *EventStore) Stats() (*EventStats, error) {
	stats := EventStats{ByKind: make(map[string]int)}
	var lastCleanup sql.NullTime

	err := es.db.QueryRow(
		"SELECT total_events, last_cleanup FROM event_stats WHERE id = 1",
	).Scan(&stats.TotalEvents, &lastCleanup)
	if err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}
	if lastCleanup.Valid {
		stats.LastCleanup = lastCleanup.Time
	}

	rows, err := es.db.Query("SELECT kind, COUNT(*) FROM rig_events GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		stats.ByKind[kind] = n
		stats.StoredEvents += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := es.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&stats.Sessions); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	return &stats, nil
}

// EventCount returns the number of stored events
func (es *EventStore) EventCount() (int, error) {
	var count int
	err := es.db.QueryRow("SELECT COUNT(*) FROM rig_events").Scan(&count)
	return count, err
}
