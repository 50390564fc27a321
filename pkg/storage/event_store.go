package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
)

// Event sources
const (
	SourceTransceive = "transceive"
	SourcePoll       = "poll"
	SourceCommand    = "command"
)

// RigEvent is one journaled change of radio state
type RigEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	VFO       string    `json:"vfo,omitempty"`
	Frequency int64     `json:"frequency,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Width     int       `json:"width,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// FromRigEvent converts a decoded radio event into a journal entry
func FromRigEvent(session string, ev rig.Event, source string) RigEvent {
	out := RigEvent{
		SessionID: session,
		Timestamp: time.Now(),
		Kind:      ev.Kind.String(),
		Source:    source,
		VFO:       ev.VFO.String(),
	}
	switch ev.Kind {
	case rig.EventFreq:
		out.Frequency = int64(ev.Freq)
	case rig.EventMode:
		out.Mode = ev.Mode.String()
		out.Width = ev.Width
	}
	return out
}

// Session is one daemon connection to a radio
type Session struct {
	ID       string     `json:"id"`
	Model    int        `json:"model"`
	Device   string     `json:"device"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// EventStore journals radio events in SQLite
type EventStore struct {
	db        *sql.DB
	dbPath    string
	maxEvents int
}

// NewEventStore opens or creates the journal at dbPath
func NewEventStore(dbPath string, maxEvents int) (*EventStore, error) {
	store := &EventStore{
		dbPath:    dbPath,
		maxEvents: maxEvents,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize event store: %w", err)
	}

	return store, nil
}

func (es *EventStore) initialize() error {
	if es.dbPath == "" {
		es.dbPath = "./rigd.db"
	}

	if err := os.MkdirAll(filepath.Dir(es.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	connectionString := es.dbPath + "?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on"

	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	es.db = db

	if err := es.createTables(); err != nil {
		db.Close()
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := es.createIndexes(); err != nil {
		db.Close()
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logging.Info("storage", "event store initialized", map[string]interface{}{
		"path":       es.dbPath,
		"max_events": es.maxEvents,
	})
	return nil
}

func (es *EventStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		model INTEGER NOT NULL,
		device TEXT NOT NULL DEFAULT '',
		opened_at DATETIME NOT NULL,
		closed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS rig_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		timestamp DATETIME NOT NULL,
		kind TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'command',
		vfo TEXT NOT NULL DEFAULT '',
		frequency INTEGER NOT NULL DEFAULT 0,
		mode TEXT NOT NULL DEFAULT '',
		width INTEGER NOT NULL DEFAULT 0,
		detail TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS event_stats (
		id INTEGER PRIMARY KEY,
		total_events INTEGER NOT NULL DEFAULT 0,
		last_cleanup DATETIME
	);

	INSERT OR IGNORE INTO event_stats (id, total_events) VALUES (1, 0);
	`

	_, err := es.db.Exec(schema)
	return err
}

func (es *EventStore) createIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_rig_events_timestamp ON rig_events(timestamp DESC)",
		"CREATE INDEX IF NOT EXISTS idx_rig_events_session ON rig_events(session_id)",
		"CREATE INDEX IF NOT EXISTS idx_rig_events_kind ON rig_events(kind)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_opened_at ON sessions(opened_at DESC)",
	}

	for _, indexSQL := range indexes {
		if _, err := es.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// OpenSession records the start of a radio session
func (es *EventStore) OpenSession(id string, model int, device string) error {
	_, err := es.db.Exec(
		"INSERT INTO sessions (id, model, device, opened_at) VALUES (?, ?, ?, ?)",
		id, model, device, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	return nil
}

// CloseSession stamps the end of a session
func (es *EventStore) CloseSession(id string) error {
	result, err := es.db.Exec(
		"UPDATE sessions SET closed_at = ? WHERE id = ? AND closed_at IS NULL",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s is not open", id)
	}
	return nil
}

// StoreEvent appends an event and returns its id
func (es *EventStore) StoreEvent(ev RigEvent) (int64, error) {
	tx, err := es.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.Source == "" {
		ev.Source = SourceCommand
	}
	session := sql.NullString{String: ev.SessionID, Valid: ev.SessionID != ""}

	result, err := tx.Exec(`
		INSERT INTO rig_events (
			session_id, timestamp, kind, source, vfo, frequency, mode, width, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session, ev.Timestamp.UTC(), ev.Kind, ev.Source, ev.VFO,
		ev.Frequency, ev.Mode, ev.Width, ev.Detail,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get event ID: %w", err)
	}

	if _, err := tx.Exec("UPDATE event_stats SET total_events = total_events + 1 WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("failed to update stats: %w", err)
	}

	if err := es.cleanupOldEvents(tx); err != nil {
		logging.Warn("storage", "failed to cleanup old events", map[string]interface{}{"error": err.Error()})
	}

	return id, tx.Commit()
}

// CleanupOldEvents trims the journal to the configured maximum
func (es *EventStore) CleanupOldEvents() error {
	tx, err := es.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := es.cleanupOldEvents(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (es *EventStore) cleanupOldEvents(tx *sql.Tx) error {
	if es.maxEvents <= 0 {
		return nil
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM rig_events").Scan(&count); err != nil {
		return err
	}
	if count <= es.maxEvents {
		return nil
	}

	_, err := tx.Exec(`
		DELETE FROM rig_events
		WHERE id IN (
			SELECT id FROM rig_events
			ORDER BY id ASC
			LIMIT ?
		)
	`, count-es.maxEvents)
	if err != nil {
		return err
	}

	_, err = tx.Exec("UPDATE event_stats SET last_cleanup = ? WHERE id = 1", time.Now().UTC())
	return err
}

// Close closes the database connection
func (es *EventStore) Close() error {
	if es.db != nil {
		return es.db.Close()
	}
	return nil
}
