// ABOUTME: SQLite implementation of the session Repository using modernc.org/sqlite
// ABOUTME: Stores messages, the id counter, and ratings with automatic schema creation

package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout round-trips timestamps exactly, including sub-second precision.
const timeLayout = time.RFC3339Nano

// SQLiteRepository implements Repository using a local SQLite database.
type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteRepository opens (or creates) a session database at the given path.
// Parent directories are created if needed.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	logger := slog.Default().With("component", "session-repo")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	r := &SQLiteRepository{db: db, logger: logger}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("session database initialized", "path", path)
	return r, nil
}

// createSchema creates the session tables if they don't exist
func (r *SQLiteRepository) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			text TEXT NOT NULL,
			sender TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS ratings (
			message_id INTEGER PRIMARY KEY,
			stars INTEGER NOT NULL,
			position INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Load implements Repository.
func (r *SQLiteRepository) Load(ctx context.Context) (*State, error) {
	state := &State{}

	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM counters WHERE name = 'next_id'").Scan(&state.NextID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading id counter: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, text, sender, timestamp FROM messages ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Message
		var ts string
		if err := rows.Scan(&m.ID, &m.Text, &m.Sender, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Timestamp, err = time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing message timestamp: %w", err)
		}
		state.Messages = append(state.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	ratingRows, err := r.db.QueryContext(ctx,
		"SELECT message_id, stars FROM ratings ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("loading ratings: %w", err)
	}
	defer ratingRows.Close()

	for ratingRows.Next() {
		var rt Rating
		if err := ratingRows.Scan(&rt.MessageID, &rt.Stars); err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		state.Ratings = append(state.Ratings, rt)
	}
	if err := ratingRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ratings: %w", err)
	}

	return state, nil
}

// Save implements Repository. The full state is replaced in one transaction
// so readers never observe a partial session.
func (r *SQLiteRepository) Save(ctx context.Context, state *State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"messages", "ratings", "counters"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, m := range state.Messages {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO messages (id, text, sender, timestamp) VALUES (?, ?, ?, ?)",
			m.ID, m.Text, string(m.Sender), m.Timestamp.Format(timeLayout))
		if err != nil {
			return fmt.Errorf("inserting message %d: %w", m.ID, err)
		}
	}

	for i, rt := range state.Ratings {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ratings (message_id, stars, position) VALUES (?, ?, ?)",
			rt.MessageID, rt.Stars, i)
		if err != nil {
			return fmt.Errorf("inserting rating for message %d: %w", rt.MessageID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO counters (name, value) VALUES ('next_id', ?)", state.NextID)
	if err != nil {
		return fmt.Errorf("saving id counter: %w", err)
	}

	return tx.Commit()
}

// Clear implements Repository.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"messages", "ratings", "counters"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
