package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func newID() string {
	return ulid.Make().String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at DESC);

	CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		role            TEXT NOT NULL,
		content         TEXT NOT NULL,
		visualizations  TEXT,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id);

	CREATE TABLE IF NOT EXISTS charts (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		title           TEXT NOT NULL,
		specs           TEXT NOT NULL,
		data            TEXT NOT NULL,
		metadata        TEXT,
		created_at      TEXT NOT NULL,
		deleted_at      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_charts_conversation ON charts(conversation_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// CONVERSATIONS
// ============================================================================

func (s *SQLiteStore) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	now := time.Now().UTC()
	c := &Conversation{ID: newID(), Title: title, CreatedAt: now, UpdatedAt: now}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Title, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations WHERE id = ? AND deleted_at IS NULL`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListConversations(ctx context.Context, limit int) ([]Conversation, error) {
	query := `SELECT id, title, created_at, updated_at FROM conversations
		WHERE deleted_at IS NULL ORDER BY updated_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := []Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RenameConversation(ctx context.Context, id, title string) (*Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("rename conversation: title is required")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		title, formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("rename conversation: %w", err)
	}
	if err := requireAffected(res, "conversation", id); err != nil {
		return nil, err
	}
	return s.GetConversation(ctx, id)
}

func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(time.Now().UTC())
	res, err := tx.ExecContext(ctx,
		`UPDATE conversations SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if err := requireAffected(res, "conversation", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE charts SET deleted_at = ? WHERE conversation_id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return fmt.Errorf("delete conversation charts: %w", err)
	}
	return tx.Commit()
}

// ============================================================================
// MESSAGES
// ============================================================================

func (s *SQLiteStore) AddMessage(ctx context.Context, m Message) (*Message, error) {
	if m.Role == "" {
		m.Role = RoleUser
	}
	if !m.Role.Valid() {
		return nil, fmt.Errorf("add message: unknown role %q", m.Role)
	}
	if _, err := s.GetConversation(ctx, m.ConversationID); err != nil {
		return nil, err
	}

	vis, err := marshalOptional(m.Visualizations, len(m.Visualizations) > 0)
	if err != nil {
		return nil, fmt.Errorf("encode visualizations: %w", err)
	}
	now := time.Now().UTC()
	m.ID = newID()
	m.CreatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, visualizations, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, string(m.Role), m.Content, vis, formatTime(now)); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, formatTime(now), m.ConversationID); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, visualizations, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var (
			m         Message
			role      string
			vis       sql.NullString
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &vis, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = Role(role)
		m.CreatedAt = parseTime(createdAt)
		if vis.Valid && vis.String != "" {
			if err := json.Unmarshal([]byte(vis.String), &m.Visualizations); err != nil {
				return nil, fmt.Errorf("decode visualizations for %s: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ============================================================================
// SAVED CHARTS
// ============================================================================

func (s *SQLiteStore) SaveChart(ctx context.Context, c SavedChart) (*SavedChart, error) {
	if len(c.Specs) == 0 {
		return nil, fmt.Errorf("save chart: at least one spec is required")
	}
	if _, err := s.GetConversation(ctx, c.ConversationID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Title) == "" {
		c.Title = c.Specs[0].Title
	}
	if c.Data == nil {
		c.Data = []map[string]any{}
	}

	specs, err := json.Marshal(c.Specs)
	if err != nil {
		return nil, fmt.Errorf("encode specs: %w", err)
	}
	data, err := json.Marshal(c.Data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	meta, err := marshalOptional(c.Metadata, len(c.Metadata) > 0)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	c.ID = newID()
	c.CreatedAt = time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO charts (id, conversation_id, title, specs, data, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ConversationID, c.Title, string(specs), string(data), meta, formatTime(c.CreatedAt)); err != nil {
		return nil, fmt.Errorf("insert chart: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) GetChart(ctx context.Context, id string) (*SavedChart, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, conversation_id, title, specs, data, metadata, created_at
		 FROM charts WHERE id = ? AND deleted_at IS NULL`, id)
	c, err := scanChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chart %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get chart: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCharts(ctx context.Context, conversationID string) ([]SavedChart, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, title, specs, data, metadata, created_at
		 FROM charts WHERE conversation_id = ? AND deleted_at IS NULL ORDER BY id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer rows.Close()

	out := []SavedChart{}
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteChart(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE charts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	return requireAffected(res, "chart", id)
}

// ============================================================================
// HELPERS
// ============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(row scanner) (*Conversation, error) {
	var c Conversation
	var created, updated string
	if err := row.Scan(&c.ID, &c.Title, &created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}

func scanChart(row scanner) (*SavedChart, error) {
	var (
		c           SavedChart
		specs, data string
		meta        sql.NullString
		created     string
	)
	if err := row.Scan(&c.ID, &c.ConversationID, &c.Title, &specs, &data, &meta, &created); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(created)
	if err := json.Unmarshal([]byte(specs), &c.Specs); err != nil {
		return nil, fmt.Errorf("decode specs: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &c.Data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &c, nil
}

func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

// marshalOptional encodes v as JSON, or NULL when present is false.
func marshalOptional(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
