package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ============================================================================
// MIRROR - Best-effort copy of writes to a backend database
// ============================================================================
// The primary store is the source of truth. Every successful write is
// replayed against the mirror; a mirror failure is logged and never
// surfaced to the caller.
// ============================================================================

// Mirror receives copies of successful writes.
type Mirror interface {
	UpsertConversation(ctx context.Context, c Conversation) error
	DeleteConversation(ctx context.Context, id string) error
	InsertMessage(ctx context.Context, m Message) error
	InsertChart(ctx context.Context, c SavedChart) error
	DeleteChart(ctx context.Context, id string) error
	Close()
}

// pgExecer is the subset of *pgxpool.Pool the mirror uses.
type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresMirror implements Mirror on Postgres via pgx.
type PostgresMirror struct {
	db pgExecer
}

// NewPostgresMirror connects to dsn and creates the mirror tables.
func NewPostgresMirror(ctx context.Context, dsn string) (*PostgresMirror, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect mirror: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping mirror: %w", err)
	}
	m := &PostgresMirror{db: pool}
	if err := m.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate mirror: %w", err)
	}
	return m, nil
}

func (p *PostgresMirror) migrate(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS conversations (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		deleted_at  TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		role            TEXT NOT NULL,
		content         TEXT NOT NULL,
		visualizations  JSONB,
		created_at      TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS charts (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		title           TEXT NOT NULL,
		specs           JSONB NOT NULL,
		data            JSONB NOT NULL,
		metadata        JSONB,
		created_at      TIMESTAMPTZ NOT NULL,
		deleted_at      TIMESTAMPTZ
	)`)
	return err
}

func (p *PostgresMirror) UpsertConversation(ctx context.Context, c Conversation) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO conversations (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, updated_at = EXCLUDED.updated_at`,
		c.ID, c.Title, c.CreatedAt, c.UpdatedAt)
	return err
}

func (p *PostgresMirror) DeleteConversation(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if _, err := p.db.Exec(ctx, `UPDATE conversations SET deleted_at = $1 WHERE id = $2`, now, id); err != nil {
		return err
	}
	_, err := p.db.Exec(ctx, `UPDATE charts SET deleted_at = $1 WHERE conversation_id = $2`, now, id)
	return err
}

func (p *PostgresMirror) InsertMessage(ctx context.Context, m Message) error {
	var vis []byte
	if len(m.Visualizations) > 0 {
		b, err := json.Marshal(m.Visualizations)
		if err != nil {
			return err
		}
		vis = b
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, visualizations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
		m.ID, m.ConversationID, string(m.Role), m.Content, vis, m.CreatedAt)
	return err
}

func (p *PostgresMirror) InsertChart(ctx context.Context, c SavedChart) error {
	specs, err := json.Marshal(c.Specs)
	if err != nil {
		return err
	}
	data, err := json.Marshal(c.Data)
	if err != nil {
		return err
	}
	var meta []byte
	if len(c.Metadata) > 0 {
		if meta, err = json.Marshal(c.Metadata); err != nil {
			return err
		}
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO charts (id, conversation_id, title, specs, data, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
		c.ID, c.ConversationID, c.Title, specs, data, meta, c.CreatedAt)
	return err
}

func (p *PostgresMirror) DeleteChart(ctx context.Context, id string) error {
	_, err := p.db.Exec(ctx, `UPDATE charts SET deleted_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	return err
}

// Close releases the pool.
func (p *PostgresMirror) Close() {
	p.db.Close()
}

// ============================================================================
// MIRRORED STORE
// ============================================================================

// mirrorTimeout bounds each mirror call.
const mirrorTimeout = 5 * time.Second

// Mirrored wraps a primary Store and replays its writes to a Mirror.
type Mirrored struct {
	Store
	mirror Mirror
	logger *zap.Logger
}

// NewMirrored wraps primary. A nil logger discards mirror errors.
func NewMirrored(primary Store, mirror Mirror, logger *zap.Logger) *Mirrored {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirrored{Store: primary, mirror: mirror, logger: logger}
}

func (m *Mirrored) replay(ctx context.Context, op, id string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		m.logger.Warn("mirror write failed", zap.String("op", op), zap.String("id", id), zap.Error(err))
	}
}

func (m *Mirrored) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	c, err := m.Store.CreateConversation(ctx, title)
	if err != nil {
		return nil, err
	}
	m.replay(ctx, "create_conversation", c.ID, func(ctx context.Context) error {
		return m.mirror.UpsertConversation(ctx, *c)
	})
	return c, nil
}

func (m *Mirrored) RenameConversation(ctx context.Context, id, title string) (*Conversation, error) {
	c, err := m.Store.RenameConversation(ctx, id, title)
	if err != nil {
		return nil, err
	}
	m.replay(ctx, "rename_conversation", id, func(ctx context.Context) error {
		return m.mirror.UpsertConversation(ctx, *c)
	})
	return c, nil
}

func (m *Mirrored) DeleteConversation(ctx context.Context, id string) error {
	if err := m.Store.DeleteConversation(ctx, id); err != nil {
		return err
	}
	m.replay(ctx, "delete_conversation", id, func(ctx context.Context) error {
		return m.mirror.DeleteConversation(ctx, id)
	})
	return nil
}

func (m *Mirrored) AddMessage(ctx context.Context, msg Message) (*Message, error) {
	out, err := m.Store.AddMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	m.replay(ctx, "add_message", out.ID, func(ctx context.Context) error {
		return m.mirror.InsertMessage(ctx, *out)
	})
	// the primary store bumped updated_at on the conversation
	m.replay(ctx, "touch_conversation", out.ConversationID, func(ctx context.Context) error {
		c, err := m.Store.GetConversation(ctx, out.ConversationID)
		if err != nil {
			return err
		}
		return m.mirror.UpsertConversation(ctx, *c)
	})
	return out, nil
}

func (m *Mirrored) SaveChart(ctx context.Context, c SavedChart) (*SavedChart, error) {
	out, err := m.Store.SaveChart(ctx, c)
	if err != nil {
		return nil, err
	}
	m.replay(ctx, "save_chart", out.ID, func(ctx context.Context) error {
		return m.mirror.InsertChart(ctx, *out)
	})
	return out, nil
}

func (m *Mirrored) DeleteChart(ctx context.Context, id string) error {
	if err := m.Store.DeleteChart(ctx, id); err != nil {
		return err
	}
	m.replay(ctx, "delete_chart", id, func(ctx context.Context) error {
		return m.mirror.DeleteChart(ctx, id)
	})
	return nil
}

// Close closes the mirror and then the primary store.
func (m *Mirrored) Close() error {
	m.mirror.Close()
	return m.Store.Close()
}
