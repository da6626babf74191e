package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/barasalah2/chartflow/engine"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================================
// CONVERSATIONS
// ============================================================================

func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c, err := s.CreateConversation(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, c.Title)
	assert.Len(t, c.ID, 26)

	got, err := s.GetConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

	renamed, err := s.RenameConversation(ctx, c.ID, "Sprint review")
	require.NoError(t, err)
	assert.Equal(t, "Sprint review", renamed.Title)
	assert.False(t, renamed.UpdatedAt.Before(c.UpdatedAt))

	_, err = s.RenameConversation(ctx, c.ID, "")
	assert.Error(t, err)

	require.NoError(t, s.DeleteConversation(ctx, c.ID))
	_, err = s.GetConversation(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteConversation(ctx, c.ID), ErrNotFound)

	_, err = s.RenameConversation(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListConversationsByRecency(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.CreateConversation(ctx, "first")
	require.NoError(t, err)
	second, err := s.CreateConversation(ctx, "second")
	require.NoError(t, err)

	list, err := s.ListConversations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	// a new message moves the first conversation to the top
	_, err = s.AddMessage(ctx, Message{ConversationID: first.ID, Content: "hello"})
	require.NoError(t, err)
	list, err = s.ListConversations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

// ============================================================================
// MESSAGES
// ============================================================================

func TestMessagesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c, err := s.CreateConversation(ctx, "chat")
	require.NoError(t, err)

	_, err = s.AddMessage(ctx, Message{ConversationID: c.ID, Role: RoleUser, Content: "show status"})
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, Message{
		ConversationID: c.ID,
		Role:           RoleAssistant,
		Content:        "Here is a pie chart.",
		Visualizations: []engine.ChartSpec{{Type: "pie", X: "status", Aggregation: engine.AggCount}},
	})
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Nil(t, msgs[0].Visualizations)
	require.Len(t, msgs[1].Visualizations, 1)
	assert.Equal(t, "status", msgs[1].Visualizations[0].X)
	assert.Equal(t, engine.AggCount, msgs[1].Visualizations[0].Aggregation)

	_, err = s.AddMessage(ctx, Message{ConversationID: c.ID, Role: "robot"})
	assert.Error(t, err)
	_, err = s.AddMessage(ctx, Message{ConversationID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ListMessages(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================================
// SAVED CHARTS
// ============================================================================

func TestSavedChartsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c, err := s.CreateConversation(ctx, "charts")
	require.NoError(t, err)

	saved, err := s.SaveChart(ctx, SavedChart{
		ConversationID: c.ID,
		Specs:          []engine.ChartSpec{{Type: "bar", X: "status", Title: "By status"}},
		Data:           []map[string]any{{"status": "Done", "hours": 4.0}},
		Metadata:       map[string]any{"source": "upload.csv"},
	})
	require.NoError(t, err)
	assert.Equal(t, "By status", saved.Title)

	got, err := s.GetChart(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Specs, got.Specs)
	assert.Equal(t, []map[string]any{{"status": "Done", "hours": 4.0}}, got.Data)
	assert.Equal(t, "upload.csv", got.Metadata["source"])

	list, err := s.ListCharts(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteChart(ctx, saved.ID))
	_, err = s.GetChart(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteChart(ctx, saved.ID), ErrNotFound)

	_, err = s.SaveChart(ctx, SavedChart{ConversationID: c.ID})
	assert.Error(t, err)
}

func TestDeleteConversationHidesCharts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c, err := s.CreateConversation(ctx, "gone soon")
	require.NoError(t, err)
	saved, err := s.SaveChart(ctx, SavedChart{ConversationID: c.ID, Title: "t", Specs: []engine.ChartSpec{{Type: "pie"}}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteConversation(ctx, c.ID))
	_, err = s.GetChart(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================================
// MIRROR
// ============================================================================

type recordingMirror struct {
	mu   sync.Mutex
	ops  []string
	last Conversation
	fail bool
}

func (r *recordingMirror) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	if r.fail {
		return errors.New("mirror down")
	}
	return nil
}

func (r *recordingMirror) UpsertConversation(_ context.Context, c Conversation) error {
	r.mu.Lock()
	r.last = c
	r.mu.Unlock()
	return r.record("conversation:" + c.Title)
}
func (r *recordingMirror) DeleteConversation(_ context.Context, id string) error {
	return r.record("delete_conversation")
}
func (r *recordingMirror) InsertMessage(_ context.Context, m Message) error {
	return r.record("message:" + m.Content)
}
func (r *recordingMirror) InsertChart(_ context.Context, c SavedChart) error {
	return r.record("chart:" + c.Title)
}
func (r *recordingMirror) DeleteChart(_ context.Context, id string) error {
	return r.record("delete_chart")
}
func (r *recordingMirror) Close() {}

func TestMirroredReplaysWrites(t *testing.T) {
	ctx := context.Background()
	mirror := &recordingMirror{}
	s := NewMirrored(newTestStore(t), mirror, nil)

	c, err := s.CreateConversation(ctx, "mirrored")
	require.NoError(t, err)
	_, err = s.RenameConversation(ctx, c.ID, "renamed")
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, Message{ConversationID: c.ID, Content: "hi"})
	require.NoError(t, err)
	touched, err := s.GetConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, touched.UpdatedAt, mirror.last.UpdatedAt)
	chart, err := s.SaveChart(ctx, SavedChart{ConversationID: c.ID, Title: "pie", Specs: []engine.ChartSpec{{Type: "pie"}}})
	require.NoError(t, err)
	require.NoError(t, s.DeleteChart(ctx, chart.ID))
	require.NoError(t, s.DeleteConversation(ctx, c.ID))

	assert.Equal(t, []string{
		"conversation:mirrored", "conversation:renamed", "message:hi", "conversation:renamed",
		"chart:pie", "delete_chart", "delete_conversation",
	}, mirror.ops)

	// failed primary writes are not mirrored
	_, err = s.AddMessage(ctx, Message{ConversationID: c.ID, Content: "late"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, mirror.ops, 7)
}

func TestMirrorFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	s := NewMirrored(newTestStore(t), &recordingMirror{fail: true}, zap.New(core))

	c, err := s.CreateConversation(ctx, "still saved")
	require.NoError(t, err)

	got, err := s.GetConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "still saved", got.Title)

	require.Equal(t, 1, logs.FilterMessage("mirror write failed").Len())
	assert.Equal(t, "create_conversation", logs.All()[0].ContextMap()["op"])
}

type fakeExec struct {
	sql  []string
	args [][]any
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeExec) Close() {}

func TestPostgresMirrorStatements(t *testing.T) {
	ctx := context.Background()
	db := &fakeExec{}
	m := &PostgresMirror{db: db}

	require.NoError(t, m.migrate(ctx))
	require.NoError(t, m.UpsertConversation(ctx, Conversation{ID: "c1", Title: "t"}))
	require.NoError(t, m.InsertMessage(ctx, Message{ID: "m1", ConversationID: "c1", Role: RoleUser, Content: "hi"}))
	require.NoError(t, m.InsertChart(ctx, SavedChart{ID: "k1", ConversationID: "c1", Specs: []engine.ChartSpec{{Type: "bar"}}}))
	require.NoError(t, m.DeleteConversation(ctx, "c1"))

	require.Len(t, db.sql, 6)
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS charts")
	assert.Contains(t, db.sql[1], "ON CONFLICT (id) DO UPDATE")
	assert.Equal(t, "c1", db.args[1][0])
	// a message without visualizations mirrors a NULL column
	assert.Nil(t, db.args[2][4])
	assert.True(t, strings.Contains(string(db.args[3][3].([]byte)), `"type":"bar"`))
	assert.Contains(t, db.sql[5], "UPDATE charts SET deleted_at")
}
