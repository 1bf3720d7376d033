package service

import (
	"context"
	"testing"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := NewSessions(mem)

	sess, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.SessionID)
	assert.Equal(t, "user-1", sess.UserID)

	got, err := s.Get(ctx, sess.SessionID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, got.SessionID)

	_, err = s.Get(ctx, sess.SessionID, "user-2")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Get(ctx, sess.SessionID, "anonymous_1234abcd")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, s.Delete(ctx, sess.SessionID, "user-2"), ErrForbidden)
	require.NoError(t, s.Delete(ctx, sess.SessionID, "user-1"))

	_, err = s.Get(ctx, sess.SessionID, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsEnsure(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(store.NewMemory())

	created, err := s.Ensure(ctx, "", "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.SessionID)

	named, err := s.Ensure(ctx, "thread-7", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "thread-7", named.SessionID)

	again, err := s.Ensure(ctx, "thread-7", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", again.UserID)

	_, err = s.Ensure(ctx, "thread-7", "user-2")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.Ensure(ctx, "thread-7", "anonymous_1234abcd")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSessionsAnonymousSessionIsShared(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(store.NewMemory())

	anon, err := s.Ensure(ctx, "guest-thread", "anonymous_aaaa1111")
	require.NoError(t, err)

	got, err := s.Ensure(ctx, anon.SessionID, "anonymous_bbbb2222")
	require.NoError(t, err)
	assert.Equal(t, "anonymous_aaaa1111", got.UserID)

	_, err = s.Get(ctx, anon.SessionID, "user-1")
	assert.NoError(t, err)
}

func TestSessionsHistory(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := NewSessions(mem)
	s.now = func() time.Time { return fixedNow }

	sess, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	for _, m := range []models.ChatMessage{
		{ID: "1", SessionID: sess.SessionID, UserID: "user-1", Message: "hi", Role: models.RoleUser, Timestamp: fixedNow},
		{ID: "2", SessionID: sess.SessionID, UserID: "user-1", Message: "hello", Role: models.RoleAssistant, Timestamp: fixedNow},
	} {
		require.NoError(t, mem.AppendMessage(ctx, m))
	}

	hist, err := s.History(ctx, sess.SessionID, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "hi", hist[0].Message)
	assert.Equal(t, models.RoleAssistant, hist[1].Type)

	_, err = s.History(ctx, sess.SessionID, "user-2", 10)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.History(ctx, sess.SessionID, "anonymous_00000000", 10)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.History(ctx, "missing", "user-1", 10)
	assert.ErrorIs(t, err, ErrForbidden)

	hist, err = s.History(ctx, "missing", "anonymous_00000000", 10)
	require.NoError(t, err)
	assert.Empty(t, hist)
}
