package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the Store contract against any backend.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("history round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		ts := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

		in := models.ChatMessage{
			ID: "m1", Message: "What are current mortgage rates?", SessionID: "s1",
			UserID: "u1", Timestamp: ts, Role: models.RoleUser,
		}
		require.NoError(t, s.AppendMessage(ctx, in))

		got, err := s.GetHistory(ctx, "s1", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, in.Message, got[0].Message)
		assert.Equal(t, in.SessionID, got[0].SessionID)
		assert.Equal(t, in.Role, got[0].Role)
		assert.True(t, ts.Equal(got[0].Timestamp))
	})

	t.Run("history keeps newest turns oldest first", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		base := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 6; i++ {
			require.NoError(t, s.AppendMessage(ctx, models.ChatMessage{
				ID: fmt.Sprintf("m%d", i), Message: fmt.Sprintf("turn %d", i), SessionID: "s1",
				UserID: "u1", Timestamp: base.Add(time.Duration(i) * time.Minute), Role: models.RoleUser,
			}))
		}
		require.NoError(t, s.AppendMessage(ctx, models.ChatMessage{
			ID: "other", Message: "elsewhere", SessionID: "s2", UserID: "u1", Timestamp: base, Role: models.RoleUser,
		}))

		got, err := s.GetHistory(ctx, "s1", 4)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "turn 2", got[0].Message)
		assert.Equal(t, "turn 5", got[3].Message)

		empty, err := s.GetHistory(ctx, "s1", 0)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("timestamps stay monotonic", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		ts := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

		require.NoError(t, s.AppendMessage(ctx, models.ChatMessage{ID: "a", Message: "first", SessionID: "s1", UserID: "u1", Timestamp: ts, Role: models.RoleUser}))
		require.NoError(t, s.AppendMessage(ctx, models.ChatMessage{ID: "b", Message: "second", SessionID: "s1", UserID: "u1", Timestamp: ts, Role: models.RoleAssistant}))

		got, err := s.GetHistory(ctx, "s1", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Message)
		assert.Equal(t, "second", got[1].Message)
		assert.True(t, got[1].Timestamp.After(got[0].Timestamp))
	})

	t.Run("session lifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		now := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

		_, err := s.GetSession(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(s.TouchSession(ctx, "missing", now), ErrNotFound))

		require.NoError(t, s.CreateSession(ctx, models.Session{
			SessionID: "s1", UserID: "u1", CreatedAt: now, LastActivity: now,
			Preferences: map[string]any{"units": "imperial"},
		}))
		require.NoError(t, s.TouchSession(ctx, "s1", now.Add(time.Hour)))

		sess, err := s.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "u1", sess.UserID)
		assert.True(t, now.Add(time.Hour).Equal(sess.LastActivity))
		assert.Equal(t, "imperial", sess.Preferences["units"])

		require.NoError(t, s.AppendMessage(ctx, models.ChatMessage{ID: "m", Message: "hi", SessionID: "s1", UserID: "u1", Timestamp: now, Role: models.RoleUser}))
		require.NoError(t, s.DeleteSession(ctx, "s1"))

		_, err = s.GetSession(ctx, "s1")
		assert.True(t, errors.Is(err, ErrNotFound))
		hist, err := s.GetHistory(ctx, "s1", 10)
		require.NoError(t, err)
		assert.Empty(t, hist)
	})

	t.Run("property records", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rec, err := s.GetPropertyRecord(ctx, "prop_x")
		require.NoError(t, err)
		assert.Nil(t, rec)

		require.NoError(t, s.PutPropertyRecord(ctx, models.PropertyRecord{
			PropertyID: "prop_x", Address: "1 Bay St", Price: 300000, Bedrooms: 2,
			MarketData: &models.MarketData{AppreciationRate: 3.2},
		}))
		rec, err = s.GetPropertyRecord(ctx, "prop_x")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "1 Bay St", rec.Address)
		assert.InDelta(t, 3.2, rec.MarketData.AppreciationRate, 1e-9)
	})

	t.Run("saved property index", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		now := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

		require.NoError(t, s.SaveProperty(ctx, models.SavedProperty{UserID: "u1", PropertyID: "prop_b", Notes: "second", SavedAt: now.Add(time.Minute)}))
		require.NoError(t, s.SaveProperty(ctx, models.SavedProperty{UserID: "u1", PropertyID: "prop_a", Notes: "first", SavedAt: now}))
		require.NoError(t, s.SaveProperty(ctx, models.SavedProperty{UserID: "u2", PropertyID: "prop_c", SavedAt: now}))

		idx, err := s.SavedPropertyIndex(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, idx, 2)
		assert.Equal(t, "prop_a", idx[0].PropertyID)
		assert.Equal(t, "first", idx[0].Notes)
		assert.Equal(t, "prop_b", idx[1].PropertyID)

		none, err := s.SavedPropertyIndex(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("interactions", func(t *testing.T) {
		s := newStore(t)
		err := s.LogInteraction(context.Background(), models.Interaction{
			ID: "i1", UserID: "u1", Kind: "chat_message",
			Payload: map[string]any{"tools_used": []string{"getInterestRates"}}, Timestamp: time.Now(),
		})
		require.NoError(t, err)
	})

	t.Run("concurrent appends to distinct sessions", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sid := fmt.Sprintf("cs%d", i)
				for j := 0; j < 3; j++ {
					assert.NoError(t, s.AppendMessage(ctx, models.ChatMessage{
						ID: fmt.Sprintf("%s-%d", sid, j), Message: "x", SessionID: sid, UserID: "u",
						Timestamp: time.Now(), Role: models.RoleUser,
					}))
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < 8; i++ {
			hist, err := s.GetHistory(ctx, fmt.Sprintf("cs%d", i), 10)
			require.NoError(t, err)
			assert.Len(t, hist, 3)
		}
	})
}
