//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v2.3.7",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil, metrics.NewCollector())
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	err := testDB.QueryUpsertSession(ctx, models.Session{
		SessionID:    "sess-lifecycle",
		UserID:       "user-1",
		CreatedAt:    now,
		LastActivity: now,
		Preferences:  map[string]any{"currency": "USD"},
	})
	require.NoError(t, err)

	s, err := testDB.QueryGetSession(ctx, "sess-lifecycle")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "USD", s.Preferences["currency"])

	later := now.Add(time.Minute)
	ok, err := testDB.QueryTouchSession(ctx, "sess-lifecycle", later)
	require.NoError(t, err)
	assert.True(t, ok)

	s, err = testDB.QueryGetSession(ctx, "sess-lifecycle")
	require.NoError(t, err)
	assert.WithinDuration(t, later, s.LastActivity, time.Millisecond)

	require.NoError(t, testDB.QueryDeleteSession(ctx, "sess-lifecycle"))
	s, err = testDB.QueryGetSession(ctx, "sess-lifecycle")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestTouchUnknownSession(t *testing.T) {
	ok, err := testDB.QueryTouchSession(context.Background(), "sess-missing", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		require.NoError(t, testDB.QueryAppendMessage(ctx, models.ChatMessage{
			ID:        fmt.Sprintf("hist-%d", i),
			Message:   fmt.Sprintf("turn %d", i),
			SessionID: "sess-history",
			UserID:    "user-1",
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Role:      role,
		}))
	}

	msgs, err := testDB.QueryHistory(ctx, "sess-history", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "turn 2", msgs[0].Message)
	assert.Equal(t, "turn 4", msgs[2].Message)
	assert.Equal(t, models.RoleUser, msgs[2].Role)
	assert.Equal(t, "sess-history", msgs[1].SessionID)

	latest, err := testDB.QueryLatestMessageTime(ctx, "sess-history")
	require.NoError(t, err)
	assert.True(t, latest.Equal(base.Add(4*time.Second)))
}

func TestSavedPropertiesAndDetails(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, testDB.QueryPutProperty(ctx, models.PropertyRecord{
		PropertyID: "prop_abc",
		Address:    "9 Elm Road",
		Price:      510000,
		Bedrooms:   4,
		MarketData: &models.MarketData{PricePerSqft: 275.5},
	}))

	rec, err := testDB.QueryGetProperty(ctx, "prop_abc")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "9 Elm Road", rec.Address)
	assert.InDelta(t, 275.5, rec.MarketData.PricePerSqft, 1e-9)

	missing, err := testDB.QueryGetProperty(ctx, "prop_none")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, testDB.QuerySaveProperty(ctx, models.SavedProperty{
		UserID: "user-saved", PropertyID: "prop_abc", Notes: "corner lot", SavedAt: time.Now(),
	}))
	saved, err := testDB.QuerySavedProperties(ctx, "user-saved")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "corner lot", saved[0].Notes)
}

func TestLogInteraction(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, testDB.QueryLogInteraction(ctx, models.Interaction{
			ID:        fmt.Sprintf("int-%d", i),
			UserID:    "user-int",
			Kind:      "chat_message",
			Payload:   map[string]any{"n": i},
			Timestamp: time.Now(),
		}))
	}

	n, err := testDB.QueryCountInteractions(ctx, "user-int")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
