// Package db provides SurrealDB connectivity with auto-reconnect support and
// the queries backing the chat store.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

// WebSocket upgrades fail if TLS negotiates HTTP/2.
func init() {
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

const (
	AuthRoot     = "root"
	AuthDatabase = "database"
)

// Config holds SurrealDB connection settings.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // AuthRoot or AuthDatabase
}

type wsConn = rews.Connection[*gorillaws.Connection]

// Client is a reconnecting SurrealDB session scoped to one namespace and
// database.
type Client struct {
	conn    *wsConn
	db      *surrealdb.DB
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewClient connects, signs in and selects the namespace/database. A nil
// collector disables query timing.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger, mc *metrics.Collector) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "surrealdb")

	conn := dial(cfg.URL, logger.New(log.Handler()))
	log.Info("connecting", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.URL, err)
	}

	sdb, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	if err := signIn(ctx, sdb, cfg); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	if err := sdb.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	log.Info("connected", "namespace", cfg.Namespace, "database", cfg.Database, "auth_level", cfg.AuthLevel)
	return &Client{conn: conn, db: sdb, logger: log, metrics: mc}, nil
}

// dial builds the auto-reconnecting connection. gorillaws appends /rpc
// itself, so a configured suffix is stripped.
func dial(url string, sdkLogger logger.Logger) *wsConn {
	codec := surrealcbor.New()
	baseURL := strings.TrimSuffix(url, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 250 * time.Millisecond
	retryer.MaxDelay = 5 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 8
	conn.Retryer = retryer
	return conn
}

func signIn(ctx context.Context, sdb *surrealdb.DB, cfg Config) error {
	auth := surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}
	switch cfg.AuthLevel {
	case AuthDatabase:
		auth.Namespace = cfg.Namespace
		auth.Database = cfg.Database
	case AuthRoot, "":
	default:
		return fmt.Errorf("unknown auth level %q", cfg.AuthLevel)
	}
	if _, err := sdb.SignIn(ctx, auth); err != nil {
		return fmt.Errorf("signin as %s: %w", cfg.Username, err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info("closing connection")
	return c.conn.Close(ctx)
}

// InitSchema defines the chat tables and indexes. It is idempotent.
func (c *Client) InitSchema(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, c.db, SchemaSQL, nil); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	c.logger.Debug("schema ready")
	return nil
}

func (c *Client) observe(start time.Time) {
	c.metrics.RecordTiming(metrics.OpStoreQuery, time.Since(start))
}
