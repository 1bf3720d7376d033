package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// Key layout. Message and interaction keys embed a zero-padded UnixNano so
// lexical order is chronological order.
const (
	prefixSession     = "session/"
	prefixMessage     = "msg/"
	prefixSaved       = "saved/"
	prefixProperty    = "prop/"
	prefixInteraction = "interaction/"
)

func sessionKey(id string) []byte { return []byte(prefixSession + id) }

func messagePrefix(sessionID string) []byte { return []byte(prefixMessage + sessionID + "/") }

func messageKey(m models.ChatMessage) []byte {
	return fmt.Appendf(messagePrefix(m.SessionID), "%020d/%s", m.Timestamp.UnixNano(), m.ID)
}

func savedPrefix(userID string) []byte { return []byte(prefixSaved + userID + "/") }

func propertyKey(id string) []byte { return []byte(prefixProperty + id) }

// Badger is the embedded key-value Store.
type Badger struct {
	db      *badger.DB
	metrics *metrics.Collector
}

// OpenBadger opens (or creates) a database in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string, logger *slog.Logger, mc *metrics.Collector) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.WithLogger(badgerLogger{logger.With("component", "badger")})

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: bdb, metrics: mc}, nil
}

func (b *Badger) observe(start time.Time) {
	b.metrics.RecordTiming(metrics.OpStoreQuery, time.Since(start))
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, data)
}

// getJSON decodes key into v, reporting false when the key is absent.
func getJSON(txn *badger.Txn, key []byte, v any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func (b *Badger) CreateSession(_ context.Context, s models.Session) error {
	defer b.observe(time.Now())
	return b.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, sessionKey(s.SessionID), s)
	})
}

func (b *Badger) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	defer b.observe(time.Now())
	var s models.Session
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, sessionKey(sessionID), &s)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (b *Badger) TouchSession(_ context.Context, sessionID string, at time.Time) error {
	defer b.observe(time.Now())
	return b.db.Update(func(txn *badger.Txn) error {
		var s models.Session
		found, err := getJSON(txn, sessionKey(sessionID), &s)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		s.LastActivity = at
		return putJSON(txn, sessionKey(sessionID), s)
	})
}

func (b *Badger) DeleteSession(_ context.Context, sessionID string) error {
	defer b.observe(time.Now())
	if err := b.db.DropPrefix(messagePrefix(sessionID)); err != nil {
		return fmt.Errorf("drop messages: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(sessionID))
	})
}

// latest returns up to limit of the newest values under prefix, newest first.
func latest(txn *badger.Txn, prefix []byte, limit int) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var vals [][]byte
	seek := append(slices.Clone(prefix), 0xFF)
	for it.Seek(seek); it.ValidForPrefix(prefix) && len(vals) < limit; it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
	}
	return vals, nil
}

func (b *Badger) AppendMessage(_ context.Context, m models.ChatMessage) error {
	defer b.observe(time.Now())
	return b.db.Update(func(txn *badger.Txn) error {
		newest, err := latest(txn, messagePrefix(m.SessionID), 1)
		if err != nil {
			return err
		}
		if len(newest) == 1 {
			var prev models.ChatMessage
			if err := json.Unmarshal(newest[0], &prev); err != nil {
				return fmt.Errorf("decode message: %w", err)
			}
			m.Timestamp = nextTimestamp(prev.Timestamp, m.Timestamp)
		}
		return putJSON(txn, messageKey(m), m)
	})
}

func (b *Badger) GetHistory(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	defer b.observe(time.Now())
	var msgs []models.ChatMessage
	err := b.db.View(func(txn *badger.Txn) error {
		vals, err := latest(txn, messagePrefix(sessionID), limit)
		if err != nil {
			return err
		}
		msgs = make([]models.ChatMessage, len(vals))
		for i, v := range vals {
			// vals are newest first; fill from the back
			if err := json.Unmarshal(v, &msgs[len(vals)-1-i]); err != nil {
				return fmt.Errorf("decode message: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return msgs, nil
}

func (b *Badger) SaveProperty(_ context.Context, sp models.SavedProperty) error {
	defer b.observe(time.Now())
	return b.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, append(savedPrefix(sp.UserID), sp.PropertyID...), sp)
	})
}

func (b *Badger) SavedPropertyIndex(_ context.Context, userID string) ([]models.SavedProperty, error) {
	defer b.observe(time.Now())
	out := []models.SavedProperty{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = savedPrefix(userID)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var sp models.SavedProperty
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sp)
			}); err != nil {
				return err
			}
			out = append(out, sp)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saved properties: %w", err)
	}
	slices.SortStableFunc(out, func(a, b models.SavedProperty) int {
		return a.SavedAt.Compare(b.SavedAt)
	})
	return out, nil
}

func (b *Badger) GetPropertyRecord(_ context.Context, propertyID string) (*models.PropertyRecord, error) {
	defer b.observe(time.Now())
	var rec models.PropertyRecord
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, propertyKey(propertyID), &rec)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

func (b *Badger) PutPropertyRecord(_ context.Context, rec models.PropertyRecord) error {
	defer b.observe(time.Now())
	return b.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, propertyKey(rec.PropertyID), rec)
	})
}

func (b *Badger) LogInteraction(_ context.Context, it models.Interaction) error {
	defer b.observe(time.Now())
	key := fmt.Appendf(nil, "%s%s/%020d/%s", prefixInteraction, it.UserID, it.Timestamp.UnixNano(), it.ID)
	return b.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, key, it)
	})
}

// Close flushes and closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger's printf-style logging into slog. Info is
// demoted to debug; badger is chatty on open and compaction.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(f string, args ...any)   { b.l.Error(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Warningf(f string, args ...any) { b.l.Warn(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Infof(f string, args ...any)    { b.l.Debug(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Debugf(f string, args ...any)   { b.l.Debug(fmt.Sprintf(f, args...)) }
