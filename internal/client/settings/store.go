// Package settings implements the durable client-side settings store: four
// scalar values (server address, auth token, user id, username) kept in a
// local SQLite database, with point reads, atomic group writes, and per-key
// change subscriptions.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/what-to-eat/client/internal/client/migrations"
	"github.com/what-to-eat/client/internal/dbx"
)

// Known settings keys.
const (
	KeyServerHost = "server_host"
	KeyToken      = "token"
	KeyUserID     = "user_id"
	KeyUsername   = "username"
)

// DefaultServerHost is the address used until the user configures one.
const DefaultServerHost = "http://127.0.0.1:8080"

// GuestUsername marks a session obtained through guest login.
const GuestUsername = "guest"

// Value is a point-in-time observation of a settings key. Present is false
// when the key is not set.
type Value struct {
	Str     string
	Present bool
}

// Credentials is the identity triple written and cleared as one unit.
type Credentials struct {
	Token    string
	UserID   int64
	Username string
}

// Store is the interface controllers depend on. The production
// implementation is SQLiteStore; tests may substitute a fake.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, keys ...string) error

	// Subscribe returns a channel that immediately yields the key's current
	// value and then every subsequent change. The returned func cancels the
	// subscription and closes the channel. Delivery to slow consumers is
	// best-effort latest-wins.
	Subscribe(key string) (<-chan Value, func())

	// ServerHost falls back to DefaultServerHost when unset.
	ServerHost(ctx context.Context) (string, error)
	SetServerHost(ctx context.Context, host string) error

	// Credentials returns nil when no complete triple is stored.
	Credentials(ctx context.Context) (*Credentials, error)
	SetCredentials(ctx context.Context, c Credentials) error
	ClearCredentials(ctx context.Context) error

	Close() error
}

// SQLiteStore is the Store implementation backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB

	mu     sync.Mutex
	subs   map[string]map[int]chan Value
	nextID int
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if necessary) the settings database at dsn and runs
// pending migrations.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	// sqlite allows a single writer; one connection keeps access serialized
	// so group writes are never interleaved with reads.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate settings db: %w", err)
	}

	return &SQLiteStore{db: db, subs: make(map[string]map[int]chan Value)}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	for _, byID := range s.subs {
		for _, ch := range byID {
			close(ch)
		}
	}
	s.subs = make(map[string]map[int]chan Value)
	s.mu.Unlock()
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	return getOne(ctx, s.db, key)
}

func getOne(ctx context.Context, q dbx.DBTX, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get settings[%s]: %w", key, err)
	}
	return value, true, nil
}

func setOne(ctx context.Context, q dbx.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set settings[%s]: %w", key, err)
	}
	return nil
}

func deleteOne(ctx context.Context, q dbx.DBTX, key string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete settings[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if err := setOne(ctx, s.db, key, value); err != nil {
		return err
	}
	s.notify(key, Value{Str: value, Present: true})
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, keys ...string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range keys {
			if err := deleteOne(ctx, tx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		s.notify(key, Value{})
	}
	return nil
}

// Subscribe registers a change listener for key. The current value is
// delivered synchronously before Subscribe returns, so new subscribers never
// miss the initial state.
func (s *SQLiteStore) Subscribe(key string) (<-chan Value, func()) {
	ch := make(chan Value, 16)

	current, present, err := s.Get(context.Background(), key)
	if err == nil {
		ch <- Value{Str: current, Present: present}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]chan Value)
	}
	s.subs[key][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if byID, ok := s.subs[key]; ok {
			if c, ok := byID[id]; ok {
				delete(byID, id)
				close(c)
			}
		}
	}
	return ch, cancel
}

// notify pushes v to all subscribers of key. When a subscriber's buffer is
// full the oldest pending value is dropped so the latest one always lands.
func (s *SQLiteStore) notify(key string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[key] {
		for {
			select {
			case ch <- v:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func (s *SQLiteStore) ServerHost(ctx context.Context) (string, error) {
	host, present, err := s.Get(ctx, KeyServerHost)
	if err != nil {
		return "", err
	}
	if !present || host == "" {
		return DefaultServerHost, nil
	}
	return host, nil
}

func (s *SQLiteStore) SetServerHost(ctx context.Context, host string) error {
	return s.Set(ctx, KeyServerHost, host)
}

// Credentials reads the identity triple inside one transaction so a
// concurrent group write can never be observed half-applied.
func (s *SQLiteStore) Credentials(ctx context.Context) (*Credentials, error) {
	var c Credentials
	complete := true

	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		token, ok, err := getOne(ctx, tx, KeyToken)
		if err != nil || !ok {
			complete = false
			return err
		}
		c.Token = token

		rawID, ok, err := getOne(ctx, tx, KeyUserID)
		if err != nil || !ok {
			complete = false
			return err
		}
		if _, err := fmt.Sscanf(rawID, "%d", &c.UserID); err != nil {
			complete = false
			return nil
		}

		username, ok, err := getOne(ctx, tx, KeyUsername)
		if err != nil || !ok {
			complete = false
			return err
		}
		c.Username = username
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, nil
	}
	return &c, nil
}

func (s *SQLiteStore) SetCredentials(ctx context.Context, c Credentials) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := setOne(ctx, tx, KeyToken, c.Token); err != nil {
			return err
		}
		if err := setOne(ctx, tx, KeyUserID, fmt.Sprintf("%d", c.UserID)); err != nil {
			return err
		}
		return setOne(ctx, tx, KeyUsername, c.Username)
	})
	if err != nil {
		return err
	}
	s.notify(KeyToken, Value{Str: c.Token, Present: true})
	s.notify(KeyUserID, Value{Str: fmt.Sprintf("%d", c.UserID), Present: true})
	s.notify(KeyUsername, Value{Str: c.Username, Present: true})
	return nil
}

func (s *SQLiteStore) ClearCredentials(ctx context.Context) error {
	return s.Clear(ctx, KeyToken, KeyUserID, KeyUsername)
}
