package settings

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// MemStore is an in-memory Store used by tests and by any caller that does
// not need persistence. Group writes hold the same lock as readers, so the
// atomicity contract matches SQLiteStore.
type MemStore struct {
	mu     sync.RWMutex
	data   map[string]string
	subs   map[string]map[int]chan Value
	nextID int
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string]string),
		subs: make(map[string]map[int]chan Value),
	}
}

func (s *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.notifyLocked(key, Value{Str: value, Present: true})
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Clear(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.data, key)
		s.notifyLocked(key, Value{})
	}
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Subscribe(key string) (<-chan Value, func()) {
	ch := make(chan Value, 16)

	s.mu.Lock()
	v, ok := s.data[key]
	ch <- Value{Str: v, Present: ok}
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

func (s *MemStore) notifyLocked(key string, v Value) {
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

func (s *MemStore) ServerHost(ctx context.Context) (string, error) {
	host, ok, _ := s.Get(ctx, KeyServerHost)
	if !ok || host == "" {
		return DefaultServerHost, nil
	}
	return host, nil
}

func (s *MemStore) SetServerHost(ctx context.Context, host string) error {
	return s.Set(ctx, KeyServerHost, host)
}

func (s *MemStore) Credentials(ctx context.Context) (*Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok1 := s.data[KeyToken]
	rawID, ok2 := s.data[KeyUserID]
	username, ok3 := s.data[KeyUsername]
	if !ok1 || !ok2 || !ok3 {
		return nil, nil
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, nil
	}
	return &Credentials{Token: token, UserID: id, Username: username}, nil
}

func (s *MemStore) SetCredentials(ctx context.Context, c Credentials) error {
	s.mu.Lock()
	s.data[KeyToken] = c.Token
	s.data[KeyUserID] = fmt.Sprintf("%d", c.UserID)
	s.data[KeyUsername] = c.Username
	s.notifyLocked(KeyToken, Value{Str: c.Token, Present: true})
	s.notifyLocked(KeyUserID, Value{Str: s.data[KeyUserID], Present: true})
	s.notifyLocked(KeyUsername, Value{Str: c.Username, Present: true})
	s.mu.Unlock()
	return nil
}

func (s *MemStore) ClearCredentials(ctx context.Context) error {
	return s.Clear(ctx, KeyToken, KeyUserID, KeyUsername)
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	for _, byID := range s.subs {
		for _, ch := range byID {
			close(ch)
		}
	}
	s.subs = make(map[string]map[int]chan Value)
	s.mu.Unlock()
	return nil
}
