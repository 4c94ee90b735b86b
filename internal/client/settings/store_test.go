package settings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := fmt.Sprintf("file:settings_%s?mode=memory&cache=shared", t.Name())
	s, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetSetClear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, present, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, s.Set(ctx, KeyToken, "t1"))
	v, present, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "t1", v)

	require.NoError(t, s.Clear(ctx, KeyToken))
	_, present, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestStore_ServerHostDefault(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	host, err := s.ServerHost(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerHost, host)

	require.NoError(t, s.SetServerHost(ctx, "http://10.0.0.5:9090"))
	host, err = s.ServerHost(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9090", host)
}

func TestStore_CredentialsRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	c, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, c, "no credentials stored yet")

	require.NoError(t, s.SetCredentials(ctx, Credentials{Token: "t1", UserID: 3, Username: "alice"}))

	c, err = s.Credentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "t1", c.Token)
	assert.Equal(t, int64(3), c.UserID)
	assert.Equal(t, "alice", c.Username)

	require.NoError(t, s.ClearCredentials(ctx))
	c, err = s.Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
}

// Readers racing a group write must observe either the full old triple or
// the full new one, never a mix.
func TestStore_CredentialAtomicity(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCredentials(ctx, Credentials{Token: "old", UserID: 1, Username: "old"}))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			next := Credentials{Token: "new", UserID: 2, Username: "new"}
			if i%2 == 0 {
				next = Credentials{Token: "old", UserID: 1, Username: "old"}
			}
			if err := s.SetCredentials(ctx, next); err != nil {
				return
			}
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				c, err := s.Credentials(ctx)
				if err != nil || c == nil {
					continue
				}
				assert.Equal(t, c.Token, c.Username, "torn credential read: %+v", c)
			}
		}()
	}

	wg.Wait()
}

func TestStore_SubscribeDeliversCurrentThenChanges(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyServerHost, "http://a"))

	ch, cancel := s.Subscribe(KeyServerHost)
	defer cancel()

	v := <-ch
	assert.Equal(t, Value{Str: "http://a", Present: true}, v, "immediate current value")

	require.NoError(t, s.Set(ctx, KeyServerHost, "http://b"))
	select {
	case v = <-ch:
		assert.Equal(t, Value{Str: "http://b", Present: true}, v)
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}

	require.NoError(t, s.Clear(ctx, KeyServerHost))
	select {
	case v = <-ch:
		assert.False(t, v.Present)
	case <-time.After(time.Second):
		t.Fatal("no clear notification")
	}
}

func TestStore_SubscribeCancelClosesChannel(t *testing.T) {
	s := openStore(t)

	ch, cancel := s.Subscribe(KeyToken)
	<-ch // initial value
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// a write after cancel must not panic
	require.NoError(t, s.Set(context.Background(), KeyToken, "t"))
}

func TestStore_SlowSubscriberGetsLatest(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	ch, cancel := s.Subscribe(KeyToken)
	defer cancel()
	<-ch

	// overflow the buffer without reading
	for i := 0; i < 40; i++ {
		require.NoError(t, s.Set(ctx, KeyToken, fmt.Sprintf("t%d", i)))
	}

	var last Value
	for {
		select {
		case v := <-ch:
			last = v
			continue
		default:
		}
		break
	}
	assert.Equal(t, "t39", last.Str, "latest value must survive buffer overflow")
}
