package output

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	writes   []any
	closed   bool
	writeErr error
	closeErr error
}

func (s *recordingSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, v)
	return s.writeErr
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.closeErr
}

func TestManager(t *testing.T) {
	t.Run("writes to all sinks", func(t *testing.T) {
		a, b := &recordingSink{}, &recordingSink{}
		mgr := NewManager()
		require.NoError(t, mgr.AddSink(a))
		require.NoError(t, mgr.AddSink(b))

		require.NoError(t, mgr.Write("v1"))
		require.NoError(t, mgr.Write("v2"))
		require.NoError(t, mgr.Close())

		assert.Equal(t, []any{"v1", "v2"}, a.writes)
		assert.Equal(t, []any{"v1", "v2"}, b.writes)
		assert.True(t, a.closed)
		assert.True(t, b.closed)
	})

	t.Run("AddSink rejects nil", func(t *testing.T) {
		assert.Error(t, NewManager().AddSink(nil))
	})

	t.Run("Write aggregates sink errors", func(t *testing.T) {
		mgr := NewManager()
		require.NoError(t, mgr.AddSink(&recordingSink{writeErr: errors.New("boom-a")}))
		require.NoError(t, mgr.AddSink(&recordingSink{writeErr: errors.New("boom-b")}))

		err := mgr.Write("v")
		require.Error(t, err)
		for _, want := range []string{"errors writing to sinks", "boom-a", "boom-b", "recordingSink"} {
			assert.Contains(t, err.Error(), want)
		}
	})

	t.Run("Close aggregates sink errors", func(t *testing.T) {
		mgr := NewManager()
		require.NoError(t, mgr.AddSink(&recordingSink{closeErr: errors.New("close-a")}))
		require.NoError(t, mgr.AddSink(&recordingSink{closeErr: errors.New("close-b")}))

		err := mgr.Close()
		require.Error(t, err)
		for _, want := range []string{"errors closing sinks", "close-a", "close-b"} {
			assert.Contains(t, err.Error(), want)
		}
	})

	t.Run("concurrent writes", func(t *testing.T) {
		s := &recordingSink{}
		mgr := NewManager()
		require.NoError(t, mgr.AddSink(s))

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = mgr.Write(i)
			}()
		}
		wg.Wait()
		assert.Len(t, s.writes, 50)
	})
}
