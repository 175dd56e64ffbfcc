package server

import (
	"sync"
	"testing"
	"time"

	"github.com/alanwang67/message_board/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2003, time.July, 1, 10, 52, 37, 0, time.FixedZone("CEST", 2*60*60))
}

func setupTestServer() *Server {
	return New(0, store.New(), fixedClock)
}

func TestServerInitialization(t *testing.T) {
	s := New(7, store.New(), nil)

	assert.Equal(t, uint64(7), s.Id, "identity should be fixed at construction")
	assert.Equal(t, uint64(0), s.Requests(), "initial request count should be 0")
	assert.NotNil(t, s.now, "clock should default to time.Now")
}

func TestHandleIndex(t *testing.T) {
	s := setupTestServer()

	reply, err := s.HandleIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), reply.ServerId)
	assert.Equal(t, uint64(1), reply.RequestCount, "first request should observe count 1")
	assert.NotNil(t, reply.Messages)
	assert.Empty(t, reply.Messages)
}

func TestHandleNow(t *testing.T) {
	s := setupTestServer()

	reply := s.HandleNow()
	assert.Equal(t, "Tue, 01 Jul 2003 08:52:37 +0000", reply.RFC2822)
	assert.Equal(t, fixedClock().UnixMilli(), reply.Timestamp)
	assert.Equal(t, uint64(1), s.Requests(), "now should count as a request")
}

func TestSendThenIndex(t *testing.T) {
	s := setupTestServer()

	for _, m := range []string{"a", "b", "c"} {
		reply, err := s.HandleSend(m)
		require.NoError(t, err)
		assert.Equal(t, m, reply.Message)
	}

	reply, err := s.HandleIndex()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, reply.Messages)
	assert.Equal(t, uint64(4), reply.RequestCount)
}

func TestClearTwice(t *testing.T) {
	s := setupTestServer()
	_, err := s.HandleSend("x")
	require.NoError(t, err)

	first, err := s.HandleClear()
	require.NoError(t, err)
	second, err := s.HandleClear()
	require.NoError(t, err)

	assert.Equal(t, []string{}, first.Messages)
	assert.Equal(t, []string{}, second.Messages)
	assert.Equal(t, uint64(2), first.RequestCount)
	assert.Equal(t, uint64(3), second.RequestCount, "request count should keep incrementing")
}

func TestCountersAreIndependent(t *testing.T) {
	shared := store.New()
	a := New(0, shared, fixedClock)
	b := New(1, shared, fixedClock)

	_, err := a.HandleSend("from a")
	require.NoError(t, err)
	_, err = a.HandleSend("from a again")
	require.NoError(t, err)

	reply, err := b.HandleIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reply.RequestCount, "b has only handled one request")
	assert.Equal(t, []string{"from a", "from a again"}, reply.Messages, "store is shared")
	assert.Equal(t, uint64(2), a.Requests())
}

func TestConcurrentInstancesShareStore(t *testing.T) {
	shared := store.New()
	const instances = 8
	const perInstance = 100

	servers := make([]*Server, instances)
	for i := range servers {
		servers[i] = New(uint64(i), shared, fixedClock)
	}

	// Each instance is driven by exactly one goroutine, like a worker.
	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s *Server) {
			defer wg.Done()
			for i := 0; i < perInstance; i++ {
				_, err := s.HandleSend("m")
				assert.NoError(t, err)
			}
		}(s)
	}
	wg.Wait()

	for _, s := range servers {
		assert.Equal(t, uint64(perInstance), s.Requests())
	}
	assert.Equal(t, instances*perInstance, shared.Len())
}
