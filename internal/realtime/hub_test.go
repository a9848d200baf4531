package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func (c *recordingClient) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, message)
	return true
}

func (c *recordingClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func TestHub_PublishDeduplicatesRecipients(t *testing.T) {
	h := NewHub(zerolog.Nop())
	alice, bob := &recordingClient{}, &recordingClient{}
	h.Register("alice", alice)
	h.Register("bob", bob)

	h.Publish(Event{Type: TaskCreated, TaskID: "t1", ProjectID: "p1", UserID: "alice"}, "alice", "bob", "alice", "")

	require.Len(t, alice.msgs, 1)
	require.Len(t, bob.msgs, 1)

	var got Event
	require.NoError(t, json.Unmarshal(alice.msgs[0], &got))
	require.Equal(t, TaskCreated, got.Type)
	require.Equal(t, "t1", got.TaskID)
	require.Equal(t, 1, got.Version)
}

func TestHub_UnregisterAndClose(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c1, c2 := &recordingClient{}, &recordingClient{}
	h.Register("u", c1)
	h.Register("u", c2)
	require.Equal(t, 2, h.Connected("u"))

	h.Unregister("u", c1)
	require.Equal(t, 1, h.Connected("u"))

	h.Broadcast("u", []byte("x"))
	require.Empty(t, c1.msgs)
	require.Len(t, c2.msgs, 1)

	h.Close()
	require.True(t, c2.closed)
	require.Zero(t, h.Connected("u"))
}
