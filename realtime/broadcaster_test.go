package realtime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// dialConnection spins up a test server that upgrades one socket into a
// *Connection, returning both halves so a test can drive the server side
// through the broadcaster and read frames from the client side.
func dialConnection(t *testing.T, userID string) (*Connection, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	connCh := make(chan *Connection, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn := NewConnection(socket, userID, "127.0.0.1")
		conn.Start()
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + srv.URL[len("http"):]
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return <-connCh, client
}

func TestBroadcaster_ToUser_DeliversFrame(t *testing.T) {
	conn, client := dialConnection(t, "user-1")

	registry := NewRegistry()
	registry.Add("user-1", conn)
	b := NewBroadcaster(registry, func(string) []string { return nil })

	b.ToUser("user-1", "TEST_EVENT", map[string]string{"hello": "world"})

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "TEST_EVENT")
	require.Contains(t, string(msg), "world")
}

func TestBroadcaster_ToMembers_ExcludesListedUser(t *testing.T) {
	connA, clientA := dialConnection(t, "user-a")
	connB, clientB := dialConnection(t, "user-b")

	registry := NewRegistry()
	registry.Add("user-a", connA)
	registry.Add("user-b", connB)
	b := NewBroadcaster(registry, func(string) []string { return []string{"user-a", "user-b"} })

	b.ToMembers([]string{"user-a", "user-b"}, "PING", nil, "user-a")

	_ = clientB.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := clientB.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "PING")

	_ = clientA.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = clientA.ReadMessage()
	require.Error(t, err) // excluded, should time out waiting for a frame
}

func TestBroadcaster_ToUser_MissingConnectionEvicts(t *testing.T) {
	registry := NewRegistry()
	b := NewBroadcaster(registry, func(string) []string { return nil })

	evicted := make(chan string, 1)
	b.SetEvictHandler(func(userID string) { evicted <- userID })

	b.ToUser("ghost", "TEST", nil)

	select {
	case id := <-evicted:
		require.Equal(t, "ghost", id)
	case <-time.After(time.Second):
		t.Fatal("expected evict handler to fire for unregistered user")
	}
}
