package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/clubhub/session"
)

type harness struct {
	hub   *Hub
	state *session.State
	gauge prometheus.Gauge
	srv   *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		state: session.NewState(),
		gauge: prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_live_connections"}),
	}
	h.hub = NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), h.gauge)

	ctx, cancel := context.WithCancel(context.Background())
	go h.hub.Run(ctx)
	t.Cleanup(cancel)

	upgrader := websocket.Upgrader{}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.hub.Attach(conn, r.URL.Query().Get("t"), r.URL.Query().Get("uid"), h.state)
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) dial(t *testing.T, tournamentID, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/?t=" + tournamentID + "&uid=" + uid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBroadcastReachesRoomOnly(t *testing.T) {
	h := newHarness(t)
	watcher := h.dial(t, "t1", "parent1")
	other := h.dial(t, "t2", "parent2")

	require.Eventually(t, func() bool { return h.hub.Clients("t1") == 1 && h.hub.Clients("t2") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.gauge))

	h.hub.Broadcast("t1", "signup.updated", map[string]string{"playerId": "kid1"})
	h.hub.Broadcast("t1", "team.deleted", map[string]string{"teamId": "A"})

	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(time.Second)))
	var msg struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
		RoomID  string            `json:"room_id"`
	}
	_, raw, err := watcher.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "signup.updated", msg.Type)
	assert.Equal(t, "kid1", msg.Payload["playerId"])
	assert.Equal(t, "tournament_t1", msg.RoomID)

	_, raw, err = watcher.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "team.deleted", msg.Type)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "other rooms receive nothing")
}

func TestSignOutDropsConnections(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "t1", "parent1")
	h.dial(t, "t1", "parent2")

	require.Eventually(t, func() bool { return h.hub.Clients("t1") == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, h.state.Subscribers("parent1"))

	h.state.Publish(session.Event{UID: "parent1", SignedIn: false})

	require.Eventually(t, func() bool { return h.hub.Clients("t1") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.state.Subscribers("parent1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestClientDisconnectLeavesRoom(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "t1", "parent1")
	require.Eventually(t, func() bool { return h.hub.Clients("t1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.hub.Clients("t1") == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.gauge))

	// без слушателей broadcast ничего не делает
	h.hub.Broadcast("t1", "signup.updated", nil)
}
