package display_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/roadrage-sim/display"
	"github.com/tsinghua-fib-lab/roadrage-sim/engine"
)

type message struct {
	Type     string          `json:"type"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

func readMessage(t *testing.T, conn *websocket.Conn) message {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m message
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestHubPublish(t *testing.T) {
	hub := display.NewHub()
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	hub.Publish(&engine.Snapshot{Tick: 1, Width: 2, Height: 2, Rows: []string{"SS", "WW"}})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	// 新连接先收到最近一次快照
	m := readMessage(t, conn)
	assert.Equal(t, "snapshot", m.Type)
	assert.Equal(t, int64(1), m.Snapshot.Tick)
	assert.Equal(t, []string{"SS", "WW"}, m.Snapshot.Rows)
	assert.Equal(t, 1, hub.Len())

	hub.Publish(&engine.Snapshot{
		Tick:     2,
		Vehicles: []engine.VehicleView{{ID: 0, Kind: "car", X: 1, Heading: "EAST", Alive: true, Image: "car.gif"}},
	})
	m = readMessage(t, conn)
	assert.Equal(t, int64(2), m.Snapshot.Tick)
	require.Len(t, m.Snapshot.Vehicles, 1)
	assert.Equal(t, "car.gif", m.Snapshot.Vehicles[0].Image)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubWithoutSnapshot(t *testing.T) {
	hub := display.NewHub()
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(&engine.Snapshot{Tick: 5})
	assert.Equal(t, int64(5), readMessage(t, conn).Snapshot.Tick)
}
