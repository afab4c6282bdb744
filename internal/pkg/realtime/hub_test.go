package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, ParseTables(r.URL.Query().Get("tables")))
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, tables string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?tables=" + tables
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversOnlySubscribedTables(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "promotions")

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(NewEvent(TableImages, ActionInsert, "img-1", nil))
	hub.Broadcast(NewEvent(TablePromotions, ActionUpdate, "promo-1", nil))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt Event
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, TablePromotions, evt.Table)
	assert.Equal(t, ActionUpdate, evt.Action)
	assert.Equal(t, "promo-1", evt.ID)
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "videos")

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubStoppedRejectsNewClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	served := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, []string{TableVideos})
		close(served)
	}))
	defer srv.Close()

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	conn := dial(t, srv, "videos")
	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve blocked after hub stopped")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.GetClientCount())
}

func TestHubShutdownReleasesConnectedClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, []string{TableVideos})
	}))
	defer srv.Close()

	conn := dial(t, srv, "videos")
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-hub.Done()

	// 服务端发送关闭帧后读端返回错误，readPump 不会卡在 unregister 上
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.GetClientCount())
}

func TestParseTables(t *testing.T) {
	assert.Equal(t, []string{"promotions", "images"}, ParseTables("promotions, IMAGES,unknown,promotions"))
	assert.Empty(t, ParseTables(""))
	assert.True(t, IsAdminTable(TableOrders))
	assert.False(t, IsAdminTable(TableVideos))
}
