package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wellness_shop/internal/pkg/config"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/session"
	"wellness_shop/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	data map[string]string
}

func (f *fakeSessions) Create(_ context.Context, userID string, _ time.Duration) (string, error) {
	id := "sess-" + userID
	f.data[id] = userID
	return id, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (string, error) {
	userID, ok := f.data[id]
	if !ok {
		return "", session.ErrSessionNotFound
	}
	return userID, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	delete(f.data, id)
	return nil
}

func (f *fakeSessions) DeleteUser(_ context.Context, userID string) error {
	for id, uid := range f.data {
		if uid == userID {
			delete(f.data, id)
		}
	}
	return nil
}

type fakeRoles map[string]bool

func (f fakeRoles) IsAdmin(_ context.Context, userID string) (bool, error) {
	return f[userID], nil
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all up", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", Health(map[string]Pinger{"postgres": up, "redis": up}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("redis down", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", Health(map[string]Pinger{"postgres": up, "redis": down}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"redis":"down"`)
	})
}

func newRealtimeServer(t *testing.T) (*httptest.Server, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.GlobalConfig.JWT = config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Expire: 1}

	sessions := &fakeSessions{data: map[string]string{}}
	tokens := map[string]string{}
	for _, uid := range []string{"admin-1", "user-1"} {
		sid, _ := sessions.Create(context.Background(), uid, time.Hour)
		token, _, err := utils.GenerateToken(uid, "user", sid)
		require.NoError(t, err)
		tokens[uid] = token
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := realtime.NewHub(nil)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/realtime", Realtime(hub, sessions, fakeRoles{"admin-1": true}))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, tokens
}

func TestRealtimeAccess(t *testing.T) {
	srv, tokens := newRealtimeServer(t)

	cases := []struct {
		name   string
		query  string
		status int
	}{
		{"no tables", "", http.StatusBadRequest},
		{"unknown tables only", "?tables=secrets", http.StatusBadRequest},
		{"orders without token", "?tables=orders", http.StatusUnauthorized},
		{"orders as non-admin", "?tables=orders&access_token=" + tokens["user-1"], http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/realtime" + tc.query)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRealtimeUpgrade(t *testing.T) {
	srv, tokens := newRealtimeServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"

	t.Run("public tables need no token", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"?tables=promotions,images", nil)
		require.NoError(t, err)
		defer conn.Close()
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	})

	t.Run("admin token opens orders", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"?tables=orders&access_token="+tokens["admin-1"], nil)
		require.NoError(t, err)
		defer conn.Close()
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	})
}
