package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域由 CORS 配置控制
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Client struct {
	conn   *websocket.Conn
	send   chan Event
	hub    *Hub
	tables map[string]bool
}

func (c *Client) wants(table string) bool {
	return c.tables[table]
}

// Hub 管理 WebSocket 客户端并按主题分发事件
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	metrics    *metrics.MetricsCollector
}

func NewHub(m *metrics.MetricsCollector) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    m,
	}
}

// Run 事件循环，ctx 结束时断开所有客户端，只能调用一次
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.metrics.SetRealtimeClients(0)
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.metrics.SetRealtimeClients(count)
			logger.Log.Debug("realtime client connected", zap.Int("client_count", count))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.metrics.SetRealtimeClients(count)
			logger.Log.Debug("realtime client disconnected", zap.Int("client_count", count))

		case evt := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if !client.wants(evt.Table) {
					continue
				}
				select {
				case client.send <- evt:
				default:
					// 慢客户端直接断开，重连后重新拉取
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Done Run 退出后关闭
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Broadcast 分发给本实例的订阅者
func (h *Hub) Broadcast(evt Event) {
	select {
	case h.broadcast <- evt:
	default:
		logger.Log.Warn("realtime broadcast channel full, dropping event",
			zap.String("table", evt.Table), zap.String("action", evt.Action))
	}
}

// Publish 单实例部署时 Hub 可直接作为 Publisher
func (h *Hub) Publish(_ context.Context, evt Event) error {
	h.Broadcast(evt)
	return nil
}

// Serve 升级连接并订阅 tables，调用方负责权限过滤
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, tables []string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	subscribed := make(map[string]bool, len(tables))
	for _, t := range tables {
		subscribed[t] = true
	}

	client := &Client{
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		hub:    h,
		tables: subscribed,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump 只处理 pong 和关闭，客户端不发送业务消息
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(evt)
			if err != nil {
				logger.Log.Error("marshal realtime event failed", zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
