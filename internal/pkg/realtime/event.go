package realtime

import (
	"context"
	"strings"
	"time"
)

// 变更通知主题，按表划分
const (
	TableOrders     = "orders"
	TableImages     = "images"
	TableVideos     = "videos"
	TablePromotions = "promotions"
	TableAuth       = "auth"
)

const (
	ActionInsert    = "insert"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionStale     = "stale"
	ActionSignedIn  = "signed_in"
	ActionSignedOut = "signed_out"
)

// Event 变更事件，客户端收到后自行重新拉取数据
type Event struct {
	Table     string      `json:"table"`
	Action    string      `json:"action"`
	ID        string      `json:"id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewEvent 生成带时间戳的事件
func NewEvent(table, action, id string, data interface{}) Event {
	return Event{
		Table:     table,
		Action:    action,
		ID:        id,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher 不发布任何事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// adminTables 只有管理员可以订阅的主题
var adminTables = map[string]bool{
	TableOrders: true,
	TableAuth:   true,
}

// IsAdminTable 判断主题是否需要管理员权限
func IsAdminTable(table string) bool {
	return adminTables[table]
}

var knownTables = map[string]bool{
	TableOrders:     true,
	TableImages:     true,
	TableVideos:     true,
	TablePromotions: true,
	TableAuth:       true,
}

// ParseTables 解析 ?tables=a,b，忽略未知主题
func ParseTables(raw string) []string {
	var tables []string
	seen := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" || !knownTables[t] || seen[t] {
			continue
		}
		seen[t] = true
		tables = append(tables, t)
	}
	return tables
}
