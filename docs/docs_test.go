package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDocCoversRoutes(t *testing.T) {
	var doc struct {
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	routes := map[string][]string{
		"/orders":                       {"post"},
		"/orders/{id}/instructions":     {"get"},
		"/orders/{id}/proof":            {"post"},
		"/admin/orders":                 {"get"},
		"/admin/orders/summary":         {"get"},
		"/admin/orders/{id}":            {"get"},
		"/admin/orders/{id}/status":     {"put"},
		"/promotions/active":            {"get"},
		"/admin/promotions":             {"get", "post"},
		"/admin/promotions/{id}":        {"put", "delete"},
		"/admin/promotions/{id}/active": {"patch"},
		"/images":                       {"get"},
		"/images/{key}":                 {"get"},
		"/admin/images":                 {"post"},
		"/admin/images/{id}":            {"put", "delete"},
		"/videos":                       {"get"},
		"/admin/videos":                 {"get", "post"},
		"/admin/videos/upload":          {"post"},
		"/admin/videos/{id}":            {"put", "delete"},
		"/admin/videos/{id}/active":     {"patch"},
		"/auth/login":                   {"post"},
		"/auth/session":                 {"get"},
		"/auth/logout":                  {"post"},
		"/auth/password":                {"post"},
		"/health":                       {"get"},
		"/realtime":                     {"get"},
	}
	for path, methods := range routes {
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, "%s %s", m, path)
		}
	}

	for _, def := range []string{"response.Response", "model.Order", "service.CreateOrderInput", "presenter.Instructions"} {
		assert.Contains(t, doc.Definitions, def)
	}
}
