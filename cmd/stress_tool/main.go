package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// 并发改同一个订单状态，乐观锁保证只有一个请求成功，其余返回 409
var (
	baseURL    = flag.String("url", "http://localhost:8080", "server base URL")
	email      = flag.String("email", "", "admin email")
	password   = flag.String("password", "", "admin password")
	concurrent = flag.Int("n", 30, "concurrent status updates")
)

var httpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 500
	t.MaxIdleConnsPerHost = 500
	t.MaxConnsPerHost = 500
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	flag.Parse()
	if *email == "" || *password == "" {
		fmt.Println("usage: stress_tool -email admin@example.com -password secret [-n 30]")
		os.Exit(2)
	}

	// 1. 管理员登录
	token := login()

	// 2. 创建测试订单
	orderID := createOrder()
	fmt.Printf("开始压测：%d 个并发请求修改订单 %s (version 1)...\n", *concurrent, orderID)

	// 3. 并发修改状态
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := map[int]int{}

	start := time.Now()
	for i := 0; i < *concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := updateStatus(token, orderID)
			mu.Lock()
			results[status]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	duration := time.Since(start)

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*concurrent)/duration.Seconds())
	fmt.Printf("成功: %d (预期: 1)\n", results[http.StatusOK])
	fmt.Printf("冲突: %d\n", results[http.StatusConflict])
	for status, n := range results {
		if status != http.StatusOK && status != http.StatusConflict {
			fmt.Printf("其他 (%d): %d\n", status, n)
		}
	}
	fmt.Println("--------------------------------------------------")

	if results[http.StatusOK] != 1 {
		os.Exit(1)
	}
}

func login() string {
	var data struct {
		Token string `json:"token"`
	}
	status := call(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    *email,
		"password": *password,
	}, &data)
	if status != http.StatusOK || data.Token == "" {
		fmt.Printf("登录失败: HTTP %d\n", status)
		os.Exit(1)
	}
	return data.Token
}

func createOrder() string {
	var data struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	status := call(http.MethodPost, "/orders", "", map[string]interface{}{
		"fullName":      "Test Charge",
		"phone":         "+221770000000",
		"address":       "Dakar",
		"quantity":      1,
		"paymentMethod": "wave",
	}, &data)
	if status != http.StatusOK || data.Order.ID == "" {
		fmt.Printf("创建订单失败: HTTP %d\n", status)
		os.Exit(1)
	}
	return data.Order.ID
}

func updateStatus(token, orderID string) int {
	return call(http.MethodPut, "/admin/orders/"+orderID+"/status", token, map[string]interface{}{
		"status":  "cancelled",
		"version": 1,
	}, nil)
}

// call 返回 HTTP 状态码，请求失败返回 0
func call(method, path, token string, payload interface{}, out interface{}) int {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(method, *baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0
	}
	if out != nil {
		var env envelope
		if err := json.Unmarshal(respBody, &env); err == nil && env.Code == 0 {
			_ = json.Unmarshal(env.Data, out)
		}
	}
	return resp.StatusCode
}
