package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Vodeneev/betcode/internal/converter"
	"github.com/Vodeneev/betcode/internal/parser/parsers"
	"github.com/Vodeneev/betcode/internal/parser/parsers/bet9ja"
	"github.com/Vodeneev/betcode/internal/pkg/chat"
	"github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/metrics"
	"github.com/Vodeneev/betcode/internal/pkg/models"
	"github.com/Vodeneev/betcode/internal/pkg/performance"
)

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) (*httptest.Server, *chat.Hub) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.ConvertRate = 1000
	cfg.Server.ConvertBurst = 1000
	if mutate != nil {
		mutate(&cfg.Server)
	}

	m := metrics.NewConverterMetrics()
	tracker := performance.NewTracker()
	svc := converter.NewService(converter.Deps{
		Sources: map[string]parsers.Source{
			"bet9ja": bet9ja.NewSource(cfg, parsers.Env{Recorder: tracker}),
		},
		Metrics: m,
	})
	hub := chat.NewHub(m)

	srv := httptest.NewServer(NewRouter(&cfg.Server, Deps{
		Converter: svc,
		Hub:       hub,
		Metrics:   m,
		Tracker:   tracker,
	}))
	t.Cleanup(srv.Close)
	return srv, hub
}

func postConvert(t *testing.T, url, body string) (int, models.ConvertResult) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var res models.ConvertResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, res
}

func TestConvertEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		ok       bool
		contains string
	}{
		{"demo fixture", "/api/convert", `{"code":"BJ99999","from_platform":"bet9ja","to_platform":"sportybet"}`, http.StatusOK, true, "Converted"},
		{"alias path", "/convert", `{"code":"BJ99999","from_platform":"bet9ja","to_platform":"sportybet"}`, http.StatusOK, true, "Converted"},
		{"same platform", "/api/convert", `{"code":"X","from_platform":"bet9ja","to_platform":"bet9ja"}`, http.StatusOK, false, "same"},
		{"not found", "/api/convert", `{"code":"BJ00000","from_platform":"bet9ja","to_platform":"sportybet"}`, http.StatusOK, false, "not found"},
		{"unknown platform", "/api/convert", `{"code":"X","from_platform":"betway","to_platform":"bet9ja"}`, http.StatusUnprocessableEntity, false, "Unsupported platform"},
		{"malformed json", "/api/convert", `{"code":`, http.StatusUnprocessableEntity, false, "Invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := postConvert(t, srv.URL+tt.path, tt.body)
			if status != tt.status || res.OK != tt.ok || !strings.Contains(res.Message, tt.contains) {
				t.Errorf("got %d %+v", status, res)
			}
			if tt.ok {
				if res.ConvertedCode == nil || !strings.HasPrefix(*res.ConvertedCode, "SP") {
					t.Errorf("converted code = %v", res.ConvertedCode)
				}
				if res.Preview == nil || res.Preview.Legs[0].Home != "Barcelona" {
					t.Errorf("preview = %+v", res.Preview)
				}
			} else if res.ConvertedCode != nil || res.Preview != nil {
				t.Errorf("failed result carries data: %+v", res)
			}
		})
	}
}

func TestConvertEndpoint_NullFieldsOnFailure(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Post(srv.URL+"/api/convert", "application/json",
		strings.NewReader(`{"code":"X","from_platform":"sportybet","to_platform":"sportybet"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"converted_code":null`) || !strings.Contains(string(body), `"preview":null`) {
		t.Errorf("body = %s", body)
	}
}

func TestConvertEndpoint_RateLimited(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.ServerConfig) {
		c.ConvertRate = 0.001
		c.ConvertBurst = 1
	})
	body := `{"code":"BJ99999","from_platform":"bet9ja","to_platform":"sportybet"}`

	if status, _ := postConvert(t, srv.URL+"/api/convert", body); status != http.StatusOK {
		t.Fatalf("first request status = %d", status)
	}
	status, res := postConvert(t, srv.URL+"/api/convert", body)
	if status != http.StatusTooManyRequests || res.OK {
		t.Errorf("second request: %d %+v", status, res)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/health", "/health"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		var body struct {
			Status    string `json:"status"`
			Timestamp int64  `json:"timestamp"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil || body.Status != "ok" || body.Timestamp < time.Now().Add(-time.Minute).Unix() {
			t.Errorf("%s: %+v %v", path, body, err)
		}
	}

	resp, err := http.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.TrimSpace(string(b)) != "pong" {
		t.Errorf("/ping = %q", b)
	}
}

func TestObservabilityEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	postConvert(t, srv.URL+"/api/convert", `{"code":"BJ99999","from_platform":"bet9ja","to_platform":"sportybet"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(b), `betcode_conversions_total{from="bet9ja",result="ok",to="sportybet"} 1`) {
		t.Errorf("/metrics missing conversion counter:\n%s", b)
	}

	resp, err = http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	var stats performance.MetricsResponse
	err = json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()
	if err != nil || stats.Overall.TotalResolutions != 1 || stats.Strategies["fixture"] != 1 {
		t.Errorf("/stats = %+v %v", stats, err)
	}

	resp, err = http.Get(srv.URL + "/api/conversions")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/api/conversions status = %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/convert", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}

func TestChatWebsocket(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil || string(msg) != "hi" {
		t.Errorf("echo = %q %v", msg, err)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, &cfg.Server, "test", http.NotFoundHandler()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
