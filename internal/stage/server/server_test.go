package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/internal/session"
	"github.com/msto63/dramatica/internal/stage/handler"
	"github.com/msto63/dramatica/pkg/core/health"
)

const twoReads = `SCENE Names:
  CHARACTER Clown:
    MEMORY:
      first: TEXT;
      ratio: REAL;
    END_MEMORY
  READ first;
  Clown SAYS "hello " + first;
  READ ratio;
  Clown SAYS ratio * 2;
END_SCENE`

func newTestServer(t *testing.T, store session.Store) (*Server, *httptest.Server) {
	t.Helper()
	return newTestServerWith(t, DefaultConfig(), store)
}

func newTestServerWith(t *testing.T, cfg Config, store session.Store) (*Server, *httptest.Server) {
	t.Helper()
	logger := mdwlog.NewNop()
	manager := session.NewManager(session.Options{Store: store, Logger: logger})
	t.Cleanup(func() { manager.Close() })

	cfg.MaxSessions = 2
	s, err := New(cfg, nil, manager, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type wsReply struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func exchange(t *testing.T, conn *websocket.Conn, msg string) wsReply {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return reply
}

func TestServer_WebSocketFrameLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRequestSize = 512
	_, ts := newTestServerWith(t, cfg, nil)
	conn := dialWS(t, ts)

	source := strings.Repeat(" ", 4096)
	msg := `{"type":"begin","payload":{"source":"` + source + `"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseMessageTooBig) {
		t.Errorf("oversized frame: got %v, want close 1009", err)
	}
}

func TestServer_RequestID(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatalf("GET /version error = %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("response should carry a generated request id")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/version", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /version error = %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "req-7" {
		t.Errorf("request id = %q, want req-7", got)
	}
}

func TestServer_HealthReportsSessions(t *testing.T) {
	s, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if report.Status != health.StatusHealthy {
		t.Errorf("status = %v, want healthy", report.Status)
	}

	names := map[string]bool{}
	for _, c := range report.Checks {
		names[c.Name] = true
	}
	if !names["http"] || !names["sessions"] {
		t.Errorf("checks = %v, want http and sessions", names)
	}

	// Two suspended sessions reach MaxSessions
	for i := 0; i < 2; i++ {
		body := strings.NewReader(`{"source": ` + quote(twoReads) + `}`)
		r, err := http.Post(ts.URL+"/api/v1/sessions", "application/json", body)
		if err != nil {
			t.Fatalf("POST /sessions error = %v", err)
		}
		r.Body.Close()
	}
	if got := s.HealthRegistry().Check(context.Background()).Status; got != health.StatusDegraded {
		t.Errorf("status = %v, want degraded", got)
	}
}

// endpointStore is a store that only reports a network endpoint
type endpointStore struct {
	session.Store
	addr string
}

func (s endpointStore) Endpoint() string { return s.addr }

func TestRegisterStoreChecks_Endpoint(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	tests := []struct {
		name   string
		addr   string
		want   bool
		status health.Status
	}{
		{"reachable", ln.Addr().String(), true, health.StatusHealthy},
		{"unix socket", "", false, health.StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := health.NewRegistry("test", "0")
			registerStoreChecks(registry, endpointStore{addr: tt.addr}, 0)

			report := registry.Check(context.Background())
			found := false
			for _, c := range report.Checks {
				if c.Name == "session-store-tcp" {
					found = true
					if c.Status != tt.status {
						t.Errorf("status = %v, want %v (%s)", c.Status, tt.status, c.Message)
					}
				}
			}
			if found != tt.want {
				t.Errorf("tcp check registered = %v, want %v", found, tt.want)
			}
		})
	}
}

func TestServer_WebSocketSession(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dialWS(t, ts)

	reply := exchange(t, conn, `{"type": "ping"}`)
	if reply.Type != "pong" {
		t.Fatalf("reply = %+v, want pong", reply)
	}

	reply = exchange(t, conn, `{"type": "begin", "payload": {"source": `+quote(twoReads)+`}}`)
	if reply.Type != "session" {
		t.Fatalf("reply = %s %s", reply.Type, reply.Payload)
	}
	var resp session.Response
	json.Unmarshal(reply.Payload, &resp)
	if resp.Status != session.StatusSuspended || resp.Awaiting != "first" {
		t.Fatalf("begin = %+v", resp)
	}

	reply = exchange(t, conn, `{"type": "input", "payload": {"value": "Sebastian"}}`)
	json.Unmarshal(reply.Payload, &resp)
	if resp.Awaiting != "ratio" {
		t.Fatalf("input = %+v", resp)
	}

	reply = exchange(t, conn, `{"type": "input", "payload": {"session_id": "`+resp.SessionID+`", "value": 0.5}}`)
	json.Unmarshal(reply.Payload, &resp)
	if resp.Status != session.StatusCompleted || !strings.Contains(resp.Output, "Clown says: 1.0") {
		t.Fatalf("final = %+v", resp)
	}
}

func TestServer_WebSocketErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dialWS(t, ts)

	tests := []struct {
		name string
		msg  string
		code mdwerror.Code
	}{
		{"unknown type", `{"type": "shout"}`, mdwerror.CodeValidationFailed},
		{"not json", `{`, mdwerror.CodeValidationFailed},
		{"begin without payload", `{"type": "begin"}`, mdwerror.CodeValidationFailed},
		{"begin syntax error", `{"type": "begin", "payload": {"source": "SCENE"}}`, mdwerror.CodeSyntax},
		{"input without session", `{"type": "input", "payload": {"value": "x"}}`, mdwerror.CodeSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := exchange(t, conn, tt.msg)
			if reply.Type != "error" {
				t.Fatalf("reply type = %q, want error", reply.Type)
			}
			var body handler.ErrorBody
			json.Unmarshal(reply.Payload, &body)
			if body.Code != tt.code {
				t.Errorf("code = %v, want %v (%s)", body.Code, tt.code, body.Message)
			}
		})
	}
}

func TestServer_WebSocketDisconnectCancels(t *testing.T) {
	store := session.NewMemoryStore(session.DefaultMemoryConfig())
	_, ts := newTestServer(t, store)
	conn := dialWS(t, ts)

	reply := exchange(t, conn, `{"type": "begin", "payload": {"source": `+quote(twoReads)+`}}`)
	if reply.Type != "session" {
		t.Fatalf("reply = %s", reply.Type)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after disconnect, want 0", store.Len())
	}
}

func TestServer_StartAndStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.HTTPPort = 0

	s, err := New(cfg, nil, nil, mdwlog.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.StartAsync(); err != nil {
		t.Fatalf("StartAsync() error = %v", err)
	}

	resp, err := http.Get("http://" + s.Address() + "/version")
	if err != nil {
		t.Fatalf("GET /version error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func quote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
