package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pagetrend/pagetrend/internal/store"
	"github.com/pagetrend/pagetrend/internal/trend"
	wsHub "github.com/pagetrend/pagetrend/internal/ws"
)

// --- helpers ----------------------------------------------------------------

func newStore(reports ...*trend.Report) *store.Store {
	st := store.New(5 * time.Minute)
	for _, r := range reports {
		st.Put(r)
	}
	return st
}

func report(sourceID string) *trend.Report {
	return &trend.Report{
		SourceID:    sourceID,
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Records: []trend.Record{
			{Path: "/articles/go-generics-explained", Recent: 100, Prior: 80, Abs: 20, Pct: 0.20},
		},
	}
}

// startHub starts a test HTTP server with the hub as its handler.
// Returns the ws:// URL and the hub; cleanup is registered on t.
func startHub(t *testing.T, st *store.Store) (string, *wsHub.Hub) {
	t.Helper()

	hub := wsHub.New(st)
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http"), hub
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one text message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	return msg
}

func decode(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

// waitForClients polls until the hub reports n connected clients.
func waitForClients(t *testing.T, hub *wsHub.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("clients: got %d, want %d", hub.Count(), n)
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesInitialFeed(t *testing.T) {
	st := newStore(report("blog"))
	wsURL, _ := startHub(t, st)

	conn := dial(t, wsURL)
	m := decode(t, readMessage(t, conn))

	if m["event"] != "reports" {
		t.Errorf("event: got %v, want reports", m["event"])
	}
	data, ok := m["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data: got %T, want object", m["data"])
	}
	reports, ok := data["reports"].([]interface{})
	if !ok || len(reports) != 1 {
		t.Fatalf("reports: got %v, want one entry", data["reports"])
	}
	first := reports[0].(map[string]interface{})
	if first["source_id"] != "blog" {
		t.Errorf("source_id: got %v, want blog", first["source_id"])
	}
}

func TestHub_Notify_BroadcastsToAllClients(t *testing.T) {
	st := newStore(report("blog"))
	wsURL, hub := startHub(t, st)

	c1 := dial(t, wsURL)
	c2 := dial(t, wsURL)
	waitForClients(t, hub, 2)

	// Drain the seed message each client gets on connect.
	readMessage(t, c1)
	readMessage(t, c2)

	st.Put(report("docs"))
	hub.Notify()

	for i, conn := range []*websocket.Conn{c1, c2} {
		m := decode(t, readMessage(t, conn))
		data := m["data"].(map[string]interface{})
		reports := data["reports"].([]interface{})
		if len(reports) != 2 {
			t.Errorf("client %d: reports: got %d, want 2", i+1, len(reports))
		}
	}
}

func TestHub_Disconnect_RemovesClient(t *testing.T) {
	st := newStore()
	wsURL, hub := startHub(t, st)

	conn := dial(t, wsURL)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_DisconnectDuringBroadcast(t *testing.T) {
	st := newStore(report("blog"))
	wsURL, hub := startHub(t, st)

	// Clients that connect and drop while broadcasts are in flight must not
	// take the hub down with a send on a closed channel.
	conns := make([]*websocket.Conn, 0, 30)
	for i := 0; i < 30; i++ {
		conns = append(conns, dial(t, wsURL))
	}
	waitForClients(t, hub, 30)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			hub.Notify()
		}
	}()
	for _, conn := range conns {
		conn.Close()
	}
	<-done

	waitForClients(t, hub, 0)
	hub.Notify() // broadcast with no clients is a no-op
}

func TestHub_EmptyStore_SendsEmptyFeed(t *testing.T) {
	st := newStore()
	wsURL, _ := startHub(t, st)

	conn := dial(t, wsURL)
	m := decode(t, readMessage(t, conn))

	data := m["data"].(map[string]interface{})
	reports, ok := data["reports"].([]interface{})
	if !ok {
		t.Fatalf("reports: got %T, want array", data["reports"])
	}
	if len(reports) != 0 {
		t.Errorf("reports: got %d, want 0", len(reports))
	}
}
